package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
)

var playlistIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// ParsePlaylistID normalizes a playlist reference to its canonical ID.
//
// Accepted forms:
//   - https://open.spotify.com/playlist/<id> (query string and /intl-xx/ prefix allowed)
//   - spotify:playlist:<id>
//   - <id> (22 base62 characters)
func ParsePlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty playlist reference", shared.ErrInvalidReference)
	}

	var id string
	switch {
	case strings.HasPrefix(ref, "spotify:"):
		parts := strings.Split(ref, ":")
		if len(parts) != 3 || parts[1] != "playlist" {
			return "", fmt.Errorf("%w: %q is not a playlist URI", shared.ErrInvalidReference, ref)
		}
		id = parts[2]
	case strings.Contains(ref, "/"):
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("%w: %q is not a URL", shared.ErrInvalidReference, ref)
		}
		if host := u.Hostname(); host != "spotify.com" && !strings.HasSuffix(host, ".spotify.com") {
			return "", fmt.Errorf("%w: %q is not a Spotify URL", shared.ErrInvalidReference, ref)
		}
		id = playlistSegment(u.Path)
	default:
		id = ref
	}

	if !playlistIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q has no playlist id", shared.ErrInvalidReference, ref)
	}
	return id, nil
}

// playlistSegment returns the path segment following "playlist", or "".
func playlistSegment(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if s == "playlist" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}
