// Package services reads playlists from a streaming provider through the [Fetcher] interface.
//
// # Playlist references
//
// [ParsePlaylistID] turns a web URL, a spotify: URI or a bare ID into the canonical playlist ID.
// Anything else fails with [shared.ErrInvalidReference] before a request is made.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2. It authenticates with the client-credentials
// flow from golang.org/x/oauth2/clientcredentials and reads only public data.
//
//   - Playlist items are paged 100 at a time; local files, episodes and removed tracks are skipped
//   - Audio features are requested 100 IDs at a time; a 403 on a batch leaves those tempos absent
//   - Records are validated at this boundary, a malformed one aborts the fetch
//
// # Transport
//
// Every request, including token requests, goes through a retrying [http.RoundTripper]. It waits
// on a golang.org/x/time/rate limiter, then retries 429 and 5xx responses and transport errors with
// exponential backoff, honouring Retry-After.
//
// # Error Handling
//
//   - [shared.ErrInvalidReference] : reference could not be parsed
//   - [shared.ErrPlaylistNotFound] : provider answered 404
//   - [shared.ErrUpstreamUnavailable] : network, rate limit or authorization failure
//   - [shared.ErrMalformedRecord] : a record failed validation
//   - [shared.ErrMissingCredentials] : client credentials not configured
package services
