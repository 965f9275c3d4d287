// package services defines the [Fetcher] interface for reading playlists from a streaming provider
//
// Spotify
package services

import (
	"context"

	"github.com/desertthunder/setlist/internal/models"
)

// Fetcher supplies the raw records a schedule is built from.
//
// Implementations validate every record before returning it, and return an error instead of a partial result.
type Fetcher interface {
	// Name returns the name of the provider (e.g., "Spotify")
	Name() string

	// Playlist retrieves playlist metadata by canonical ID.
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// Tracks retrieves every track of a playlist in playlist order.
	// Entries that are not tracks (local files, podcast episodes, removed items) are skipped.
	Tracks(ctx context.Context, playlistID string) ([]models.RawTrack, error)

	// Features retrieves audio features for the given track IDs, keyed by track ID.
	// Tracks the provider has no features for are missing from the map.
	Features(ctx context.Context, trackIDs []string) (map[string]models.FeatureRecord, error)
}
