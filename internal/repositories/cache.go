package repositories

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// SnapshotCache puts TTL semantics on a [SnapshotRepository].
//
// It never fails: lookups that error are misses and failed stores are logged.
type SnapshotCache struct {
	repo   *SnapshotRepository
	logger *log.Logger
	now    func() time.Time
}

// NewSnapshotCache wraps repo. A nil logger discards output.
func NewSnapshotCache(repo *SnapshotRepository, logger *log.Logger) *SnapshotCache {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SnapshotCache{repo: repo, logger: logger, now: time.Now}
}

// Lookup returns the stored snapshot of a playlist if it was fetched within maxAge.
// A non-positive maxAge disables the cache.
func (c *SnapshotCache) Lookup(playlistID string, maxAge time.Duration) (*models.Snapshot, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	s, err := c.repo.Get(playlistID)
	if err != nil {
		if !errors.Is(err, shared.ErrSnapshotNotFound) {
			c.logger.Warn("cache lookup failed", "playlist", playlistID, "error", err)
		}
		return nil, false
	}

	if age := c.now().Sub(s.FetchedAt); age > maxAge {
		c.logger.Debug("cached snapshot expired", "playlist", playlistID, "age", age.Round(time.Second))
		return nil, false
	}
	return s, true
}

// Store saves a snapshot, logging instead of returning storage errors.
func (c *SnapshotCache) Store(s *models.Snapshot) {
	if err := c.repo.Save(s); err != nil {
		c.logger.Warn("failed to cache snapshot", "playlist", s.Playlist.ID, "error", err)
		return
	}
	c.logger.Debug("cached snapshot", "playlist", s.Playlist.ID, "tracks", len(s.Tracks))
}
