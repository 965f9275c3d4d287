// package tasks implements the playlist analysis pipeline.
//
// The core abstraction is Analyzer, which resolves a reference, fetches (or reuses) raw data and assembles a schedule.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/schedule"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

// Cache stores fetched snapshots between analyses. Implementations must not fail loudly.
type Cache interface {
	// Lookup returns a snapshot fetched within maxAge.
	Lookup(playlistID string, maxAge time.Duration) (*models.Snapshot, bool)
	// Store saves a freshly fetched snapshot.
	Store(s *models.Snapshot)
}

// Request describes one analysis.
type Request struct {
	Reference   string         // Playlist URL, URI or ID
	Start       time.Time      // Moment the first track starts
	Location    *time.Location // Timezone for clock times (nil means UTC)
	CrossfadeMS int64          // Milliseconds of overlap between consecutive tracks
	Refresh     bool           // Skip the cache and fetch again
}

// Result is a complete schedule for one playlist.
type Result struct {
	Playlist  models.Playlist `json:"playlist"`
	Rows      []schedule.Row  `json:"rows"`
	Stats     schedule.Stats  `json:"stats"`
	FetchedAt time.Time       `json:"fetched_at"`
	FromCache bool            `json:"from_cache"`
}

// Analyzer runs the reference → fetch → assemble pipeline.
type Analyzer struct {
	fetcher services.Fetcher
	cache   Cache
	maxAge  time.Duration
	logger  *log.Logger
	now     func() time.Time
}

// NewAnalyzer creates an Analyzer reading from fetcher. A nil logger discards output.
func NewAnalyzer(fetcher services.Fetcher, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Analyzer{fetcher: fetcher, logger: logger, now: time.Now}
}

// WithCache enables snapshot reuse for entries younger than maxAge.
func (a *Analyzer) WithCache(c Cache, maxAge time.Duration) *Analyzer {
	a.cache = c
	a.maxAge = maxAge
	return a
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (a *Analyzer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Analyze builds the schedule for req.
//
// An unparseable reference fails before any request is made. Any fetch failure aborts the
// whole analysis; rows are never assembled from partial data.
func (a *Analyzer) Analyze(ctx context.Context, req Request, progress chan<- ProgressUpdate) (*Result, error) {
	a.sendProgress(progress, parseReferenceUpdate(req.Reference))
	id, err := services.ParsePlaylistID(req.Reference)
	if err != nil {
		return nil, err
	}

	snapshot, fromCache := a.lookup(id, req.Refresh)
	a.sendProgress(progress, cacheUpdate(id, fromCache))

	if !fromCache {
		if snapshot, err = a.fetch(ctx, id, progress); err != nil {
			return nil, err
		}
		if a.cache != nil {
			a.cache.Store(snapshot)
		}
	}

	a.sendProgress(progress, assembleUpdate(len(snapshot.Tracks)))
	rows, stats := schedule.Assemble(snapshot.Tracks, snapshot.Features, schedule.Options{
		Start:       req.Start,
		Location:    req.Location,
		CrossfadeMS: req.CrossfadeMS,
	})

	a.logger.Info("built schedule", "playlist", id, "tracks", stats.TrackCount,
		"total", schedule.FormatTotal(stats.TotalDurationMS), "cached", fromCache)

	return &Result{
		Playlist:  snapshot.Playlist,
		Rows:      rows,
		Stats:     stats,
		FetchedAt: snapshot.FetchedAt,
		FromCache: fromCache,
	}, nil
}

func (a *Analyzer) lookup(id string, refresh bool) (*models.Snapshot, bool) {
	if a.cache == nil || refresh {
		return nil, false
	}
	return a.cache.Lookup(id, a.maxAge)
}

// fetch reads playlist metadata, tracks and features from the provider.
func (a *Analyzer) fetch(ctx context.Context, id string, progress chan<- ProgressUpdate) (*models.Snapshot, error) {
	a.sendProgress(progress, fetchPlaylistUpdate(id))
	pl, err := a.fetcher.Playlist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	a.sendProgress(progress, fetchTracksUpdate(pl))
	tracks, err := a.fetcher.Tracks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracks: %w", err)
	}

	ids := uniqueTrackIDs(tracks)
	a.sendProgress(progress, fetchFeaturesUpdate(len(ids)))
	features, err := a.fetcher.Features(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio features: %w", err)
	}

	a.logger.Info("fetched playlist", "id", id, "name", pl.Name, "tracks", len(tracks), "features", len(features))

	snapshot := &models.Snapshot{
		Playlist:  *pl,
		Tracks:    tracks,
		Features:  features,
		FetchedAt: a.now(),
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
	}
	return snapshot, nil
}

// uniqueTrackIDs returns track IDs in playlist order with duplicates removed.
func uniqueTrackIDs(tracks []models.RawTrack) []string {
	seen := make(map[string]struct{}, len(tracks))
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		ids = append(ids, t.ID)
	}
	return ids
}
