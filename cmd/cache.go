package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/services"
)

func (r *Runner) snapshots() (*repositories.SnapshotRepository, error) {
	db, err := r.cacheDB()
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return repositories.NewSnapshotRepository(db), nil
}

// CacheList prints the playlists held in the fetch cache, most recent first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.snapshots()
	if err != nil {
		return err
	}

	entries, err := repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("Cache is empty\n")
	}

	for _, e := range entries {
		age := r.now().Sub(e.FetchedAt).Round(time.Minute)
		r.writePlain("%3d  %-22s  %-32s  %4d tracks  fetched %s ago\n", e.Sequence, e.PlaylistID, e.Name, e.StoredTracks, age)
	}
	return nil
}

// CacheClear removes cached playlists: one playlist with --id, entries older than --older-than, or everything.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.snapshots()
	if err != nil {
		return err
	}

	if ref := cmd.String("id"); ref != "" {
		id, err := services.ParsePlaylistID(ref)
		if err != nil {
			return err
		}
		if err := repo.Delete(id); err != nil {
			return err
		}
		r.logger.Info("removed cached playlist", "id", id)
		return r.writePlain("✓ Removed %s from cache\n", id)
	}

	var cutoff time.Time
	if d := cmd.Duration("older-than"); d > 0 {
		cutoff = r.now().Add(-d)
	}

	n, err := repo.Purge(cutoff)
	if err != nil {
		return err
	}
	r.logger.Info("purged cache", "removed", n)
	return r.writePlain("✓ Removed %d cached playlists\n", n)
}
