package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testSnapshot(playlistID string, fetchedAt time.Time) *models.Snapshot {
	return &models.Snapshot{
		Playlist: models.Playlist{ID: playlistID, Name: "Friday Warmup", Owner: "DJ", TrackCount: 3},
		Tracks: []models.RawTrack{
			{ID: "t1", Title: "First", Artists: []models.Artist{{Name: "A"}, {Name: "B"}}, DurationMS: 180000},
			{ID: "t2", Title: "Second", DurationMS: 200000},
			{ID: "t3", Title: "Third", Artists: []models.Artist{{Name: "C"}}, DurationMS: 220000},
		},
		Features: map[string]models.FeatureRecord{
			"t1": {ID: "t1", Tempo: models.Tempo(120)},
			"t2": {ID: "t2"},
		},
		FetchedAt: fetchedAt,
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "snapshots")
		if err != nil {
			t.Fatalf("NextSequence() unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	if got, err := NextSequence(tx, "snapshots"); err != nil || got != 4 {
		t.Errorf("NextSequence(tx) = %d, %v, want 4", got, err)
	}
	tx.Rollback()

	if got, _ := NextSequence(db, "snapshots"); got != 4 {
		t.Errorf("rolled back sequence should be reused, got %d", got)
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("NextSequence() on an unknown table should fail")
	}
}

func TestSnapshotRepository(t *testing.T) {
	fetchedAt := time.Date(2026, 10, 24, 18, 0, 0, 0, time.UTC)

	t.Run("Save And Get", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		if err := repo.Save(testSnapshot("pl1", fetchedAt)); err != nil {
			t.Fatalf("Save() unexpected error: %v", err)
		}

		got, err := repo.Get("pl1")
		if err != nil {
			t.Fatalf("Get() unexpected error: %v", err)
		}

		if got.Playlist.Name != "Friday Warmup" || got.Playlist.Owner != "DJ" || got.Playlist.TrackCount != 3 {
			t.Errorf("Get() playlist = %+v", got.Playlist)
		}
		if !got.FetchedAt.Equal(fetchedAt) {
			t.Errorf("Get() FetchedAt = %v, want %v", got.FetchedAt, fetchedAt)
		}
		if len(got.Tracks) != 3 {
			t.Fatalf("Get() returned %d tracks, want 3", len(got.Tracks))
		}
		for i, id := range []string{"t1", "t2", "t3"} {
			if got.Tracks[i].ID != id {
				t.Errorf("track %d ID = %s, want %s", i, got.Tracks[i].ID, id)
			}
		}
		if names := got.Tracks[0].ArtistNames(); len(names) != 2 || names[1] != "B" {
			t.Errorf("track 1 artists = %v, want [A B]", names)
		}
		if len(got.Tracks[1].Artists) != 0 {
			t.Errorf("track 2 artists = %v, want none", got.Tracks[1].Artists)
		}

		if tempo := got.Features["t1"].Tempo; tempo == nil || *tempo != 120 {
			t.Errorf("t1 tempo = %v, want 120", tempo)
		}
		if f, ok := got.Features["t2"]; !ok || f.Tempo != nil {
			t.Errorf("t2 feature = %+v, %v, want record with absent tempo", f, ok)
		}
		if _, ok := got.Features["t3"]; ok {
			t.Error("t3 should have no feature record")
		}
	})

	t.Run("Save Replaces", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		if err := repo.Save(testSnapshot("pl1", fetchedAt)); err != nil {
			t.Fatalf("Save() unexpected error: %v", err)
		}
		second := testSnapshot("pl1", fetchedAt.Add(time.Hour))
		second.Tracks = second.Tracks[:1]
		if err := repo.Save(second); err != nil {
			t.Fatalf("Save() unexpected error: %v", err)
		}

		got, err := repo.Get("pl1")
		if err != nil {
			t.Fatalf("Get() unexpected error: %v", err)
		}
		if len(got.Tracks) != 1 {
			t.Errorf("Get() returned %d tracks, want 1", len(got.Tracks))
		}

		entries, err := repo.List()
		if err != nil {
			t.Fatalf("List() unexpected error: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("List() returned %d entries, want 1", len(entries))
		}
	})

	t.Run("Save Rejects Invalid", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		s := testSnapshot("pl1", fetchedAt)
		s.Tracks[1].DurationMS = -1
		if err := repo.Save(s); err == nil {
			t.Error("Save() should reject a snapshot with a negative duration")
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("Get() error = %v, want %v", err, shared.ErrSnapshotNotFound)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		for i, id := range []string{"old", "new"} {
			if err := repo.Save(testSnapshot(id, fetchedAt.Add(time.Duration(i)*time.Hour))); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
		}

		entries, err := repo.List()
		if err != nil {
			t.Fatalf("List() unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("List() returned %d entries, want 2", len(entries))
		}
		if entries[0].PlaylistID != "new" || entries[1].PlaylistID != "old" {
			t.Errorf("List() order = %s, %s, want new, old", entries[0].PlaylistID, entries[1].PlaylistID)
		}
		if entries[0].StoredTracks != 3 || entries[0].Sequence != 2 {
			t.Errorf("List()[0] = %+v", entries[0])
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSnapshotRepository(db)

		if err := repo.Save(testSnapshot("pl1", fetchedAt)); err != nil {
			t.Fatalf("Save() unexpected error: %v", err)
		}
		if err := repo.Delete("pl1"); err != nil {
			t.Fatalf("Delete() unexpected error: %v", err)
		}
		if _, err := repo.Get("pl1"); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("Get() after Delete() error = %v, want %v", err, shared.ErrSnapshotNotFound)
		}

		var orphans int
		if err := db.QueryRow("SELECT COUNT(*) FROM snapshot_tracks").Scan(&orphans); err != nil {
			t.Fatalf("count tracks: %v", err)
		}
		if orphans != 0 {
			t.Errorf("snapshot_tracks has %d rows after delete, want 0", orphans)
		}

		if err := repo.Delete("pl1"); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("second Delete() error = %v, want %v", err, shared.ErrSnapshotNotFound)
		}
	})

	t.Run("Purge", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		for i, id := range []string{"a", "b", "c"} {
			if err := repo.Save(testSnapshot(id, fetchedAt.Add(time.Duration(i)*time.Hour))); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
		}

		n, err := repo.Purge(fetchedAt.Add(90 * time.Minute))
		if err != nil {
			t.Fatalf("Purge() unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("Purge() removed %d, want 2", n)
		}
		if _, err := repo.Get("c"); err != nil {
			t.Errorf("Get(c) after Purge() unexpected error: %v", err)
		}

		n, err = repo.Purge(time.Time{})
		if err != nil || n != 1 {
			t.Errorf("Purge(zero) = %d, %v, want 1, nil", n, err)
		}
	})
}

func TestSnapshotCache(t *testing.T) {
	fetchedAt := time.Date(2026, 10, 24, 18, 0, 0, 0, time.UTC)

	newCache := func(t *testing.T) *SnapshotCache {
		c := NewSnapshotCache(NewSnapshotRepository(setupTestDB(t)), nil)
		c.now = func() time.Time { return fetchedAt.Add(2 * time.Hour) }
		return c
	}

	t.Run("Hit", func(t *testing.T) {
		c := newCache(t)
		c.Store(testSnapshot("pl1", fetchedAt))

		s, ok := c.Lookup("pl1", 3*time.Hour)
		if !ok {
			t.Fatal("Lookup() should hit a fresh snapshot")
		}
		if len(s.Tracks) != 3 {
			t.Errorf("Lookup() returned %d tracks, want 3", len(s.Tracks))
		}
	})

	t.Run("Expired", func(t *testing.T) {
		c := newCache(t)
		c.Store(testSnapshot("pl1", fetchedAt))

		if _, ok := c.Lookup("pl1", time.Hour); ok {
			t.Error("Lookup() should miss an expired snapshot")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		c := newCache(t)
		c.Store(testSnapshot("pl1", fetchedAt))

		if _, ok := c.Lookup("pl1", 0); ok {
			t.Error("Lookup() with zero max age should always miss")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		c := newCache(t)
		if _, ok := c.Lookup("pl1", time.Hour); ok {
			t.Error("Lookup() should miss an unknown playlist")
		}
	})

	t.Run("Store Invalid Is Logged", func(t *testing.T) {
		c := newCache(t)
		c.Store(&models.Snapshot{})

		if _, ok := c.Lookup("", time.Hour); ok {
			t.Error("an invalid snapshot should not be stored")
		}
	})
}
