package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// SnapshotEntry describes a stored snapshot without its tracks.
type SnapshotEntry struct {
	ID           string    `json:"id"`
	Sequence     int       `json:"sequence"`
	PlaylistID   string    `json:"playlist_id"`
	Name         string    `json:"name"`
	Owner        string    `json:"owner"`
	StoredTracks int       `json:"stored_tracks"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// SnapshotRepository persists [models.Snapshot] values, one per playlist.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save validates and stores a snapshot, replacing any earlier snapshot of the same playlist.
func (r *SnapshotRepository) Save(s *models.Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if err := deleteByPlaylist(tx, s.Playlist.ID); err != nil {
		return err
	}

	id := shared.GenerateID()
	fetchedAt := s.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, sequence, playlist_id, name, owner, track_count, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, sequence, s.Playlist.ID, s.Playlist.Name, s.Playlist.Owner, s.Playlist.TrackCount, fetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_tracks (snapshot_id, position, track_id, title, artists, duration_ms, tempo, has_features)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range s.Tracks {
		artists, err := json.Marshal(t.ArtistNames())
		if err != nil {
			return fmt.Errorf("failed to encode artists: %w", err)
		}

		var tempo sql.NullFloat64
		feature, hasFeatures := s.Features[t.ID]
		if hasFeatures && feature.Tempo != nil {
			tempo = sql.NullFloat64{Float64: *feature.Tempo, Valid: true}
		}

		if _, err := stmt.Exec(id, i, t.ID, t.Title, string(artists), t.DurationMS, tempo, hasFeatures); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Get loads the snapshot of a playlist, or returns [shared.ErrSnapshotNotFound].
func (r *SnapshotRepository) Get(playlistID string) (*models.Snapshot, error) {
	var (
		id string
		s  models.Snapshot
	)
	err := r.db.QueryRow(`
		SELECT id, playlist_id, name, owner, track_count, fetched_at
		FROM snapshots
		WHERE playlist_id = ?
	`, playlistID).Scan(&id, &s.Playlist.ID, &s.Playlist.Name, &s.Playlist.Owner, &s.Playlist.TrackCount, &s.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, playlistID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT track_id, title, artists, duration_ms, tempo, has_features
		FROM snapshot_tracks
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot tracks: %w", err)
	}
	defer rows.Close()

	s.Features = make(map[string]models.FeatureRecord)
	for rows.Next() {
		t, feature, err := r.scanTrack(rows)
		if err != nil {
			return nil, err
		}
		s.Tracks = append(s.Tracks, t)
		if feature != nil {
			s.Features[t.ID] = *feature
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot tracks: %w", err)
	}

	return &s, nil
}

// List returns every stored snapshot, most recently fetched first.
func (r *SnapshotRepository) List() ([]SnapshotEntry, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.sequence, s.playlist_id, s.name, s.owner, s.fetched_at,
			(SELECT COUNT(*) FROM snapshot_tracks t WHERE t.snapshot_id = s.id)
		FROM snapshots s
		ORDER BY s.fetched_at DESC, s.sequence DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var entries []SnapshotEntry
	for rows.Next() {
		var e SnapshotEntry
		if err := rows.Scan(&e.ID, &e.Sequence, &e.PlaylistID, &e.Name, &e.Owner, &e.FetchedAt, &e.StoredTracks); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return entries, nil
}

// Delete removes the snapshot of a playlist, or returns [shared.ErrSnapshotNotFound].
func (r *SnapshotRepository) Delete(playlistID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow("SELECT id FROM snapshots WHERE playlist_id = ?", playlistID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, playlistID)
	}
	if err != nil {
		return fmt.Errorf("failed to find snapshot: %w", err)
	}

	if err := deleteByPlaylist(tx, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

// Purge removes snapshots fetched before cutoff and reports how many were removed.
// A zero cutoff removes everything.
func (r *SnapshotRepository) Purge(cutoff time.Time) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	where, args := "1 = 1", []any{}
	if !cutoff.IsZero() {
		where, args = "fetched_at < ?", []any{cutoff.UTC()}
	}

	if _, err := tx.Exec("DELETE FROM snapshot_tracks WHERE snapshot_id IN (SELECT id FROM snapshots WHERE "+where+")", args...); err != nil {
		return 0, fmt.Errorf("failed to purge snapshot tracks: %w", err)
	}

	result, err := tx.Exec("DELETE FROM snapshots WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	return n, nil
}

func deleteByPlaylist(tx *sql.Tx, playlistID string) error {
	if _, err := tx.Exec("DELETE FROM snapshot_tracks WHERE snapshot_id IN (SELECT id FROM snapshots WHERE playlist_id = ?)", playlistID); err != nil {
		return fmt.Errorf("failed to delete snapshot tracks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM snapshots WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// scanTrack reads one snapshot_tracks row. The feature record is nil when the track had no features.
func (r *SnapshotRepository) scanTrack(rows *sql.Rows) (models.RawTrack, *models.FeatureRecord, error) {
	var (
		t           models.RawTrack
		artistsJSON string
		tempo       sql.NullFloat64
		hasFeatures bool
	)
	if err := rows.Scan(&t.ID, &t.Title, &artistsJSON, &t.DurationMS, &tempo, &hasFeatures); err != nil {
		return t, nil, fmt.Errorf("failed to scan snapshot track: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(artistsJSON), &names); err != nil {
		return t, nil, fmt.Errorf("failed to decode artists for %s: %w", t.ID, err)
	}
	for _, n := range names {
		t.Artists = append(t.Artists, models.Artist{Name: n})
	}

	if !hasFeatures {
		return t, nil, nil
	}
	feature := &models.FeatureRecord{ID: t.ID}
	if tempo.Valid {
		feature.Tempo = &tempo.Float64
	}
	return t, feature, nil
}
