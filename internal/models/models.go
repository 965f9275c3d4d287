// package models defines the data model for the playlist schedule service
package models

import (
	"fmt"
	"time"
)

// Validator is implemented by records that are checked at the fetch boundary before they reach the assembler.
type Validator interface {
	Validate() error // Validate checks if the record's data is well formed and returns an error if not
}

var (
	_ Validator = RawTrack{}
	_ Validator = FeatureRecord{}
	_ Validator = (*Snapshot)(nil)
)

// Artist is a credited performer. It carries no identity beyond its display name.
type Artist struct {
	Name string `json:"name"`
}

// RawTrack is a track as fetched from the upstream provider, in playlist order.
type RawTrack struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artists    []Artist `json:"artists"`
	DurationMS int64    `json:"duration_ms"`
}

// Validate rejects tracks without an identifier or with a negative duration.
func (t RawTrack) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track %q has no id", t.Title)
	}
	if t.DurationMS < 0 {
		return fmt.Errorf("track %s has negative duration %d", t.ID, t.DurationMS)
	}
	return nil
}

// ArtistNames returns the artist names in credit order.
func (t RawTrack) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// FeatureRecord holds the audio features of a track. Tempo is nil when the provider has no value for it.
type FeatureRecord struct {
	ID    string   `json:"id"`
	Tempo *float64 `json:"tempo,omitempty"`
}

// Validate rejects records without an identifier or with a negative tempo.
func (f FeatureRecord) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("feature record has no id")
	}
	if f.Tempo != nil && *f.Tempo < 0 {
		return fmt.Errorf("feature record %s has negative tempo %f", f.ID, *f.Tempo)
	}
	return nil
}

// Playlist is the playlist metadata shown above a schedule.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	TrackCount int    `json:"track_count"`
}

// Snapshot is the complete raw result of fetching one playlist.
//
// It is the unit stored by the fetch cache.
type Snapshot struct {
	Playlist  Playlist                 `json:"playlist"`
	Tracks    []RawTrack               `json:"tracks"`
	Features  map[string]FeatureRecord `json:"features"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// Validate checks the playlist id and every track and feature record.
func (s *Snapshot) Validate() error {
	if s.Playlist.ID == "" {
		return fmt.Errorf("snapshot has no playlist id")
	}
	for i, t := range s.Tracks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("track %d: %w", i+1, err)
		}
	}
	for _, f := range s.Features {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Tempo returns a pointer to v, for building feature records.
func Tempo(v float64) *float64 {
	return &v
}
