package schedule

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/models"
)

// Row is one line of a schedule. Display fields are pre-formatted for rendering and export.
type Row struct {
	Index             int       `json:"index"`
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Artists           string    `json:"artists"`
	Tempo             *float64  `json:"tempo,omitempty"`
	TempoDisplay      string    `json:"tempo_display"`
	DurationMS        int64     `json:"duration_ms"`
	DurationDisplay   string    `json:"duration_display"`
	CumulativeMS      int64     `json:"cumulative_ms"`
	CumulativeDisplay string    `json:"cumulative_display"`
	Clock             time.Time `json:"clock"`
	ClockDisplay      string    `json:"clock_display"`
	TempoColor        string    `json:"tempo_color"`
	DurationColor     string    `json:"duration_color"`
}

// Stats aggregates a full row set. Min and max tempo are only meaningful when HasTempo is set,
// min and max duration only when TrackCount is non-zero.
type Stats struct {
	TrackCount      int     `json:"track_count"`
	TotalDurationMS int64   `json:"total_duration_ms"`
	MinDurationMS   int64   `json:"min_duration_ms"`
	MaxDurationMS   int64   `json:"max_duration_ms"`
	MinTempo        float64 `json:"min_tempo"`
	MaxTempo        float64 `json:"max_tempo"`
	HasTempo        bool    `json:"has_tempo"`
}

// TempoRange returns the observed tempo range, or a degenerate (0, 0) range when no tempo is present.
func (s Stats) TempoRange() (float64, float64) {
	if !s.HasTempo {
		return 0, 0
	}
	return s.MinTempo, s.MaxTempo
}

// DurationRange returns the observed duration range, or (0, 0) for an empty row set.
func (s Stats) DurationRange() (float64, float64) {
	if s.TrackCount == 0 {
		return 0, 0
	}
	return float64(s.MinDurationMS), float64(s.MaxDurationMS)
}

// Options controls how a schedule is laid out in time.
type Options struct {
	Start       time.Time      // Start is the moment the first track begins
	Location    *time.Location // Location for clock times; nil means UTC
	CrossfadeMS int64          // CrossfadeMS is subtracted from every track when computing clock times
}

// Assemble builds schedule rows and aggregate stats from fetched tracks, in playlist order.
//
// A track without a feature record (or with a nil tempo) gets an absent tempo and the neutral color.
// Each row's clock time is Start plus its cumulative duration, less the crossfade overlap of every
// track so far. The cumulative column itself is always the plain sum of durations. Empty input gives
// an empty row slice and zeroed stats.
func Assemble(tracks []models.RawTrack, features map[string]models.FeatureRecord, opts Options) ([]Row, Stats) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	durations := make([]int64, len(tracks))
	tempos := make([]*float64, len(tracks))
	for i, t := range tracks {
		durations[i] = t.DurationMS
		if f, ok := features[t.ID]; ok && f.Tempo != nil {
			v := *f.Tempo
			tempos[i] = &v
		}
	}

	stats := computeStats(durations, tempos)
	cumulative := Cumulative(durations)
	clocks := ClockTimes(opts.Start.In(loc), Cumulative(ApplyCrossfade(durations, opts.CrossfadeMS)))

	tempoLow, tempoHigh := stats.TempoRange()
	durLow, durHigh := stats.DurationRange()

	rows := make([]Row, len(tracks))
	for i, t := range tracks {
		duration := float64(durations[i])
		rows[i] = Row{
			Index:             i + 1,
			ID:                t.ID,
			Title:             t.Title,
			Artists:           JoinArtists(t.ArtistNames()),
			Tempo:             tempos[i],
			TempoDisplay:      FormatTempo(tempos[i]),
			DurationMS:        durations[i],
			DurationDisplay:   FormatDuration(durations[i]),
			CumulativeMS:      cumulative[i],
			CumulativeDisplay: FormatDuration(cumulative[i]),
			Clock:             clocks[i],
			ClockDisplay:      FormatClock(clocks[i]),
			TempoColor:        ScaleColor(tempos[i], tempoLow, tempoHigh),
			DurationColor:     ScaleColor(&duration, durLow, durHigh),
		}
	}
	return rows, stats
}

func computeStats(durations []int64, tempos []*float64) Stats {
	stats := Stats{TrackCount: len(durations)}
	for i, d := range durations {
		stats.TotalDurationMS += d
		if i == 0 || d < stats.MinDurationMS {
			stats.MinDurationMS = d
		}
		if i == 0 || d > stats.MaxDurationMS {
			stats.MaxDurationMS = d
		}
	}

	for _, t := range tempos {
		if t == nil {
			continue
		}
		if !stats.HasTempo {
			stats.MinTempo, stats.MaxTempo, stats.HasTempo = *t, *t, true
			continue
		}
		stats.MinTempo = min(stats.MinTempo, *t)
		stats.MaxTempo = max(stats.MaxTempo, *t)
	}
	return stats
}

// SortKey names a column rows can be ordered by.
type SortKey string

const (
	SortByIndex    SortKey = "index"
	SortByTitle    SortKey = "title"
	SortByArtist   SortKey = "artist"
	SortByTempo    SortKey = "tempo"
	SortByDuration SortKey = "duration"
)

// ParseSortKey returns the key for name, or false for an unknown name.
func ParseSortKey(name string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(name))); k {
	case SortByIndex, SortByTitle, SortByArtist, SortByTempo, SortByDuration:
		return k, true
	case "":
		return SortByIndex, true
	default:
		return "", false
	}
}

// SortRows returns a sorted copy of rows. The input and the rows themselves are left untouched,
// so Index still reports playlist position. Ties keep playlist order and absent tempos always sort last.
func SortRows(rows []Row, key SortKey, desc bool) []Row {
	out := slices.Clone(rows)

	compare := func(a, b Row) int {
		switch key {
		case SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortByArtist:
			return strings.Compare(strings.ToLower(a.Artists), strings.ToLower(b.Artists))
		case SortByDuration:
			return cmp.Compare(a.DurationMS, b.DurationMS)
		case SortByTempo:
			return cmp.Compare(*a.Tempo, *b.Tempo)
		default:
			return cmp.Compare(a.Index, b.Index)
		}
	}

	slices.SortStableFunc(out, func(a, b Row) int {
		if key == SortByTempo && (a.Tempo == nil || b.Tempo == nil) {
			switch {
			case a.Tempo == nil && b.Tempo == nil:
				return 0
			case a.Tempo == nil:
				return 1
			default:
				return -1
			}
		}
		c := compare(a, b)
		if desc {
			return -c
		}
		return c
	})
	return out
}
