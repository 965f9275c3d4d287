package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/schedule"
	"github.com/desertthunder/setlist/internal/shared"
	th "github.com/desertthunder/setlist/internal/testing"
)

func testRequest() Request {
	return Request{
		Reference: "https://open.spotify.com/playlist/" + th.PlaylistID + "?si=x",
		Start:     time.Date(2026, 10, 24, 9, 0, 0, 0, time.UTC),
		Location:  time.UTC,
	}
}

func TestAnalyzer(t *testing.T) {
	t.Run("Analyze", func(t *testing.T) {
		fetcher := th.NewMockFetcher(th.SampleSnapshot(th.PlaylistID))
		analyzer := NewAnalyzer(fetcher, nil)

		progress := make(chan ProgressUpdate, 20)
		res, err := analyzer.Analyze(context.Background(), testRequest(), progress)
		if err != nil {
			t.Fatalf("Analyze() unexpected error: %v", err)
		}
		close(progress)

		if res.Playlist.Name != "Friday Warmup" || res.FromCache {
			t.Errorf("Analyze() result = %+v", res)
		}
		if len(res.Rows) != 3 {
			t.Fatalf("Analyze() returned %d rows, want 3", len(res.Rows))
		}

		wantClocks := []string{"09:03", "09:06", "09:10"}
		for i, r := range res.Rows {
			if r.ClockDisplay != wantClocks[i] {
				t.Errorf("row %d clock = %s, want %s", i+1, r.ClockDisplay, wantClocks[i])
			}
		}
		if res.Rows[1].TempoColor != schedule.NeutralColor {
			t.Errorf("row 2 tempo color = %s, want neutral", res.Rows[1].TempoColor)
		}
		if res.Stats.TotalDurationMS != 600000 {
			t.Errorf("total = %d, want 600000", res.Stats.TotalDurationMS)
		}

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		want := []Phase{ParseReference, LookupCache, FetchPlaylist, FetchTracks, FetchFeatures, AssembleRows}
		if len(phases) != len(want) {
			t.Fatalf("phases = %v, want %v", phases, want)
		}
		for i := range want {
			if phases[i] != want[i] {
				t.Errorf("phase %d = %s, want %s", i, phases[i], want[i])
			}
		}
	})

	t.Run("Invalid Reference", func(t *testing.T) {
		fetcher := th.NewMockFetcher()
		analyzer := NewAnalyzer(fetcher, nil)

		req := testRequest()
		req.Reference = "https://example.com/not-a-playlist"
		_, err := analyzer.Analyze(context.Background(), req, nil)
		if !errors.Is(err, shared.ErrInvalidReference) {
			t.Errorf("Analyze() error = %v, want %v", err, shared.ErrInvalidReference)
		}
		if fetcher.CallCount("Playlist") != 0 {
			t.Error("no fetch should happen for an invalid reference")
		}
	})

	t.Run("Fetch Failure Aborts", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(*th.MockFetcher)
		}{
			{name: "playlist", setup: func(m *th.MockFetcher) { m.PlaylistErr = shared.ErrUpstreamUnavailable }},
			{name: "tracks", setup: func(m *th.MockFetcher) { m.TracksErr = shared.ErrUpstreamUnavailable }},
			{name: "features", setup: func(m *th.MockFetcher) { m.FeaturesErr = shared.ErrUpstreamUnavailable }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				fetcher := th.NewMockFetcher(th.SampleSnapshot(th.PlaylistID))
				tt.setup(fetcher)
				cache := th.NewMemoryCache()
				analyzer := NewAnalyzer(fetcher, nil).WithCache(cache, time.Hour)

				res, err := analyzer.Analyze(context.Background(), testRequest(), nil)
				if !errors.Is(err, shared.ErrUpstreamUnavailable) {
					t.Errorf("Analyze() error = %v, want %v", err, shared.ErrUpstreamUnavailable)
				}
				if res != nil {
					t.Error("Analyze() should not return partial results")
				}
				if cache.Stores != 0 {
					t.Error("a failed fetch must not be cached")
				}
			})
		}
	})

	t.Run("Malformed Record", func(t *testing.T) {
		snap := th.SampleSnapshot(th.PlaylistID)
		snap.Features["bad"] = models.FeatureRecord{ID: "bad", Tempo: models.Tempo(-1)}
		snap.Tracks = append(snap.Tracks, models.RawTrack{ID: "bad", DurationMS: 1000})
		analyzer := NewAnalyzer(th.NewMockFetcher(snap), nil)

		_, err := analyzer.Analyze(context.Background(), testRequest(), nil)
		if !errors.Is(err, shared.ErrMalformedRecord) {
			t.Errorf("Analyze() error = %v, want %v", err, shared.ErrMalformedRecord)
		}
	})

	t.Run("Cache Hit", func(t *testing.T) {
		fetcher := th.NewMockFetcher(th.SampleSnapshot(th.PlaylistID))
		cache := th.NewMemoryCache()
		analyzer := NewAnalyzer(fetcher, nil).WithCache(cache, time.Hour)
		analyzer.now = func() time.Time { return time.Date(2026, 10, 24, 12, 0, 0, 0, time.UTC) }
		cache.Now = analyzer.now

		first, err := analyzer.Analyze(context.Background(), testRequest(), nil)
		if err != nil {
			t.Fatalf("Analyze() unexpected error: %v", err)
		}
		second, err := analyzer.Analyze(context.Background(), testRequest(), nil)
		if err != nil {
			t.Fatalf("Analyze() unexpected error: %v", err)
		}

		if first.FromCache || !second.FromCache {
			t.Errorf("FromCache = %v, %v, want false, true", first.FromCache, second.FromCache)
		}
		if fetcher.CallCount("Tracks") != 1 {
			t.Errorf("Tracks() called %d times, want 1", fetcher.CallCount("Tracks"))
		}
		if len(second.Rows) != len(first.Rows) || second.Rows[2].ClockDisplay != first.Rows[2].ClockDisplay {
			t.Error("cached analysis should produce the same schedule")
		}
	})

	t.Run("Refresh Skips Cache", func(t *testing.T) {
		fetcher := th.NewMockFetcher(th.SampleSnapshot(th.PlaylistID))
		cache := th.NewMemoryCache()
		analyzer := NewAnalyzer(fetcher, nil).WithCache(cache, time.Hour)
		cache.Now = analyzer.now

		req := testRequest()
		for range 2 {
			req.Refresh = true
			if _, err := analyzer.Analyze(context.Background(), req, nil); err != nil {
				t.Fatalf("Analyze() unexpected error: %v", err)
			}
		}
		if fetcher.CallCount("Tracks") != 2 {
			t.Errorf("Tracks() called %d times, want 2", fetcher.CallCount("Tracks"))
		}
		if cache.Stores != 2 {
			t.Errorf("cache stores = %d, want 2", cache.Stores)
		}
	})

	t.Run("New Start Recomputes", func(t *testing.T) {
		fetcher := th.NewMockFetcher(th.SampleSnapshot(th.PlaylistID))
		analyzer := NewAnalyzer(fetcher, nil).WithCache(th.NewMemoryCache(), time.Hour)

		req := testRequest()
		req.Start = time.Date(2026, 10, 24, 23, 55, 0, 0, time.UTC)
		res, err := analyzer.Analyze(context.Background(), req, nil)
		if err != nil {
			t.Fatalf("Analyze() unexpected error: %v", err)
		}
		if got := res.Rows[2].Clock; got.Day() != 25 || res.Rows[2].ClockDisplay != "00:05" {
			t.Errorf("last clock = %v (%s), want 00:05 on the 25th", got, res.Rows[2].ClockDisplay)
		}
	})

	t.Run("Non-Blocking Progress", func(t *testing.T) {
		analyzer := NewAnalyzer(th.NewMockFetcher(th.SampleSnapshot(th.PlaylistID)), nil)

		progress := make(chan ProgressUpdate)
		done := make(chan error, 1)
		go func() {
			_, err := analyzer.Analyze(context.Background(), testRequest(), progress)
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Analyze() unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Analyze() blocked on an unread progress channel")
		}
	})
}

func TestUniqueTrackIDs(t *testing.T) {
	got := uniqueTrackIDs([]models.RawTrack{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("uniqueTrackIDs() = %v, want [a b c]", got)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{ParseReference, "parse_reference"},
		{LookupCache, "lookup_cache"},
		{FetchPlaylist, "fetch_playlist"},
		{FetchTracks, "fetch_tracks"},
		{FetchFeatures, "fetch_features"},
		{AssembleRows, "assemble_rows"},
		{ExportPlaylist, "export_playlist"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
