// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/models"
)

// PlaylistID is a well-formed playlist ID for tests.
const PlaylistID = "37i9dQZF1DXcBWIGoYBM5M"

// MockFetcher is a test double for [services.Fetcher] serving snapshots from memory.
type MockFetcher struct {
	mu        sync.Mutex
	Snapshots map[string]*models.Snapshot

	PlaylistErr error
	TracksErr   error
	FeaturesErr error
	Delay       time.Duration // Delay applies to every call and honours context cancellation

	Calls map[string]int // Calls counts invocations per method name
}

// NewMockFetcher returns a MockFetcher serving the given snapshots.
func NewMockFetcher(snapshots ...*models.Snapshot) *MockFetcher {
	m := &MockFetcher{Snapshots: map[string]*models.Snapshot{}, Calls: map[string]int{}}
	for _, s := range snapshots {
		m.Snapshots[s.Playlist.ID] = s
	}
	return m
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) enter(ctx context.Context, method string) error {
	m.mu.Lock()
	m.Calls[method]++
	m.mu.Unlock()

	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Delay):
		return nil
	}
}

// CallCount returns how many times method was called.
func (m *MockFetcher) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MockFetcher) snapshot(id string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Snapshots[id]
	if !ok {
		return nil, fmt.Errorf("playlist %s not found", id)
	}
	return s, nil
}

func (m *MockFetcher) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if err := m.enter(ctx, "Playlist"); err != nil {
		return nil, err
	}
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	s, err := m.snapshot(playlistID)
	if err != nil {
		return nil, err
	}
	pl := s.Playlist
	return &pl, nil
}

func (m *MockFetcher) Tracks(ctx context.Context, playlistID string) ([]models.RawTrack, error) {
	if err := m.enter(ctx, "Tracks"); err != nil {
		return nil, err
	}
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	s, err := m.snapshot(playlistID)
	if err != nil {
		return nil, err
	}
	return append([]models.RawTrack(nil), s.Tracks...), nil
}

func (m *MockFetcher) Features(ctx context.Context, trackIDs []string) (map[string]models.FeatureRecord, error) {
	if err := m.enter(ctx, "Features"); err != nil {
		return nil, err
	}
	if m.FeaturesErr != nil {
		return nil, m.FeaturesErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.FeatureRecord)
	for _, s := range m.Snapshots {
		for _, id := range trackIDs {
			if f, ok := s.Features[id]; ok {
				out[id] = f
			}
		}
	}
	return out, nil
}

// MemoryCache is an in-memory snapshot cache keyed by playlist ID.
type MemoryCache struct {
	mu        sync.Mutex
	snapshots map[string]*models.Snapshot
	Now       func() time.Time
	Stores    int
}

// NewMemoryCache returns an empty MemoryCache using the wall clock.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{snapshots: map[string]*models.Snapshot{}, Now: time.Now}
}

func (c *MemoryCache) Lookup(playlistID string, maxAge time.Duration) (*models.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.snapshots[playlistID]
	if !ok || maxAge <= 0 || c.Now().Sub(s.FetchedAt) > maxAge {
		return nil, false
	}
	return s, true
}

func (c *MemoryCache) Store(s *models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[s.Playlist.ID] = s
	c.Stores++
}

// SampleSnapshot returns a three-track snapshot: durations 180000, 200000, 220000 ms and tempos 120, absent, 140.
func SampleSnapshot(playlistID string) *models.Snapshot {
	return &models.Snapshot{
		Playlist: models.Playlist{ID: playlistID, Name: "Friday Warmup", Owner: "DJ", TrackCount: 3},
		Tracks: []models.RawTrack{
			{ID: playlistID + "-1", Title: "Opening", Artists: []models.Artist{{Name: "A"}}, DurationMS: 180000},
			{ID: playlistID + "-2", Title: "Middle", Artists: []models.Artist{{Name: "B"}, {Name: "C"}}, DurationMS: 200000},
			{ID: playlistID + "-3", Title: "Closer", Artists: []models.Artist{{Name: "D"}}, DurationMS: 220000},
		},
		Features: map[string]models.FeatureRecord{
			playlistID + "-1": {ID: playlistID + "-1", Tempo: models.Tempo(120)},
			playlistID + "-3": {ID: playlistID + "-3", Tempo: models.Tempo(140)},
		},
		FetchedAt: time.Date(2026, 10, 24, 12, 0, 0, 0, time.UTC),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
