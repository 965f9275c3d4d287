// Spotify Web API implementation of [Fetcher]
//
// Built on github.com/zmb3/spotify/v2 with the client-credentials flow, which is enough for public playlists.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	// pageLimit is the largest page the playlist items endpoint serves.
	pageLimit = 100
	// featureBatchSize is the most IDs the audio features endpoint accepts per request.
	featureBatchSize = 100
)

// SpotifyService implements [Fetcher] for the Spotify Web API.
type SpotifyService struct {
	client *spotify.Client
	logger *log.Logger
}

var _ Fetcher = (*SpotifyService)(nil)

type spotifyOptions struct {
	apiBaseURL string
	tokenURL   string
	base       http.RoundTripper
	policy     RetryPolicy
	limit      rate.Limit
	burst      int
	logger     *log.Logger
}

// SpotifyOption configures [NewSpotifyService].
type SpotifyOption func(*spotifyOptions)

// WithAPIBaseURL points the client at another API root (used by tests).
func WithAPIBaseURL(u string) SpotifyOption {
	return func(o *spotifyOptions) { o.apiBaseURL = u }
}

// WithTokenURL overrides the client-credentials token endpoint.
func WithTokenURL(u string) SpotifyOption {
	return func(o *spotifyOptions) { o.tokenURL = u }
}

// WithTransport sets the transport underneath retries and rate limiting.
func WithTransport(rt http.RoundTripper) SpotifyOption {
	return func(o *spotifyOptions) { o.base = rt }
}

// WithRetryPolicy replaces [DefaultRetryPolicy].
func WithRetryPolicy(p RetryPolicy) SpotifyOption {
	return func(o *spotifyOptions) { o.policy = p }
}

// WithRateLimit spaces outgoing requests. [rate.Inf] disables spacing.
func WithRateLimit(limit rate.Limit, burst int) SpotifyOption {
	return func(o *spotifyOptions) { o.limit, o.burst = limit, burst }
}

// WithLogger sets the logger used for retries and fetch progress.
func WithLogger(l *log.Logger) SpotifyOption {
	return func(o *spotifyOptions) { o.logger = l }
}

// NewSpotifyService creates a Spotify fetcher authenticated with client credentials.
//
// Tokens are requested lazily on the first API call and refreshed automatically.
// Both token and API requests go through the retrying, rate-limited transport.
func NewSpotifyService(ctx context.Context, creds shared.SpotifyConfig, opts ...SpotifyOption) (*SpotifyService, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	o := spotifyOptions{
		tokenURL: spotifyauth.TokenURL,
		policy:   DefaultRetryPolicy(),
		limit:    rate.Every(100 * time.Millisecond),
		burst:    5,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	transport := newRetryTransport(o.base, o.policy, rate.NewLimiter(o.limit, o.burst), o.logger)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: transport})

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     o.tokenURL,
	}

	clientOpts := []spotify.ClientOption{}
	if o.apiBaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(o.apiBaseURL))
	}

	return &SpotifyService{
		client: spotify.New(config.Client(ctx), clientOpts...),
		logger: o.logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Playlist retrieves playlist metadata.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	pl, err := s.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, wrapSpotifyError(err, "playlist "+playlistID)
	}

	return &models.Playlist{
		ID:         string(pl.ID),
		Name:       pl.Name,
		Owner:      pl.Owner.DisplayName,
		TrackCount: int(pl.Tracks.Total),
	}, nil
}

// Tracks pages through playlist items, pageLimit at a time.
//
// Local files, episodes and removed (null) tracks are skipped. Any other malformed
// track aborts the fetch with [shared.ErrMalformedRecord].
func (s *SpotifyService) Tracks(ctx context.Context, playlistID string) ([]models.RawTrack, error) {
	var tracks []models.RawTrack
	offset := 0

	for {
		page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, wrapSpotifyError(err, "playlist items "+playlistID)
		}

		for _, item := range page.Items {
			full := item.Track.Track
			if item.IsLocal || full == nil || item.Track.Episode != nil {
				s.logger.Debug("skipping playlist item", "offset", offset, "local", item.IsLocal)
				continue
			}

			track := models.RawTrack{
				ID:         string(full.ID),
				Title:      full.Name,
				DurationMS: int64(full.Duration),
			}
			for _, a := range full.Artists {
				track.Artists = append(track.Artists, models.Artist{Name: a.Name})
			}

			if err := track.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
			}
			tracks = append(tracks, track)
		}

		offset += len(page.Items)
		s.logger.Debug("fetched playlist page", "id", playlistID, "offset", offset, "total", page.Total)

		if page.Next == "" || len(page.Items) < pageLimit {
			break
		}
	}

	return tracks, nil
}

// Features requests audio features in batches of featureBatchSize.
//
// A batch rejected with 403 (the endpoint is restricted for newer applications) is treated
// as having no features. Any other error aborts.
func (s *SpotifyService) Features(ctx context.Context, trackIDs []string) (map[string]models.FeatureRecord, error) {
	features := make(map[string]models.FeatureRecord, len(trackIDs))

	for start := 0; start < len(trackIDs); start += featureBatchSize {
		end := min(start+featureBatchSize, len(trackIDs))

		ids := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			ids = append(ids, spotify.ID(id))
		}

		batch, err := s.client.GetAudioFeatures(ctx, ids...)
		if err != nil {
			if statusOf(err) == http.StatusForbidden {
				s.logger.Warn("audio features unavailable, tempo left blank", "batch_start", start, "batch_size", len(ids))
				continue
			}
			return nil, wrapSpotifyError(err, "audio features")
		}

		for _, af := range batch {
			if af == nil {
				continue
			}
			tempo := float64(af.Tempo)
			record := models.FeatureRecord{ID: string(af.ID)}
			if tempo > 0 {
				record.Tempo = &tempo
			}
			if err := record.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
			}
			features[record.ID] = record
		}
	}

	return features, nil
}

// statusOf returns the HTTP status carried by a Spotify API error, or 0.
func statusOf(err error) int {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var ptrErr *spotify.Error
	if errors.As(err, &ptrErr) && ptrErr != nil {
		return ptrErr.Status
	}
	return 0
}

func wrapSpotifyError(err error, what string) error {
	if statusOf(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, what)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrUpstreamUnavailable, what, err)
}
