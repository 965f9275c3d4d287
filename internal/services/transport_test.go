package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetryTransport(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 50 * time.Millisecond}

	tests := []struct {
		name       string
		statuses   []int
		wantStatus int
		wantHits   int32
	}{
		{name: "success", statuses: []int{200}, wantStatus: 200, wantHits: 1},
		{name: "429 then success", statuses: []int{429, 200}, wantStatus: 200, wantHits: 2},
		{name: "500 then success", statuses: []int{500, 502, 200}, wantStatus: 200, wantHits: 3},
		{name: "exhausted", statuses: []int{503, 503, 503, 200}, wantStatus: 503, wantHits: 3},
		{name: "client error not retried", statuses: []int{404, 200}, wantStatus: 404, wantHits: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := hits.Add(1)
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer srv.Close()

			client := &http.Client{Transport: newRetryTransport(nil, policy, nil, nil)}
			resp, err := client.Get(srv.URL)
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if hits.Load() != tt.wantHits {
				t.Errorf("hits = %d, want %d", hits.Load(), tt.wantHits)
			}
		})
	}

	t.Run("replays request body", func(t *testing.T) {
		var bodies []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(b))
			if len(bodies) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		rt := newRetryTransport(nil, policy, nil, nil)
		req, _ := http.NewRequest(http.MethodPost, srv.URL, io.NopCloser(strings.NewReader("grant_type=client_credentials")))
		resp, err := rt.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() unexpected error: %v", err)
		}
		resp.Body.Close()

		if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[1] != "grant_type=client_credentials" {
			t.Errorf("bodies = %q, want the same body twice", bodies)
		}
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "10")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		rt := newRetryTransport(nil, RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond}, nil, nil)
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		_, err := rt.RoundTrip(req)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("RoundTrip() error = %v, want %v", err, context.DeadlineExceeded)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "missing", header: "", want: 0},
		{name: "seconds", header: "3", want: 3 * time.Second},
		{name: "zero", header: "0", want: 0},
		{name: "garbage", header: "soon", want: 0},
		{name: "past date", header: "Mon, 02 Jan 2006 15:04:05 GMT", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			if got := parseRetryAfter(resp); got != tt.want {
				t.Errorf("parseRetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	rt := newRetryTransport(nil, RetryPolicy{MaxAttempts: 5, BaseBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}, nil, nil)

	tests := []struct {
		attempt    int
		retryAfter time.Duration
		want       time.Duration
	}{
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 3, want: 800 * time.Millisecond},
		{attempt: 4, want: time.Second},
		{attempt: 0, retryAfter: 300 * time.Millisecond, want: 300 * time.Millisecond},
		{attempt: 0, retryAfter: time.Minute, want: time.Second},
	}

	for _, tt := range tests {
		if got := rt.backoff(tt.attempt, tt.retryAfter); got != tt.want {
			t.Errorf("backoff(%d, %v) = %v, want %v", tt.attempt, tt.retryAfter, got, tt.want)
		}
	}
}
