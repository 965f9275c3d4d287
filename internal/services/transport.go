package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// RetryPolicy bounds how often a request is retried on transient failures.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy makes three attempts with 500ms, 1s backoff, capped at 30s for Retry-After.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseBackoff: 500 * time.Millisecond, MaxBackoff: 30 * time.Second}
}

// retryTransport is an [http.RoundTripper] that spaces requests with a token bucket and retries
// 429s, 5xx responses and transport errors with exponential backoff.
//
// Once attempts are exhausted the last response is returned as is, so callers still see the upstream status.
type retryTransport struct {
	base    http.RoundTripper
	policy  RetryPolicy
	limiter *rate.Limiter
	logger  *log.Logger
}

func newRetryTransport(base http.RoundTripper, policy RetryPolicy, limiter *rate.Limiter, logger *log.Logger) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &retryTransport{base: base, policy: policy, limiter: limiter, logger: logger}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	getBody := req.GetBody
	if req.Body != nil && req.Body != http.NoBody && getBody == nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		_ = req.Body.Close()
		getBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("request canceled: %w", err)
			}
		}

		attemptReq := req
		if getBody != nil {
			body, err := getBody()
			if err != nil {
				return nil, fmt.Errorf("reset request body: %w", err)
			}
			attemptReq = req.Clone(ctx)
			attemptReq.Body = body
		}

		resp, err := t.base.RoundTrip(attemptReq)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry || attempt == t.policy.MaxAttempts-1 {
			return resp, err
		}

		if err != nil {
			t.logger.Warn("retrying request", "url", req.URL.Path, "attempt", attempt+1, "max", t.policy.MaxAttempts, "error", err)
		} else {
			t.logger.Warn("retrying request", "url", req.URL.Path, "attempt", attempt+1, "max", t.policy.MaxAttempts, "status", resp.StatusCode)
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		if err := sleepWithContext(ctx, t.backoff(attempt, retryAfter)); err != nil {
			return nil, err
		}
	}
}

func (t *retryTransport) backoff(attempt int, retryAfter time.Duration) time.Duration {
	delay := t.policy.BaseBackoff * time.Duration(1<<attempt)
	if retryAfter > 0 {
		delay = retryAfter
	}
	if t.policy.MaxBackoff > 0 && delay > t.policy.MaxBackoff {
		delay = t.policy.MaxBackoff
	}
	return delay
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

// parseRetryAfter reads Retry-After as delay-seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
