package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

const (
	defaultMaxRetries = 3
	defaultBackoffMs  = 500
	maxBackoff        = 10 * time.Second
)

// doRequestWithRetry retries GET requests on transport errors, 429 and 5xx,
// honoring Retry-After. When attempts run out the last response is returned
// as-is so its status reaches the caller. Other methods are sent once.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		// #nosec G107 -- URL constructed from the configured Spotify API baseURL
		return c.httpClient.Do(req)
	}

	maxRetries := c.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	baseBackoff := c.baseBackoff
	if baseBackoff <= 0 {
		baseBackoff = time.Duration(defaultBackoffMs) * time.Millisecond
	}

	ctx := req.Context()
	log := logging.Ctx(ctx)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("spotify adapter: request canceled: %w", err)
		}

		// #nosec G107 -- URL constructed from the configured Spotify API baseURL
		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		attemptNum := attempt + 1
		if attemptNum >= maxRetries {
			if err != nil {
				return nil, fmt.Errorf("spotify adapter: request failed after %d attempts: %w", maxRetries, err)
			}
			return resp, nil
		}

		if err != nil {
			log.Warn().Err(err).Int("attempt", attemptNum).Int("max_attempts", maxRetries).
				Str("path", req.URL.Path).Msg("spotify request failed, retrying")
		} else {
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attemptNum).Int("max_attempts", maxRetries).
				Str("path", req.URL.Path).Msg("spotify request failed, retrying")
			_ = resp.Body.Close()
		}
		metrics.RecordRetry("spotify")

		backoff := baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}
		backoff = min(backoff, maxBackoff)

		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}
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

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
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
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
