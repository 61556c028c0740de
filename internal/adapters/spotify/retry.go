package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	// maxRetryAfter caps how long a Retry-After header may stall one read.
	maxRetryAfter = 30 * time.Second
)

// getWithRetry sends an authenticated GET to target, rebuilding the request
// for every attempt. Rate-limited (429), 5xx and transport failures are
// retried with exponential backoff or the server's Retry-After hint. Other
// responses are returned as is; once attempts run out the last failure is
// returned as a ports.UpstreamError with Spotify's status.
func (c *Client) getWithRetry(ctx context.Context, op, accessToken, target string) (*http.Response, error) {
	attempts := c.maxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	backoff := c.baseBackoff
	if backoff <= 0 {
		backoff = defaultBaseBackoff
	}

	log := logging.Ctx(ctx)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s request canceled: %w", op, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)

		resp, err := c.httpClient.Do(req)
		wait, retryable := retryDelay(resp, err)
		if !retryable {
			return resp, nil
		}

		failure := upstreamFailure(op, resp, err)
		log.Warn().
			Str("op", op).
			Int("status", failure.Status).
			Int("attempt", attempt).
			Int("max", attempts).
			Msg("spotify adapter: read failed")
		if attempt >= attempts {
			return nil, failure
		}

		if wait <= 0 {
			wait = backoff << (attempt - 1)
		}
		if err := sleepWithContext(ctx, wait); err != nil {
			return nil, fmt.Errorf("%s request canceled: %w", op, err)
		}
	}
}

// retryDelay reports whether a read should be retried and the server's
// requested delay, if any.
func retryDelay(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

// upstreamFailure converts a failed attempt into an UpstreamError and
// releases the response body.
func upstreamFailure(op string, resp *http.Response, err error) ports.UpstreamError {
	if err != nil {
		return ports.UpstreamError{Op: op, Detail: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return ports.UpstreamError{Op: op, Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
}

// parseRetryAfter reads Retry-After as seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0
	}

	var wait time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		wait = time.Duration(seconds) * time.Second
	} else if when, err := http.ParseTime(value); err == nil {
		wait = time.Until(when)
	}
	if wait <= 0 {
		return 0
	}
	return min(wait, maxRetryAfter)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
