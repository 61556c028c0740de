package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Client reads listening history from the Spotify Web API on behalf of a
// user. Every call takes the user's bearer access token.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
}

// compile-time interface assertion
var _ ports.ListeningHistory = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRetry sets the attempt budget and base backoff for retryable failures.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = baseBackoff
	}
}

// NewClient constructs a new Spotify client.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON issues an authenticated GET and decodes a 200 response into out.
// Failures are reported as ports.UpstreamError tagged with op.
func (c *Client) getJSON(ctx context.Context, accessToken, op, path string, query url.Values, out any) error {
	if strings.TrimSpace(accessToken) == "" {
		return fmt.Errorf("spotify adapter: %w", ports.UpstreamError{Op: op, Status: http.StatusUnauthorized, Detail: "missing access token"})
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	resp, err := c.getWithRetry(ctx, op, accessToken, u)
	if err != nil {
		var upstream ports.UpstreamError
		if !errors.As(err, &upstream) {
			upstream = ports.UpstreamError{Op: op, Detail: err.Error()}
		}
		return fmt.Errorf("spotify adapter: %w", upstream)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify adapter: %w", upstreamFailure(op, resp, nil))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: %w", ports.UpstreamError{Op: op, Status: resp.StatusCode, Detail: "decode error: " + err.Error()})
	}
	return nil
}
