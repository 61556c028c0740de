// Package musicbrainz looks up artist origins in the MusicBrainz registry.
package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2"
	DefaultUserAgent = "Tuniverse/0.1 (contact@example.com)"

	breakerName       = "musicbrainz"
	fallbackPageLimit = 3
)

// Config holds client settings. Zero values select defaults.
type Config struct {
	BaseURL          string
	UserAgent        string
	Timeout          time.Duration
	RequestsPerSec   float64
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
	HTTPClient       *http.Client
	Metrics          *metrics.Metrics
}

// Client is a rate-limited, circuit-broken MusicBrainz artist search client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[searchResponse]
	metrics    *metrics.Metrics
}

// compile-time interface assertion
var _ ports.OriginLookup = (*Client)(nil)

// NewClient constructs a client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenDelay <= 0 {
		cfg.BreakerOpenDelay = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		metrics:    cfg.Metrics,
	}

	c.metrics.SetBreakerState(breakerName, 0)
	failures := cfg.BreakerFailures
	c.cb = gobreaker.NewCircuitBreaker[searchResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("musicbrainz adapter: circuit breaker state change")
			c.metrics.SetBreakerState(name, stateToFloat(to))
		},
	})
	return c
}

// LookupOrigin returns the raw origin label of the best matching artist. When
// the exact name finds nothing, a cleaned-up name is tried and its results
// must resemble the query.
func (c *Client) LookupOrigin(ctx context.Context, artist string) (string, error) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return "", ports.ErrOriginNotFound
	}

	resp, err := c.search(ctx, artist, 1)
	if err != nil {
		return "", err
	}
	if len(resp.Artists) > 0 {
		if label := resp.Artists[0].originLabel(); label != "" {
			return label, nil
		}
	}

	cleaned := normalizeSearchInput(artist)
	if cleaned == "" || cleaned == strings.ToLower(artist) {
		return "", ports.ErrOriginNotFound
	}

	resp, err = c.search(ctx, cleaned, fallbackPageLimit)
	if err != nil {
		return "", err
	}
	if candidate, ok := bestCandidate(cleaned, resp.Artists); ok {
		if label := candidate.originLabel(); label != "" {
			return label, nil
		}
	}
	return "", ports.ErrOriginNotFound
}

func (c *Client) search(ctx context.Context, name string, limit int) (searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return searchResponse{}, fmt.Errorf("musicbrainz adapter: rate limiter: %w: %w", ports.ErrLookupSkipped, err)
	}

	resp, err := c.cb.Execute(func() (searchResponse, error) {
		return c.doSearch(ctx, name, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Ctx(ctx).Debug().Str("artist", name).Msg("musicbrainz adapter: request rejected by circuit breaker")
			return searchResponse{}, fmt.Errorf("musicbrainz adapter: search %q: %w: %w", name, ports.ErrLookupSkipped, err)
		}
		return searchResponse{}, fmt.Errorf("musicbrainz adapter: search %q: %w", name, err)
	}
	return resp, nil
}

func (c *Client) doSearch(ctx context.Context, name string, limit int) (searchResponse, error) {
	query := url.Values{}
	query.Set("query", phraseQuery(name))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("fmt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/artist?"+query.Encode(), nil)
	if err != nil {
		return searchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	logging.Ctx(ctx).Debug().
		Str("artist", name).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("musicbrainz adapter: artist search")

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return searchResponse{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return searchResponse{}, fmt.Errorf("decode error: %w", err)
	}
	return body, nil
}

// BreakerState reports the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
