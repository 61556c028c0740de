// Package config loads service configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Spotify     SpotifyConfig     `koanf:"spotify"`
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`
	Passport    PassportConfig    `koanf:"passport"`
	Storage     StorageConfig     `koanf:"storage"`
	Worker      WorkerConfig      `koanf:"worker"`
	Auth        AuthConfig        `koanf:"auth"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	// ShareRateLimit is the number of community shares allowed per client per
	// minute. Zero disables the limit.
	ShareRateLimit int `koanf:"share_rate_limit"`
}

type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	RedirectURI  string        `koanf:"redirect_uri"`
	BaseURL      string        `koanf:"base_url"`
	AuthURL      string        `koanf:"auth_url"`
	TokenURL     string        `koanf:"token_url"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

// MusicBrainzConfig controls the external origin lookup. When Enabled is
// false the resolver only consults its seed table.
type MusicBrainzConfig struct {
	Enabled          bool          `koanf:"enabled"`
	BaseURL          string        `koanf:"base_url"`
	UserAgent        string        `koanf:"user_agent"`
	Timeout          time.Duration `koanf:"timeout"`
	RequestsPerSec   float64       `koanf:"requests_per_sec"`
	BreakerFailures  uint32        `koanf:"breaker_failures"`
	BreakerOpenDelay time.Duration `koanf:"breaker_open_delay"`
}

type PassportConfig struct {
	TopDefaultLimit    int           `koanf:"top_default_limit"`
	TopMaxLimit        int           `koanf:"top_max_limit"`
	RecentDefaultLimit int           `koanf:"recent_default_limit"`
	RecentMaxLimit     int           `koanf:"recent_max_limit"`
	RecentArtistCap    int           `koanf:"recent_artist_cap"`
	ResolveConcurrency int           `koanf:"resolve_concurrency"`
	NegativeCacheTTL   time.Duration `koanf:"negative_cache_ttl"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

type WorkerConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

type AuthConfig struct {
	SecretKey   string        `koanf:"secret_key"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
	FrontendURL string        `koanf:"frontend_url"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShareRateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.share_rate_limit must be >= 0, got %d", c.Server.ShareRateLimit))
	}

	p := c.Passport
	if p.TopMaxLimit < 1 || p.TopDefaultLimit < 1 || p.TopDefaultLimit > p.TopMaxLimit {
		errs = append(errs, fmt.Errorf("passport: top limits must satisfy 1 <= default (%d) <= max (%d)", p.TopDefaultLimit, p.TopMaxLimit))
	}
	if p.RecentMaxLimit < 1 || p.RecentDefaultLimit < 1 || p.RecentDefaultLimit > p.RecentMaxLimit {
		errs = append(errs, fmt.Errorf("passport: recent limits must satisfy 1 <= default (%d) <= max (%d)", p.RecentDefaultLimit, p.RecentMaxLimit))
	}
	if p.RecentArtistCap < 1 {
		errs = append(errs, fmt.Errorf("passport.recent_artist_cap must be >= 1, got %d", p.RecentArtistCap))
	}
	if p.ResolveConcurrency < 1 {
		errs = append(errs, fmt.Errorf("passport.resolve_concurrency must be >= 1, got %d", p.ResolveConcurrency))
	}
	if p.NegativeCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("passport.negative_cache_ttl must be >= 0, got %s", p.NegativeCacheTTL))
	}

	if c.MusicBrainz.Enabled {
		if c.MusicBrainz.BaseURL == "" {
			errs = append(errs, errors.New("musicbrainz.base_url is required when enabled"))
		}
		if c.MusicBrainz.Timeout <= 0 {
			errs = append(errs, errors.New("musicbrainz.timeout must be positive"))
		}
		if c.MusicBrainz.RequestsPerSec <= 0 {
			errs = append(errs, errors.New("musicbrainz.requests_per_sec must be positive"))
		}
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for sqlite"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported (sqlite, memory)", c.Storage.Driver))
	}

	if c.Worker.Workers < 1 || c.Worker.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("worker: workers (%d) and queue_size (%d) must be >= 1", c.Worker.Workers, c.Worker.QueueSize))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not supported (json, console)", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// SpotifyConfigured reports whether OAuth credentials are present.
func (c *Config) SpotifyConfigured() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// ResolveConcurrency is the builder fan-out to use. With MusicBrainz on it
// never exceeds the registry's request rate, so queued lookups get a rate
// slot well inside their timeout.
func (c *Config) ResolveConcurrency() int {
	n := c.Passport.ResolveConcurrency
	if !c.MusicBrainz.Enabled {
		return n
	}
	return max(1, min(n, int(c.MusicBrainz.RequestsPerSec)))
}
