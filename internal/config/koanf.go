package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tuniverse/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			ShareRateLimit:    30,
		},
		Spotify: SpotifyConfig{
			RedirectURI:  "http://localhost:8080/auth/callback",
			BaseURL:      "https://api.spotify.com/v1",
			AuthURL:      "https://accounts.spotify.com/authorize",
			TokenURL:     "https://accounts.spotify.com/api/token",
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
		},
		MusicBrainz: MusicBrainzConfig{
			Enabled:          false,
			BaseURL:          "https://musicbrainz.org/ws/2",
			UserAgent:        "Tuniverse/0.1 (contact@example.com)",
			Timeout:          3 * time.Second,
			RequestsPerSec:   1,
			BreakerFailures:  5,
			BreakerOpenDelay: 30 * time.Second,
		},
		Passport: PassportConfig{
			TopDefaultLimit:    8,
			TopMaxLimit:        20,
			RecentDefaultLimit: 20,
			RecentMaxLimit:     50,
			RecentArtistCap:    12,
			ResolveConcurrency: 8,
			NegativeCacheTTL:   time.Hour,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "tuniverse.db",
		},
		Worker: WorkerConfig{
			Workers:   2,
			QueueSize: 100,
		},
		Auth: AuthConfig{
			SecretKey:   "",
			TokenTTL:    24 * time.Hour,
			FrontendURL: "http://localhost:5173",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: struct defaults, then the YAML file (if any),
// then mapped environment variables. The result is validated.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_addr":        "server.addr",
	"cors_origins":     "server.cors_origins",
	"share_rate_limit": "server.share_rate_limit",

	"spotify_client_id":     "spotify.client_id",
	"spotify_client_secret": "spotify.client_secret",
	"spotify_redirect_uri":  "spotify.redirect_uri",
	"spotify_base_url":      "spotify.base_url",
	"spotify_max_retries":   "spotify.max_retries",
	"spotify_retry_backoff": "spotify.retry_backoff",

	"passport_use_mb":        "musicbrainz.enabled",
	"musicbrainz_base_url":   "musicbrainz.base_url",
	"musicbrainz_user_agent": "musicbrainz.user_agent",
	"musicbrainz_timeout":    "musicbrainz.timeout",
	"musicbrainz_rps":        "musicbrainz.requests_per_sec",

	"passport_recent_artist_cap":   "passport.recent_artist_cap",
	"passport_resolve_concurrency": "passport.resolve_concurrency",
	"passport_negative_cache_ttl":  "passport.negative_cache_ttl",

	"storage_driver": "storage.driver",
	"database_path":  "storage.path",

	"worker_count":      "worker.workers",
	"worker_queue_size": "worker.queue_size",

	"secret_key":   "auth.secret_key",
	"token_ttl":    "auth.token_ttl",
	"frontend_url": "auth.frontend_url",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc maps known environment variables to config keys. Unknown
// variables map to "" and are ignored.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
