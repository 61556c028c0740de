package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies that defaults pass validation.
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Passport.TopDefaultLimit)
	assert.Equal(t, 20, cfg.Passport.TopMaxLimit)
	assert.Equal(t, 20, cfg.Passport.RecentDefaultLimit)
	assert.Equal(t, 50, cfg.Passport.RecentMaxLimit)
	assert.Equal(t, 12, cfg.Passport.RecentArtistCap)
	assert.Equal(t, time.Hour, cfg.Passport.NegativeCacheTTL)
	assert.False(t, cfg.MusicBrainz.Enabled)
	assert.Equal(t, 3*time.Second, cfg.MusicBrainz.Timeout)
	assert.False(t, cfg.SpotifyConfigured())
}

// TestLoad_EnvOverrides verifies mapped environment variables win over
// defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SPOTIFY_CLIENT_ID", "id-123")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("PASSPORT_USE_MB", "true")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PASSPORT_NEGATIVE_CACHE_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "id-123", cfg.Spotify.ClientID)
	assert.True(t, cfg.SpotifyConfigured())
	assert.True(t, cfg.MusicBrainz.Enabled)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Passport.NegativeCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// TestLoad_YAMLFile verifies file values override defaults and env overrides
// the file.
func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
passport:
  recent_artist_cap: 6
worker:
  workers: 4
logging:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("WORKER_COUNT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 6, cfg.Passport.RecentArtistCap)
	assert.Equal(t, 3, cfg.Worker.Workers)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 20, cfg.Passport.TopMaxLimit)
}

// TestValidate verifies invalid configurations are rejected.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "default above max", mutate: func(c *Config) { c.Passport.TopDefaultLimit = 30 }, wantErr: "top limits"},
		{name: "zero recent cap", mutate: func(c *Config) { c.Passport.RecentArtistCap = 0 }, wantErr: "recent_artist_cap"},
		{name: "negative ttl", mutate: func(c *Config) { c.Passport.NegativeCacheTTL = -time.Second }, wantErr: "negative_cache_ttl"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: "not supported"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: "storage.path"},
		{name: "musicbrainz without rate", mutate: func(c *Config) {
			c.MusicBrainz.Enabled = true
			c.MusicBrainz.RequestsPerSec = 0
		}, wantErr: "requests_per_sec"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "no workers", mutate: func(c *Config) { c.Worker.Workers = 0 }, wantErr: "worker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestEnvTransformFunc verifies unmapped variables are dropped.
func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "spotify.client_id", envTransformFunc("SPOTIFY_CLIENT_ID"))
	assert.Equal(t, "musicbrainz.enabled", envTransformFunc("PASSPORT_USE_MB"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}

func TestResolveConcurrency(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		rps     float64
		want    int
	}{
		{name: "musicbrainz off", enabled: false, rps: 1, want: 8},
		{name: "one request per second", enabled: true, rps: 1, want: 1},
		{name: "fractional rate", enabled: true, rps: 0.5, want: 1},
		{name: "fast registry", enabled: true, rps: 20, want: 8},
		{name: "moderate rate", enabled: true, rps: 4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.MusicBrainz.Enabled = tt.enabled
			cfg.MusicBrainz.RequestsPerSec = tt.rps
			assert.Equal(t, tt.want, cfg.ResolveConcurrency())
		})
	}
}
