package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/tuniverse/internal/adapters/musicbrainz"
	"github.com/ewilliams-labs/tuniverse/internal/adapters/rest"
	"github.com/ewilliams-labs/tuniverse/internal/adapters/spotify"
	"github.com/ewilliams-labs/tuniverse/internal/adapters/sqlite"
	"github.com/ewilliams-labs/tuniverse/internal/config"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/core/services"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
	"github.com/ewilliams-labs/tuniverse/internal/worker"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if !cfg.SpotifyConfigured() {
		logging.Warn().Msg("SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET not set; /auth routes will fail")
	}
	m := metrics.New(prometheus.DefaultRegisterer)

	// 2. Driven adapters
	storagePath := cfg.Storage.Path
	if cfg.Storage.Driver == "memory" {
		storagePath = sqlite.MemoryPath
	}
	repo, err := sqlite.NewAdapter(storagePath)
	if err != nil {
		logging.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialize database")
		os.Exit(1)
	}
	defer repo.Close()

	spotifyClient := spotify.NewClient(nil, cfg.Spotify.BaseURL, spotify.WithRetry(cfg.Spotify.MaxRetries, cfg.Spotify.RetryBackoff))
	oauth := spotify.NewOAuth(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI, cfg.Spotify.AuthURL, cfg.Spotify.TokenURL)

	var lookup ports.OriginLookup = services.NoLookup{}
	if cfg.MusicBrainz.Enabled {
		lookup = musicbrainz.NewClient(musicbrainz.Config{
			BaseURL:          cfg.MusicBrainz.BaseURL,
			UserAgent:        cfg.MusicBrainz.UserAgent,
			Timeout:          cfg.MusicBrainz.Timeout,
			RequestsPerSec:   cfg.MusicBrainz.RequestsPerSec,
			BreakerFailures:  cfg.MusicBrainz.BreakerFailures,
			BreakerOpenDelay: cfg.MusicBrainz.BreakerOpenDelay,
			Metrics:          m,
		})
	}

	// 3. Core services
	resolver := services.NewOriginResolver(lookup,
		services.WithNegativeTTL(cfg.Passport.NegativeCacheTTL),
		services.WithResolverMetrics(m),
	)
	builder := services.NewSnapshotBuilder(resolver,
		services.WithConcurrency(cfg.ResolveConcurrency()),
		services.WithBuilderMetrics(m),
	)
	svc := services.NewOrchestrator(spotifyClient, repo, builder,
		services.WithPassportLimits(services.PassportLimits{RecentArtistCap: cfg.Passport.RecentArtistCap}),
		services.WithOrchestratorMetrics(m),
	)
	community := services.NewCommunity(repo, m)

	pool := worker.NewPool(resolver, repo, cfg.Worker.QueueSize, m)
	pool.Start(cfg.Worker.Workers)
	defer pool.Stop()

	// 4. Driving adapter
	handler := rest.NewHandler(svc, community, pool, oauth, rest.Config{
		TopDefaultLimit:    cfg.Passport.TopDefaultLimit,
		TopMaxLimit:        cfg.Passport.TopMaxLimit,
		RecentDefaultLimit: cfg.Passport.RecentDefaultLimit,
		RecentMaxLimit:     cfg.Passport.RecentMaxLimit,
		CORSOrigins:        cfg.Server.CORSOrigins,
		ShareRateLimit:     cfg.Server.ShareRateLimit,
		SecretKey:          cfg.Auth.SecretKey,
		TokenTTL:           cfg.Auth.TokenTTL,
		FrontendURL:        cfg.Auth.FrontendURL,
		Metrics:            promhttp.Handler(),
	})

	// 5. Start the server
	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("storage", cfg.Storage.Driver).
		Bool("musicbrainz", cfg.MusicBrainz.Enabled).
		Msg("Tuniverse API is running")

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("shutdown error")
		}
	}
}
