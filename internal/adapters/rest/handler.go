// Package rest exposes the passport engine over HTTP.
package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/tuniverse/internal/adapters/spotify"
	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/core/services"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
	"github.com/ewilliams-labs/tuniverse/internal/worker"
)

// Config holds the HTTP-facing settings.
type Config struct {
	TopDefaultLimit    int
	TopMaxLimit        int
	RecentDefaultLimit int
	RecentMaxLimit     int

	CORSOrigins []string
	// ShareRateLimit is community shares per client per minute; 0 disables.
	ShareRateLimit int

	SecretKey   string
	TokenTTL    time.Duration
	FrontendURL string

	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc       *services.Orchestrator
	community *services.Community
	pool      *worker.Pool
	oauth     *spotify.OAuth
	tokens    *appTokens
	cfg       Config
	validate  *validator.Validate
	router    chi.Router
}

// NewHandler initializes the HTTP adapter and sets up routes. pool and oauth
// may be nil.
func NewHandler(svc *services.Orchestrator, community *services.Community, pool *worker.Pool, oauth *spotify.OAuth, cfg Config) *Handler {
	if cfg.TopDefaultLimit < 1 {
		cfg.TopDefaultLimit = 8
	}
	if cfg.TopMaxLimit < cfg.TopDefaultLimit {
		cfg.TopMaxLimit = max(20, cfg.TopDefaultLimit)
	}
	if cfg.RecentDefaultLimit < 1 {
		cfg.RecentDefaultLimit = 20
	}
	if cfg.RecentMaxLimit < cfg.RecentDefaultLimit {
		cfg.RecentMaxLimit = max(50, cfg.RecentDefaultLimit)
	}

	h := &Handler{
		svc:       svc,
		community: community,
		pool:      pool,
		oauth:     oauth,
		tokens:    newAppTokens(cfg.SecretKey, cfg.TokenTTL),
		cfg:       cfg,
		validate:  validator.New(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	r := chi.NewRouter()
	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(h.cfg.CORSOrigins))

	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	if h.cfg.Metrics != nil {
		r.Handle("/metrics", h.cfg.Metrics)
	}

	r.Route("/passport", func(r chi.Router) {
		r.Get("/ping", h.Ping)
		r.Get("/from_token", h.PassportFromToken)
		r.Get("/from_token_recent", h.PassportFromTokenRecent)
		r.Get("/{user_id}", h.PassportForUser)
		r.Get("/{user_id}/latest", h.LatestPassport)
		r.Post("/{user_id}/artists", h.RecordArtists)
	})
	r.Get("/demo_passport/{user_id}", h.DemoPassport)

	r.Route("/spotify", func(r chi.Router) {
		r.Get("/me", h.SpotifyMe)
		r.Get("/top-artists", h.SpotifyTopArtists)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.Login)
		r.Get("/callback", h.Callback)
	})

	r.Route("/community", func(r chi.Router) {
		r.With(shareRateLimit(h.cfg.ShareRateLimit)).Post("/share", h.Share)
		r.Get("/feed", h.Feed)
	})

	h.router = r
}

// Root reports that the service is running.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Tuniverse backend running"})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("rest: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "internal error"

	var upstream ports.UpstreamError
	switch {
	case errors.As(err, &upstream):
		status = http.StatusBadRequest
		detail = upstream.Error()
	case errors.Is(err, ports.ErrUpstream), errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		detail = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		detail = "not found"
	}

	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("rest: request failed")
	} else {
		logging.Ctx(r.Context()).Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("rest: request rejected")
	}
	writeError(w, status, detail)
}

// accessToken reads the bearer credential from the query or the
// Authorization header.
func accessToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.URL.Query().Get("access_token")); tok != "" {
		return tok
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// parseLimit reads ?limit= within [1, maxLimit], falling back to def.
func parseLimit(r *http.Request, def, maxLimit int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, false
	}
	return n, true
}
