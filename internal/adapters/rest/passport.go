package rest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
)

const maxRecordArtists = 200

// recordArtistsRequest is the payload of POST /passport/{user_id}/artists.
type recordArtistsRequest struct {
	Artists []string `json:"artists" validate:"required,min=1,max=200,dive,max=200"`
}

type recordArtistsResponse struct {
	UserID   string   `json:"user_id"`
	Recorded []string `json:"recorded"`
	Queued   int      `json:"queued"`
}

// demoPassport is the static sample served for UI development.
type demoPassport struct {
	UserID            string                   `json:"user_id"`
	TotalArtists      int                      `json:"total_artists"`
	CountryCounts     domain.CountryCounts     `json:"country_counts"`
	RegionPercentages domain.RegionPercentages `json:"region_percentages"`
	ShareLink         string                   `json:"share_link"`
}

// Ping is a quick liveness probe for the passport routes.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": time.Now().UTC().Format("2006-01-02T15:04:05"),
	})
}

// PassportFromToken builds a snapshot from the caller's top artists.
func (h *Handler) PassportFromToken(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeError(w, http.StatusUnprocessableEntity, "access_token is required")
		return
	}
	limit, ok := parseLimit(r, h.cfg.TopDefaultLimit, h.cfg.TopMaxLimit)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("limit must be between 1 and %d", h.cfg.TopMaxLimit))
		return
	}

	snap, err := h.svc.PassportFromTopArtists(r.Context(), token, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PassportFromTokenRecent builds a snapshot from recently played tracks.
func (h *Handler) PassportFromTokenRecent(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeError(w, http.StatusUnprocessableEntity, "access_token is required")
		return
	}
	limit, ok := parseLimit(r, h.cfg.RecentDefaultLimit, h.cfg.RecentMaxLimit)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("limit must be between 1 and %d", h.cfg.RecentMaxLimit))
		return
	}

	snap, err := h.svc.PassportFromRecentlyPlayed(r.Context(), token, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PassportForUser computes and stores a summary from the user's recorded
// artists.
func (h *Handler) PassportForUser(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.PassportForUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// LatestPassport returns the most recently stored summary.
func (h *Handler) LatestPassport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.LatestPassport(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RecordArtists stores artist names for a user and queues origin lookups.
func (h *Handler) RecordArtists(w http.ResponseWriter, r *http.Request) {
	var req recordArtistsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("artists: 1 to %d names required", maxRecordArtists))
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
	recorded, err := h.svc.RecordArtists(r.Context(), userID, req.Artists)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	queued := 0
	if h.pool != nil {
		queued = h.pool.SubmitAll(userID, recorded)
	}
	logging.Ctx(r.Context()).Info().
		Str("user_id", userID).
		Int("recorded", len(recorded)).
		Int("queued", queued).
		Msg("rest: artists recorded")

	writeJSON(w, http.StatusAccepted, recordArtistsResponse{UserID: userID, Recorded: recorded, Queued: queued})
}

// DemoPassport serves fixed sample data.
func (h *Handler) DemoPassport(w http.ResponseWriter, r *http.Request) {
	var counts domain.CountryCounts
	counts.Add("USA", 4)
	counts.Add("UK", 3)
	counts.Add("Japan", 2)
	counts.Add("Brazil", 1)

	writeJSON(w, http.StatusOK, demoPassport{
		UserID:        chi.URLParam(r, "user_id"),
		TotalArtists:  counts.Total(),
		CountryCounts: counts,
		RegionPercentages: domain.NewRegionPercentages([]domain.RegionShare{
			{Region: domain.RegionNorthAmerica, Fraction: 0.4},
			{Region: domain.RegionEurope, Fraction: 0.3},
			{Region: domain.RegionAsia, Fraction: 0.2},
			{Region: domain.RegionSouthAmerica, Fraction: 0.1},
		}),
		ShareLink: "https://example.com/static/images/placeholder_passport.png",
	})
}
