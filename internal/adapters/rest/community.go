package rest

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/tuniverse/internal/logging"
)

const maxFeedLimit = 200

// shareRequest mirrors the web UI payload.
type shareRequest struct {
	DisplayName     string `json:"display_name" validate:"max=80"`
	Message         string `json:"message" validate:"max=500"`
	PassportSummary string `json:"passport_summary" validate:"max=4000"`
}

// Share appends a post to the community feed.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "display_name <= 80, message <= 500, passport_summary <= 4000 characters")
		return
	}

	if appToken := r.Header.Get("X-App-Token"); appToken != "" {
		if subject, err := h.tokens.Parse(appToken); err == nil {
			logging.Ctx(r.Context()).Debug().Str("subject", subject).Msg("rest: share from signed-in user")
		}
	}

	post, err := h.community.Share(r.Context(), req.DisplayName, req.Message, req.PassportSummary)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Feed returns the community feed, newest first.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxFeedLimit {
			writeError(w, http.StatusUnprocessableEntity, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	posts, err := h.community.Feed(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}
