package rest

import (
	"net/http"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

const (
	topArtistsDefaultLimit = 10
	topArtistsMaxLimit     = 50
)

type meResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	NowPlaying  *ports.NowPlaying `json:"now_playing"`
}

type topArtistsResponse struct {
	Artists []string `json:"artists"`
	Total   int      `json:"total"`
}

// SpotifyMe returns the caller's profile and the track they played last.
func (h *Handler) SpotifyMe(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeError(w, http.StatusUnprocessableEntity, "access_token is required")
		return
	}

	profile, playing, err := h.svc.Me(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{ID: profile.ID, DisplayName: profile.DisplayName, NowPlaying: playing})
}

// SpotifyTopArtists lists the caller's top artist names.
func (h *Handler) SpotifyTopArtists(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeError(w, http.StatusUnprocessableEntity, "access_token is required")
		return
	}
	limit, ok := parseLimit(r, topArtistsDefaultLimit, topArtistsMaxLimit)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "limit must be between 1 and 50")
		return
	}

	names, err := h.svc.TopArtistNames(r.Context(), token, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, topArtistsResponse{Artists: names, Total: len(names)})
}
