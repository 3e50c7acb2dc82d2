package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/spotifind/internal/core/response"
)

// CreatePlaylist handles POST /v1/playlist/{user_id}/{track_id}?size=5
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	trackID := chi.URLParam(r, "track_id")

	userToken := r.Header.Get("Authorization")
	if userToken == "" {
		env := response.UnauthorizedBuilder{}.Build(response.Request{TrackID: trackID})
		writeEnvelope(r.Context(), w, env)
		return
	}

	size := queryOr(r, "size", defaultSize)
	env := h.playlists.CreatePlaylist(r.Context(), userID, trackID, userToken, size)
	writeEnvelope(r.Context(), w, env)
}
