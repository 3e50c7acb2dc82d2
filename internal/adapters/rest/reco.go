package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultSize = "5"

// GetRecos handles GET /v1/reco/{track_id}?size=5&verbose=false
func (h *Handler) GetRecos(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "track_id")
	size := queryOr(r, "size", defaultSize)

	// anything ParseBool rejects counts as false
	verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose"))

	env := h.recos.GetRecos(r.Context(), trackID, size, verbose)
	writeEnvelope(r.Context(), w, env)
}

// queryOr returns the query value for key, or fallback when it is absent or empty.
func queryOr(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
