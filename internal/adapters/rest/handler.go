package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/spotifind/internal/core/response"
	"github.com/ewilliams-labs/spotifind/internal/logging"
)

// RecoService serves recommendation envelopes.
type RecoService interface {
	GetRecos(ctx context.Context, trackID, size string, verbose bool) response.Envelope
}

// PlaylistService saves recommendations as user playlists.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, userID, trackID, userToken, size string) response.Envelope
}

// Options tunes the router middleware. A zero RateLimitRequests disables limiting.
type Options struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	recos     RecoService
	playlists PlaylistService
	factory   *response.Factory
	router    chi.Router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(recos RecoService, playlists PlaylistService, factory *response.Factory, opts Options) *Handler {
	h := &Handler{
		recos:     recos,
		playlists: playlists,
		factory:   factory,
		router:    chi.NewRouter(),
	}

	h.routes(opts)

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes(opts Options) {
	r := h.router
	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(h.recoverEnvelope)
	r.Use(recordMetrics)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimitByIP(opts))
		r.Get("/v1/reco/{track_id}", h.GetRecos)
		r.Post("/v1/playlist/{user_id}/{track_id}", h.CreatePlaylist)
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeEnvelope copies the envelope headers and writes its body as JSON.
func writeEnvelope(ctx context.Context, w http.ResponseWriter, env response.Envelope) {
	for name, values := range env.HeaderMap() {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	if err := json.NewEncoder(w).Encode(env.Body); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("status", env.StatusCode).Msg("failed to encode response")
	}
}
