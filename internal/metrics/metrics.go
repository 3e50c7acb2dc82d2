// Package metrics exposes Prometheus instrumentation for the recommendation
// pipeline, the credential cache and the outbound upstream calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_api_requests_total",
			Help: "Total number of API requests by route and response status",
		},
		[]string{"route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotifind_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Recommendations
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_recommendations_total",
			Help: "Recommendation requests by envelope status",
		},
		[]string{"status_code"},
	)

	PlaylistsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spotifind_playlists_created_total",
			Help: "Playlists successfully created",
		},
	)

	// Credential cache
	TokenCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spotifind_token_cache_hits_total",
			Help: "Bearer token requests served from the cache",
		},
	)

	TokenFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_token_fetches_total",
			Help: "Token endpoint round trips by result",
		},
		[]string{"result"}, // "success", "error", "integrity"
	)

	// Vector search backend
	MatchClientConstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_match_client_constructions_total",
			Help: "Vector search client constructions by backend and result",
		},
		[]string{"backend", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spotifind_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Upstream calls
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotifind_upstream_request_duration_seconds",
			Help:    "Outbound request latency by upstream service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_upstream_errors_total",
			Help: "Outbound requests that failed, by service and status",
		},
		[]string{"service", "status_code"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotifind_upstream_retries_total",
			Help: "Retried outbound requests by service",
		},
		[]string{"service"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func RecordRecommendation(statusCode int) {
	RecommendationsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpstream records latency and, for statusCode outside 2xx, an error.
// A zero statusCode means the request never produced a response.
func RecordUpstream(service string, statusCode int, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
	if statusCode < 200 || statusCode > 299 {
		UpstreamErrors.WithLabelValues(service, strconv.Itoa(statusCode)).Inc()
	}
}

func RecordRetry(service string) {
	UpstreamRetries.WithLabelValues(service).Inc()
}

func RecordMatchClientConstruction(backend string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	MatchClientConstructions.WithLabelValues(backend, result).Inc()
}

// RecordCircuitBreakerTransition updates the state gauge and counts the transition.
// States use the gobreaker numbering.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
