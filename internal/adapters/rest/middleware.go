package rest

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/ewilliams-labs/spotifind/internal/core/response"
	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// requestIDWithLogging reuses an incoming X-Request-ID or generates one, and
// puts it on the logging context and the response.
func requestIDWithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoverEnvelope turns a panic into the 500 envelope.
func (h *Handler) recoverEnvelope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.Ctx(r.Context()).Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			env := h.factory.FromError(r.Context(), fmt.Errorf("rest: panic: %v", rec), response.Request{})
			writeEnvelope(r.Context(), w, env)
		}()
		next.ServeHTTP(w, r)
	})
}

// recordMetrics labels requests by route pattern so ids do not explode cardinality.
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(route, status, time.Since(start))
	})
}

func rateLimitByIP(opts Options) func(http.Handler) http.Handler {
	if opts.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.LimitByIP(opts.RateLimitRequests, opts.RateLimitWindow)
}
