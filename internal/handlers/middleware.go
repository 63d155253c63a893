package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"emotional-diary/pkg/logging"
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestID tags the request context with the caller's request id or a fresh one
func (h *DiaryHandler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// recoverPanic turns a handler panic into a 500
func (h *DiaryHandler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error(r.Context(), "[API_PANIC] Handler panicked", logging.Fields{
					"path":   r.URL.Path,
					"method": r.Method,
				}, fmt.Errorf("panic: %v", rec))
				h.metrics.RecordAPIError("panic", routeName(r))
				h.sendError(w, r, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// instrument records request counts, durations and in-flight requests per route
func (h *DiaryHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		route := routeName(r)

		h.metrics.InFlightRequests.Inc()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			h.metrics.InFlightRequests.Dec()
			duration := time.Since(startTime)
			h.metrics.APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
			h.metrics.RecordAPIRequest(route, r.Method, strconv.Itoa(rec.status))

			h.logger.Debug(r.Context(), "[API_REQUEST] Request served", logging.Fields{
				"route":       route,
				"method":      r.Method,
				"status":      rec.status,
				"duration_ms": duration.Milliseconds(),
			})
		}()

		next.ServeHTTP(rec, r)
	})
}

// requireUser rejects requests without an authenticated user
func (h *DiaryHandler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.auth.Authenticate(r)
		if err != nil {
			h.handleError(w, r, err, "")
			return
		}
		next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), userID)))
	})
}

// currentUser returns the id stored by requireUser
func currentUser(ctx context.Context) int64 {
	id, _ := logging.UserIDFromContext(ctx)
	return id
}

// routeName is the matched route template, so metric labels stay bounded
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
