package middleware

import (
	"net/http"
	"time"

	"github.com/ayo6706/bankcards/internal/observability"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware times each request against its chi route pattern so
// parameterized paths share one label.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.ObserveHTTP(r.Method, route, rw.status, time.Since(start))
	})
}
