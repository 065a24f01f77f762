package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Middleware records request count, latency and in-flight gauge. Requests
// are labelled by chi route template so ids in the path share a series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(began)

		status := ww.Status()
		if status == 0 {
			// handler wrote nothing
			status = http.StatusOK
		}
		route := routeLabel(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
	})
}

// routeLabel reads the matched pattern after routing has run
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return UnknownRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return UnknownRoute
}
