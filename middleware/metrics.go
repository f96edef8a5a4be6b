package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type MetricsRecorder interface {
	IncInFlight()
	DecInFlight()
	ObserveRequest(method, path, status string, d time.Duration)
}

// Metrics records per-route request metrics. It must run inside the router
// so the matched route template is available as the path label.
func Metrics(m MetricsRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.IncInFlight()
			defer m.DecInFlight()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}

			m.ObserveRequest(r.Method, path, strconv.Itoa(sw.status), time.Since(start))
		})
	}
}
