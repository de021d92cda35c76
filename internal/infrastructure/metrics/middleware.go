package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// HTTPMiddleware records request counts, durations and 5XX errors per route.
// Routes are labelled with their chi pattern so path parameters do not
// explode label cardinality.
func HTTPMiddleware(collector *Collector, exporter *PrometheusExporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			op := r.Method + " " + route
			duration := time.Since(start).Seconds()

			collector.RecordRequest(op)
			collector.RecordDuration(op, duration)
			if status >= http.StatusInternalServerError {
				collector.RecordError(op)
			}
			if exporter != nil {
				exporter.RecordHTTPRequest(r.Method, route, fmt.Sprintf("%d", status), duration)
			}
		}
		return http.HandlerFunc(fn)
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
