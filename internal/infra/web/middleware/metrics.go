package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Status code labels for 100-599, built once.
var statusStrings [600]string

func init() {
	for i := 100; i < 600; i++ {
		statusStrings[i] = strconv.Itoa(i)
	}
}

func statusLabel(code int) string {
	if code == 0 {
		// handler returned without writing
		return statusStrings[http.StatusOK]
	}
	if code >= 100 && code < 600 {
		return statusStrings[code]
	}
	return strconv.Itoa(code)
}

// routeLabel keeps label cardinality bounded: driver and ride ids never
// reach Prometheus, only the chi pattern does.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}

// MetricsWrapper observes request latency per route. Long-lived event
// streams are skipped so they do not skew the histogram.
func MetricsWrapper(m metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") == "text/event-stream" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				m.ObserveHTTPRequestDuration(r.Method, routeLabel(r), statusLabel(ww.Status()), time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
