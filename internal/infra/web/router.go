package web

import (
	"net/http"
	"time"

	"github.com/DioGolang/GoTrack/internal/infra/web/handler"
	webmw "github.com/DioGolang/GoTrack/internal/infra/web/middleware"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
)

type RouterDeps struct {
	ServiceName    string
	Logger         logger.Logger
	Metrics        metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         http.Handler
	Location       *handler.Location
	Geofence       *handler.Geofence
	Checkpoint     *handler.Checkpoint
	IngestLimiter  *webmw.ClientLimiter
	RequestTimeout time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(otelchi.Middleware(d.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(webmw.RequestLogger(d.Logger))
	r.Use(webmw.MetricsWrapper(d.Metrics))
	r.Use(middleware.Recoverer)

	if d.Health != nil {
		r.Handle("/health", d.Health)
	}
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Long-lived streams are registered before the timeout middleware.
		r.Get("/rides/{rideID}/checkpoints/stream", d.Checkpoint.Stream)

		r.Group(func(r chi.Router) {
			if d.RequestTimeout > 0 {
				r.Use(middleware.Timeout(d.RequestTimeout))
			}

			ingest := r.With()
			if d.IngestLimiter != nil {
				ingest = r.With(d.IngestLimiter.Handler(d.Logger))
			}
			ingest.Post("/drivers/{driverID}/locations", d.Location.SubmitLocation)

			r.Get("/drivers/nearby", d.Location.Nearby)
			r.Get("/drivers/{driverID}/location", d.Location.CurrentPosition)
			r.Delete("/drivers/{driverID}/location", d.Location.GoOffline)

			r.Get("/geofences/containing", d.Geofence.Containing)
			r.Post("/geofences", d.Geofence.Create)
			r.Delete("/geofences/{geofenceID}", d.Geofence.Remove)

			r.Post("/rides/{rideID}/checkpoints", d.Checkpoint.Create)
			r.Get("/rides/{rideID}/checkpoints", d.Checkpoint.Index)
		})
	})

	return r
}
