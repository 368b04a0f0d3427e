package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"time"
)

type Prometheus struct {
	samplesIngested     *prometheus.CounterVec
	invariantViolations *prometheus.CounterVec
	nearbyCandidates    prometheus.Histogram
	samplesEvicted      prometheus.Counter
	checkpoints         *prometheus.CounterVec
	useCaseTotal        *prometheus.CounterVec
	useCaseDuration     *prometheus.HistogramVec
	httpDuration        *prometheus.HistogramVec
	grpcDuration        *prometheus.HistogramVec
	duplicateMessages   *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
	liveSubscribers     prometheus.Gauge
}

func NewPrometheusMetrics(reg prometheus.Registerer, serviceName string) *Prometheus {
	constLabels := prometheus.Labels{"service": serviceName}
	m := &Prometheus{
		samplesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gotrack_location_samples_ingested_total",
			Help:        "Total driver location samples submitted.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		invariantViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gotrack_invariant_violations_total",
			Help:        "Times more than one active sample was observed for a driver.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		nearbyCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "gotrack_nearby_candidates",
			Help:        "Drivers returned per proximity query.",
			Buckets:     []float64{0, 1, 2, 5, 10, 20, 50, 100},
			ConstLabels: constLabels,
		}),
		samplesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gotrack_location_samples_evicted_total",
			Help:        "Inactive samples removed by the eviction policy.",
			ConstLabels: constLabels,
		}),
		checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gotrack_ride_checkpoints_total",
			Help:        "Ride checkpoints appended.",
			ConstLabels: constLabels,
		}, []string{"role"}),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_usecase_total",
			Help:        "Total number of Use Case executions.",
			ConstLabels: constLabels,
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_usecase_duration_seconds",
			Help:        "Use Case execution latency.",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"use_case", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_http_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}, []string{"method", "path", "status_code"}),
		grpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "grpc_duration_seconds",
			Help:        "Duration of gRPC calls.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"grpc_service", "grpc_method", "status_code"}),
		duplicateMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_duplicate_messages_total",
			Help:        "Messages dropped by the idempotency guard.",
			ConstLabels: constLabels,
		}, []string{"handler"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_events_published_total",
			Help:        "Domain events published to the broker.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		liveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gotrack_live_ride_subscribers",
			Help:        "Open live ride location streams.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.samplesIngested,
		m.invariantViolations,
		m.nearbyCandidates,
		m.samplesEvicted,
		m.checkpoints,
		m.useCaseTotal,
		m.useCaseDuration,
		m.httpDuration,
		m.grpcDuration,
		m.duplicateMessages,
		m.eventsPublished,
		m.liveSubscribers,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func (p *Prometheus) RecordSampleIngested(status string) {
	p.samplesIngested.WithLabelValues(status).Inc()
}

func (p *Prometheus) RecordInvariantViolation(kind string) {
	p.invariantViolations.WithLabelValues(kind).Inc()
}

func (p *Prometheus) ObserveNearbyCandidates(count int) {
	p.nearbyCandidates.Observe(float64(count))
}

func (p *Prometheus) RecordSamplesEvicted(count int64) {
	p.samplesEvicted.Add(float64(count))
}

func (p *Prometheus) RecordCheckpointAppended(role string) {
	p.checkpoints.WithLabelValues(role).Inc()
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.useCaseTotal.WithLabelValues(useCase, status).Inc()
	p.useCaseDuration.WithLabelValues(useCase, status).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}

func (p *Prometheus) ObserveGRPCRequestDuration(service, method, code string, duration float64) {
	p.grpcDuration.WithLabelValues(service, method, code).Observe(duration)
}

func (p *Prometheus) IncDuplicateMessage(handler string) {
	p.duplicateMessages.WithLabelValues(handler).Inc()
}

func (p *Prometheus) IncEventsPublished(status string) {
	p.eventsPublished.WithLabelValues(status).Inc()
}

func (p *Prometheus) AddLiveSubscribers(delta int) {
	p.liveSubscribers.Add(float64(delta))
}
