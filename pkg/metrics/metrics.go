package metrics

import "time"

type Metrics interface {
	// Business
	RecordSampleIngested(status string)
	RecordInvariantViolation(kind string)
	ObserveNearbyCandidates(count int)
	RecordSamplesEvicted(count int64)
	RecordCheckpointAppended(role string)
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)

	// Infrastructure (HTTP & gRPC)
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
	ObserveGRPCRequestDuration(service, method, code string, duration float64)

	// Performance and Resilience
	IncDuplicateMessage(handler string)
	IncEventsPublished(status string)
	AddLiveSubscribers(delta int)
}
