package location

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/database"
	"github.com/DioGolang/GoTrack/internal/infra/storage"
	"github.com/DioGolang/GoTrack/pkg/events"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var delhi = entity.Point{Lat: 28.6139, Lng: 77.2090}

type fixture struct {
	now       time.Time
	store     *database.MemorySampleStore
	index     *database.MemorySpatialIndex
	directory *database.MemoryDriverDirectory
	registry  *prometheus.Registry
	metrics   *metrics.Prometheus
	submit    *SubmitUseCaseImpl
	nearest   *NearestDriversUseCaseImpl
	offline   *GoOfflineUseCaseImpl
	current   *CurrentPositionUseCaseImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		store:     database.NewMemorySampleStore(),
		index:     database.NewMemorySpatialIndex(),
		directory: database.NewMemoryDriverDirectory(false),
		registry:  prometheus.NewRegistry(),
	}
	f.metrics = metrics.NewPrometheusMetrics(f.registry, "gotrack-test")
	clock := func() time.Time { return f.now }
	cfg := SubmitConfig{Timeout: 2 * time.Second, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	locker := storage.NewKeyedMutex()

	f.submit = NewSubmitUseCase(f.store, f.index, locker, nil, logger.NewNop(), f.metrics, cfg)
	f.submit.Now = clock
	f.nearest = NewNearestDriversUseCase(f.index, f.directory, logger.NewNop(), f.metrics, NearestConfig{
		FreshnessWindow: 5 * time.Minute,
		QueryTimeout:    300 * time.Millisecond,
		MaxLimit:        100,
		AverageSpeedKmh: 30,
	})
	f.nearest.Now = clock
	f.offline = NewGoOfflineUseCase(f.store, f.index, locker, logger.NewNop(), cfg)
	f.current = NewCurrentPositionUseCase(f.store)
	return f
}

func (f *fixture) eligible(driverIDs ...string) {
	for _, id := range driverIDs {
		f.directory.Set(id, entity.DriverStatus{Available: true, Verified: true})
	}
}

func (f *fixture) submitAt(t *testing.T, driverID string, p entity.Point, capturedAt time.Time) SubmitOutput {
	t.Helper()
	out, err := f.submit.Execute(context.Background(), SubmitInput{
		DriverID:   driverID,
		Latitude:   p.Lat,
		Longitude:  p.Lng,
		CapturedAt: &capturedAt,
	})
	if err != nil {
		t.Fatalf("submit %s: %v", driverID, err)
	}
	return out
}

func activeCount(samples []*entity.DriverLocationSample) int {
	n := 0
	for _, s := range samples {
		if s.IsActive() {
			n++
		}
	}
	return n
}

// flakyUnitOfWork fails the first failures calls, then delegates.
type flakyUnitOfWork struct {
	next     outbound.UnitOfWork
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakyUnitOfWork) Do(ctx context.Context, fn func(outbound.RepositoryProvider) error) error {
	if f.calls.Add(1) <= f.failures {
		return f.err
	}
	return f.next.Do(ctx, fn)
}

// failingCommitUnitOfWork runs fn against next but reports a commit failure,
// so nothing fn wrote is kept.
type failingCommitUnitOfWork struct {
	next  outbound.UnitOfWork
	calls atomic.Int32
}

func (f *failingCommitUnitOfWork) Do(ctx context.Context, fn func(outbound.RepositoryProvider) error) error {
	f.calls.Add(1)
	return f.next.Do(ctx, func(provider outbound.RepositoryProvider) error {
		if err := fn(provider); err != nil {
			return err
		}
		return errors.New("commit: connection reset")
	})
}

// brokenWritesIndex serves reads from the wrapped index and fails writes.
type brokenWritesIndex struct {
	outbound.SpatialIndex
	err error
}

func (b *brokenWritesIndex) Upsert(context.Context, *entity.DriverLocationSample) error { return b.err }
func (b *brokenWritesIndex) Remove(context.Context, string) error                       { return b.err }

// stubIndex returns a fixed candidate set or error.
type stubIndex struct {
	samples []*entity.DriverLocationSample
	err     error
}

func (s *stubIndex) Upsert(context.Context, *entity.DriverLocationSample) error { return s.err }
func (s *stubIndex) Remove(context.Context, string) error                       { return s.err }
func (s *stubIndex) Within(context.Context, entity.Point, float64) ([]*entity.DriverLocationSample, error) {
	return s.samples, s.err
}

type stubDirectory struct {
	err error
}

func (s stubDirectory) Status(context.Context, string) (entity.DriverStatus, error) {
	return entity.DriverStatus{Available: true, Verified: true}, s.err
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingDispatcher) Dispatch(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}
