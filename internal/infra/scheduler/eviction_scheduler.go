package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/usecase/eviction"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

var ErrAlreadyRunning = errors.New("scheduler already running")

// EvictionScheduler runs eviction passes on a fixed interval. It is owned by
// the process: Start launches the loop and Stop cancels it and waits for the
// pass in flight to return.
type EvictionScheduler struct {
	evict     eviction.EvictUseCase
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewEvictionScheduler(evict eviction.EvictUseCase, log logger.Logger, interval, retention time.Duration) *EvictionScheduler {
	return &EvictionScheduler{
		evict:     evict,
		logger:    log,
		interval:  interval,
		retention: retention,
	}
}

func (s *EvictionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.logger.Info(ctx, "Eviction scheduler started",
		logger.Duration("interval", s.interval),
		logger.Duration("retention", s.retention),
	)
	return nil
}

// Stop is safe to call more than once and on a scheduler never started.
func (s *EvictionScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *EvictionScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single pass and logs its outcome.
func (s *EvictionScheduler) RunOnce(ctx context.Context) int64 {
	removed, err := s.evict.Execute(ctx, s.retention)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		s.logger.Debug(ctx, "Eviction pass interrupted", logger.Int64("removed", removed))
	default:
		s.logger.Error(ctx, "Eviction pass failed",
			logger.Int64("removed", removed),
			logger.WithError(err),
		)
	}
	return removed
}
