package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEvict struct {
	calls     atomic.Int32
	retention atomic.Int64
	block     chan struct{}
	err       error
}

func (c *countingEvict) Execute(ctx context.Context, retention time.Duration) (int64, error) {
	c.calls.Add(1)
	c.retention.Store(int64(retention))
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return 1, c.err
}

func TestEvictionScheduler_RunsOnInterval(t *testing.T) {
	//Arrange
	uc := &countingEvict{}
	s := NewEvictionScheduler(uc, logger.NewNop(), 5*time.Millisecond, 24*time.Hour)

	//Act
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	//Assert
	assert.Eventually(t, func() bool { return uc.calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(24*time.Hour), uc.retention.Load())
}

func TestEvictionScheduler_StopHaltsFurtherPasses(t *testing.T) {
	uc := &countingEvict{}
	s := NewEvictionScheduler(uc, logger.NewNop(), 2*time.Millisecond, time.Hour)
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return uc.calls.Load() >= 1 }, time.Second, time.Millisecond)

	s.Stop()
	after := uc.calls.Load()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, after, uc.calls.Load())
}

func TestEvictionScheduler_StopInterruptsPassInFlight(t *testing.T) {
	uc := &countingEvict{block: make(chan struct{})}
	s := NewEvictionScheduler(uc, logger.NewNop(), time.Millisecond, time.Hour)
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return uc.calls.Load() == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return while a pass was blocked")
	}
}

func TestEvictionScheduler_StartTwiceAndRestart(t *testing.T) {
	uc := &countingEvict{}
	s := NewEvictionScheduler(uc, logger.NewNop(), time.Hour, time.Hour)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)
	s.Stop()
	s.Stop()

	assert.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestEvictionScheduler_ParentCancellationEndsLoop(t *testing.T) {
	uc := &countingEvict{}
	s := NewEvictionScheduler(uc, logger.NewNop(), time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	s.Stop()
	after := uc.calls.Load()
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, after, uc.calls.Load())
}

func TestEvictionScheduler_RunOnceSurvivesFailure(t *testing.T) {
	uc := &countingEvict{err: errors.New("db down")}
	s := NewEvictionScheduler(uc, logger.NewNop(), time.Hour, time.Hour)

	removed := s.RunOnce(context.Background())

	assert.Equal(t, int64(1), removed)
	assert.Equal(t, int32(1), uc.calls.Load())
}
