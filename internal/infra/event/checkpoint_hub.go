package event

import (
	"context"
	"sync"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

const defaultSubscriberBuffer = 16

// CheckpointHub fans live ride checkpoints out to in-process subscribers.
// Publish never blocks: a full subscriber buffer drops its oldest entry.
type CheckpointHub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	buffer  int
	metrics metrics.Metrics
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan *entity.RideCheckpoint
	closed bool
}

func NewCheckpointHub(m metrics.Metrics, buffer int) *CheckpointHub {
	if buffer < 1 {
		buffer = defaultSubscriberBuffer
	}
	return &CheckpointHub{
		subs:    make(map[string]map[*subscriber]struct{}),
		buffer:  buffer,
		metrics: m,
	}
}

func (h *CheckpointHub) Subscribe(ctx context.Context, rideID string) <-chan *entity.RideCheckpoint {
	s := &subscriber{ch: make(chan *entity.RideCheckpoint, h.buffer)}

	h.mu.Lock()
	if h.subs[rideID] == nil {
		h.subs[rideID] = make(map[*subscriber]struct{})
	}
	h.subs[rideID][s] = struct{}{}
	h.mu.Unlock()
	h.metrics.AddLiveSubscribers(1)

	go func() {
		<-ctx.Done()
		h.unsubscribe(rideID, s)
	}()
	return s.ch
}

func (h *CheckpointHub) unsubscribe(rideID string, s *subscriber) {
	h.mu.Lock()
	delete(h.subs[rideID], s)
	if len(h.subs[rideID]) == 0 {
		delete(h.subs, rideID)
	}
	h.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	h.metrics.AddLiveSubscribers(-1)
}

func (h *CheckpointHub) Publish(_ context.Context, c *entity.RideCheckpoint) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[c.RideID()]))
	for s := range h.subs[c.RideID()] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.send(c)
	}
}

func (s *subscriber) send(c *entity.RideCheckpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- c:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Subscribers reports how many live subscriptions a ride has.
func (h *CheckpointHub) Subscribers(rideID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[rideID])
}
