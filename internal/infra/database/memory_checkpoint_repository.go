package database

import (
	"context"
	"sync"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// MemoryCheckpointRepository keeps each ride's ledger sorted by (recorded_at, seq).
type MemoryCheckpointRepository struct {
	mu    sync.RWMutex
	seq   int64
	rides map[string][]*entity.RideCheckpoint
}

func NewMemoryCheckpointRepository() *MemoryCheckpointRepository {
	return &MemoryCheckpointRepository{rides: make(map[string][]*entity.RideCheckpoint)}
}

func (r *MemoryCheckpointRepository) Append(ctx context.Context, c *entity.RideCheckpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	c.AssignSeq(r.seq)
	cp := *c

	ledger := r.rides[c.RideID()]
	i := len(ledger)
	for i > 0 && cp.Before(ledger[i-1]) {
		i--
	}
	ledger = append(ledger, nil)
	copy(ledger[i+1:], ledger[i:])
	ledger[i] = &cp
	r.rides[c.RideID()] = ledger
	return nil
}

func (r *MemoryCheckpointRepository) Last(_ context.Context, rideID string) (*entity.RideCheckpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ledger := r.rides[rideID]
	if len(ledger) == 0 {
		return nil, outbound.ErrNotFound
	}
	cp := *ledger[len(ledger)-1]
	return &cp, nil
}

func (r *MemoryCheckpointRepository) Page(ctx context.Context, rideID string, after outbound.CheckpointCursor, limit int) ([]*entity.RideCheckpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	cursor := entity.RestoreRideCheckpoint("", rideID, entity.Point{}, "", after.RecordedAt, after.Seq)
	out := make([]*entity.RideCheckpoint, 0, limit)
	for _, c := range r.rides[rideID] {
		if !after.IsZero() && !cursor.Before(c) {
			continue
		}
		cp := *c
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
