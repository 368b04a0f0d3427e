package outbound

import (
	"context"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// CheckpointCursor points just past a checkpoint in (recorded_at, seq) order.
// The zero cursor starts from the beginning.
type CheckpointCursor struct {
	RecordedAt time.Time
	Seq        int64
}

func CursorAfter(c *entity.RideCheckpoint) CheckpointCursor {
	return CheckpointCursor{RecordedAt: c.RecordedAt(), Seq: c.Seq()}
}

func (c CheckpointCursor) IsZero() bool {
	return c.RecordedAt.IsZero() && c.Seq == 0
}

type CheckpointRepository interface {
	// Append stores the checkpoint and assigns its sequence number.
	Append(ctx context.Context, checkpoint *entity.RideCheckpoint) error
	Last(ctx context.Context, rideID string) (*entity.RideCheckpoint, error)
	Page(ctx context.Context, rideID string, after CheckpointCursor, limit int) ([]*entity.RideCheckpoint, error)
}

// CheckpointFeed fans live checkpoints out to subscribers of a ride.
type CheckpointFeed interface {
	Publish(ctx context.Context, checkpoint *entity.RideCheckpoint)
	// Subscribe returns a channel closed once ctx is done.
	Subscribe(ctx context.Context, rideID string) <-chan *entity.RideCheckpoint
}
