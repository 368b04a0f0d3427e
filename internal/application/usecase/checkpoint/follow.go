package checkpoint

import (
	"context"
	"strings"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// FollowUseCaseImpl streams live "current" checkpoints of a ride. The returned
// channel closes once ctx is done.
type FollowUseCaseImpl struct {
	Feed outbound.CheckpointFeed
}

func NewFollowUseCase(feed outbound.CheckpointFeed) *FollowUseCaseImpl {
	return &FollowUseCaseImpl{Feed: feed}
}

func (uc *FollowUseCaseImpl) Execute(ctx context.Context, rideID string) (<-chan CheckpointOutput, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, entity.ErrRideIDIsRequired
	}

	in := uc.Feed.Subscribe(ctx, rideID)
	out := make(chan CheckpointOutput)
	go func() {
		defer close(out)
		for c := range in {
			select {
			case out <- toOutput(c):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
