package checkpoint

import (
	"context"
	"iter"
)

type AppendUseCase interface {
	Execute(ctx context.Context, input AppendInput) (AppendOutput, error)
}

type ListUseCase interface {
	// Execute returns a lazy sequence over the ride's ledger. Each range over it
	// reads the ledger again from the start.
	Execute(ctx context.Context, rideID string) (iter.Seq2[CheckpointOutput, error], error)
}

type FollowUseCase interface {
	Execute(ctx context.Context, rideID string) (<-chan CheckpointOutput, error)
}
