package location

import (
	"context"
)

type SubmitUseCase interface {
	Execute(ctx context.Context, input SubmitInput) (SubmitOutput, error)
}

type GoOfflineUseCase interface {
	Execute(ctx context.Context, driverID string) error
}

type NearestDriversUseCase interface {
	Execute(ctx context.Context, input NearestInput) ([]DriverCandidate, error)
}

type CurrentPositionUseCase interface {
	Execute(ctx context.Context, driverID string) (CurrentPositionOutput, error)
}
