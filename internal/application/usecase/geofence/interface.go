package geofence

import "context"

type ZonesContainingUseCase interface {
	Execute(ctx context.Context, input ZonesInput) ([]ZoneMatch, error)
}

type SaveUseCase interface {
	Execute(ctx context.Context, input SaveInput) (SaveOutput, error)
}

type DeactivateUseCase interface {
	Execute(ctx context.Context, id string) error
}
