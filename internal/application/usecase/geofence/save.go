package geofence

import (
	"context"
	"errors"
	"fmt"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/geo"
	"github.com/google/uuid"
)

// SaveUseCaseImpl is the administrative write path used to load zones.
type SaveUseCaseImpl struct {
	Repository outbound.GeofenceRepository
	NewID      func() string
}

func NewSaveUseCase(repo outbound.GeofenceRepository) *SaveUseCaseImpl {
	return &SaveUseCaseImpl{Repository: repo, NewID: uuid.NewString}
}

func (uc *SaveUseCaseImpl) Execute(ctx context.Context, input SaveInput) (SaveOutput, error) {
	id := input.ID
	if id == "" {
		id = uc.NewID()
	}
	boundary := make(geo.Polygon, len(input.Boundary))
	for i, v := range input.Boundary {
		boundary[i] = geo.Point{Lat: v.Latitude, Lng: v.Longitude}
	}
	g, err := entity.NewGeofence(id, input.Name, input.ZoneType, boundary, input.Metadata)
	if err != nil {
		return SaveOutput{}, err
	}
	if err := uc.Repository.Save(ctx, g); err != nil {
		return SaveOutput{}, fmt.Errorf("%w: save geofence: %w", outbound.ErrUnavailable, err)
	}
	return SaveOutput{ID: g.ID()}, nil
}

type DeactivateUseCaseImpl struct {
	Repository outbound.GeofenceRepository
}

func NewDeactivateUseCase(repo outbound.GeofenceRepository) *DeactivateUseCaseImpl {
	return &DeactivateUseCaseImpl{Repository: repo}
}

func (uc *DeactivateUseCaseImpl) Execute(ctx context.Context, id string) error {
	if id == "" {
		return entity.ErrIDIsRequired
	}
	err := uc.Repository.Deactivate(ctx, id)
	if err == nil || errors.Is(err, outbound.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: deactivate geofence: %w", outbound.ErrUnavailable, err)
}
