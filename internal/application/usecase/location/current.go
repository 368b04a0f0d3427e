package location

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type CurrentPositionUseCaseImpl struct {
	Samples outbound.SampleRepository
}

func NewCurrentPositionUseCase(samples outbound.SampleRepository) *CurrentPositionUseCaseImpl {
	return &CurrentPositionUseCaseImpl{Samples: samples}
}

func (uc *CurrentPositionUseCaseImpl) Execute(ctx context.Context, driverID string) (CurrentPositionOutput, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return CurrentPositionOutput{}, entity.ErrDriverIDIsRequired
	}
	sample, err := uc.Samples.FindActive(ctx, driverID)
	if errors.Is(err, outbound.ErrNotFound) {
		return CurrentPositionOutput{}, err
	}
	if err != nil {
		return CurrentPositionOutput{}, fmt.Errorf("%w: %w", outbound.ErrUnavailable, err)
	}
	motion := sample.Motion()
	return CurrentPositionOutput{
		SampleID:   sample.ID(),
		DriverID:   sample.DriverID(),
		Latitude:   sample.Point().Lat,
		Longitude:  sample.Point().Lng,
		Heading:    motion.Heading,
		Speed:      motion.Speed,
		Accuracy:   motion.Accuracy,
		Altitude:   motion.Altitude,
		CapturedAt: sample.CapturedAt(),
	}, nil
}
