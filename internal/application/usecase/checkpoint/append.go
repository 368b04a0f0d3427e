package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/google/uuid"
)

func rideLockKey(rideID string) string {
	return "ride:" + rideID
}

type AppendUseCaseImpl struct {
	Repository outbound.CheckpointRepository
	Feed       outbound.CheckpointFeed
	Locker     outbound.KeyedLocker
	Logger     logger.Logger
	Metrics    metrics.Metrics
	Timeout    time.Duration
	Now        func() time.Time
	NewID      func() string
}

func NewAppendUseCase(
	repo outbound.CheckpointRepository,
	feed outbound.CheckpointFeed,
	locker outbound.KeyedLocker,
	log logger.Logger,
	m metrics.Metrics,
	timeout time.Duration,
) *AppendUseCaseImpl {
	return &AppendUseCaseImpl{
		Repository: repo,
		Feed:       feed,
		Locker:     locker,
		Logger:     log,
		Metrics:    m,
		Timeout:    timeout,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}

func (uc *AppendUseCaseImpl) Execute(ctx context.Context, input AppendInput) (AppendOutput, error) {
	role, err := entity.ParseCheckpointRole(input.Role)
	if err != nil {
		return AppendOutput{}, err
	}
	rideID := strings.TrimSpace(input.RideID)
	point := entity.Point{Lat: input.Latitude, Lng: input.Longitude}
	if rideID == "" {
		return AppendOutput{}, entity.ErrRideIDIsRequired
	}
	if err := entity.ValidatePoint(point); err != nil {
		return AppendOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.Timeout)
	defer cancel()

	unlock, err := uc.Locker.Lock(ctx, rideLockKey(rideID))
	if err != nil {
		return AppendOutput{}, fmt.Errorf("%w: ride lock: %w", outbound.ErrUnavailable, err)
	}
	defer unlock()

	// The ledger stays non-decreasing even if the wall clock steps back.
	recordedAt := uc.Now()
	last, err := uc.Repository.Last(ctx, rideID)
	switch {
	case err == nil:
		if last.RecordedAt().After(recordedAt) {
			recordedAt = last.RecordedAt()
		}
	case !errors.Is(err, outbound.ErrNotFound):
		return AppendOutput{}, fmt.Errorf("%w: last checkpoint: %w", outbound.ErrUnavailable, err)
	}

	checkpoint, err := entity.NewRideCheckpoint(uc.NewID(), rideID, point, role, recordedAt)
	if err != nil {
		return AppendOutput{}, err
	}
	if err := uc.Repository.Append(ctx, checkpoint); err != nil {
		return AppendOutput{}, fmt.Errorf("%w: append checkpoint: %w", outbound.ErrUnavailable, err)
	}
	uc.Metrics.RecordCheckpointAppended(string(role))

	if role == entity.RoleCurrent && uc.Feed != nil {
		uc.Feed.Publish(ctx, checkpoint)
	}

	uc.Logger.Debug(ctx, "Checkpoint appended",
		logger.String("ride_id", rideID),
		logger.String("role", string(role)),
		logger.Int64("seq", checkpoint.Seq()),
	)
	return AppendOutput{RecordID: checkpoint.ID(), RecordedAt: recordedAt}, nil
}
