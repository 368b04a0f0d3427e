package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

// GoOfflineUseCaseImpl retires the driver's current sample without a
// replacement and drops the driver from the spatial index. The index removal
// runs inside the unit of work so either both happen or neither does.
type GoOfflineUseCaseImpl struct {
	UnitOfWork outbound.UnitOfWork
	Index      outbound.SpatialIndex
	Locker     outbound.KeyedLocker
	Logger     logger.Logger
	Config     SubmitConfig
}

func NewGoOfflineUseCase(uow outbound.UnitOfWork, index outbound.SpatialIndex, locker outbound.KeyedLocker, log logger.Logger, cfg SubmitConfig) *GoOfflineUseCaseImpl {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &GoOfflineUseCaseImpl{UnitOfWork: uow, Index: index, Locker: locker, Logger: log, Config: cfg}
}

func (uc *GoOfflineUseCaseImpl) Execute(ctx context.Context, driverID string) error {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return entity.ErrDriverIDIsRequired
	}

	ctx, cancel := context.WithTimeout(ctx, uc.Config.Timeout)
	defer cancel()

	unlock, err := uc.Locker.Lock(ctx, driverLockKey(driverID))
	if err != nil {
		return fmt.Errorf("%w: driver lock: %w", outbound.ErrUnavailable, err)
	}
	defer unlock()

	var (
		prior   *entity.DriverLocationSample
		removed bool
	)
	err = retryTransient(ctx, uc.Logger, uc.Config, "retire_current_sample", func() error {
		removed = false
		err := uc.UnitOfWork.Do(ctx, func(provider outbound.RepositoryProvider) error {
			samples := provider.Samples()
			if err := samples.LockDriver(ctx, driverID); err != nil {
				return err
			}
			current, err := findActive(ctx, samples, driverID)
			if err != nil {
				return err
			}
			prior = current
			if _, err := samples.DeactivateCurrent(ctx, driverID); err != nil {
				return err
			}
			if err := uc.Index.Remove(ctx, driverID); err != nil {
				return fmt.Errorf("unindex driver: %w", err)
			}
			removed = true
			return nil
		})
		if err != nil && removed && prior != nil {
			if rerr := restoreIndex(ctx, uc.Index, driverID, prior); rerr != nil {
				uc.Logger.Error(ctx, "Failed to restore spatial index after aborted retirement",
					logger.String("driver_id", driverID),
					logger.WithError(rerr),
				)
			}
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: retire sample: %w", outbound.ErrUnavailable, err)
	}
	return nil
}
