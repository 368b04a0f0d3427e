package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/events"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

const LocationAcceptedEvent = "driver.location.accepted"

type SubmitConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
}

func driverLockKey(driverID string) string {
	return "driver:" + driverID
}

type SubmitUseCaseImpl struct {
	UnitOfWork outbound.UnitOfWork
	Index      outbound.SpatialIndex
	Locker     outbound.KeyedLocker
	Dispatcher events.EventDispatcher
	Logger     logger.Logger
	Metrics    metrics.Metrics
	Config     SubmitConfig
	Now        func() time.Time
	NewID      func() string
}

func NewSubmitUseCase(
	uow outbound.UnitOfWork,
	index outbound.SpatialIndex,
	locker outbound.KeyedLocker,
	dispatcher events.EventDispatcher,
	log logger.Logger,
	m metrics.Metrics,
	cfg SubmitConfig,
) *SubmitUseCaseImpl {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &SubmitUseCaseImpl{
		UnitOfWork: uow,
		Index:      index,
		Locker:     locker,
		Dispatcher: dispatcher,
		Logger:     log,
		Metrics:    m,
		Config:     cfg,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}

func (uc *SubmitUseCaseImpl) Execute(ctx context.Context, input SubmitInput) (SubmitOutput, error) {
	now := uc.Now()
	capturedAt := now
	if input.CapturedAt != nil && !input.CapturedAt.IsZero() {
		capturedAt = *input.CapturedAt
	}
	sample, err := entity.NewDriverLocationSample(
		uc.NewID(),
		strings.TrimSpace(input.DriverID),
		entity.Point{Lat: input.Latitude, Lng: input.Longitude},
		entity.Motion{
			Heading:  input.Heading,
			Speed:    input.Speed,
			Accuracy: input.Accuracy,
			Altitude: input.Altitude,
		},
		capturedAt,
	)
	if err != nil {
		return SubmitOutput{}, err
	}
	if err := entity.ValidateCapturedAt(sample.CapturedAt(), now); err != nil {
		return SubmitOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.Config.Timeout)
	defer cancel()

	unlock, err := uc.Locker.Lock(ctx, driverLockKey(sample.DriverID()))
	if err != nil {
		return SubmitOutput{}, fmt.Errorf("%w: driver lock: %w", outbound.ErrUnavailable, err)
	}
	defer unlock()

	if err := uc.retry(ctx, "swap_current_sample", func() error { return uc.swap(ctx, sample) }); err != nil {
		return SubmitOutput{}, fmt.Errorf("%w: swap sample: %w", outbound.ErrUnavailable, err)
	}

	uc.publish(ctx, sample)

	return SubmitOutput{
		SampleID:   sample.ID(),
		DriverID:   sample.DriverID(),
		CapturedAt: sample.CapturedAt(),
	}, nil
}

// swap retires the driver's current sample, inserts the new one and indexes
// it in one unit of work. An index failure rolls the store back, and a failed
// commit after indexing puts the prior sample back into the index. It is safe
// to repeat: a second run reactivates the same id.
func (uc *SubmitUseCaseImpl) swap(ctx context.Context, sample *entity.DriverLocationSample) error {
	var (
		prior   *entity.DriverLocationSample
		indexed bool
	)
	err := uc.UnitOfWork.Do(ctx, func(provider outbound.RepositoryProvider) error {
		samples := provider.Samples()
		if err := samples.LockDriver(ctx, sample.DriverID()); err != nil {
			return err
		}
		current, err := findActive(ctx, samples, sample.DriverID())
		if err != nil {
			return err
		}
		prior = current
		flipped, err := samples.DeactivateCurrent(ctx, sample.DriverID())
		if err != nil {
			return err
		}
		if flipped > 1 {
			uc.Logger.Error(ctx, "Multiple active samples found for driver, most recent write wins",
				logger.String("driver_id", sample.DriverID()),
				logger.Int64("active_samples", flipped),
			)
			uc.Metrics.RecordInvariantViolation("multiple_active_on_write")
		}
		if err := samples.Insert(ctx, sample); err != nil {
			return err
		}
		if err := uc.Index.Upsert(ctx, sample); err != nil {
			return fmt.Errorf("index sample: %w", err)
		}
		indexed = true
		return nil
	})
	if err != nil && indexed {
		if rerr := restoreIndex(ctx, uc.Index, sample.DriverID(), prior); rerr != nil {
			uc.Logger.Error(ctx, "Failed to restore spatial index after aborted swap",
				logger.String("driver_id", sample.DriverID()),
				logger.WithError(rerr),
			)
			uc.Metrics.RecordInvariantViolation("index_restore_failed")
		}
	}
	return err
}

// findActive returns the driver's active sample, or nil when there is none.
func findActive(ctx context.Context, samples outbound.SampleRepository, driverID string) (*entity.DriverLocationSample, error) {
	current, err := samples.FindActive(ctx, driverID)
	if errors.Is(err, outbound.ErrNotFound) {
		return nil, nil
	}
	return current, err
}

const restoreTimeout = 2 * time.Second

// restoreIndex points the index back at prior, or drops the driver when there
// was no prior sample. It outlives the caller's deadline.
func restoreIndex(ctx context.Context, index outbound.SpatialIndex, driverID string, prior *entity.DriverLocationSample) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()
	if prior == nil {
		return index.Remove(ctx, driverID)
	}
	return index.Upsert(ctx, prior)
}

func (uc *SubmitUseCaseImpl) retry(ctx context.Context, step string, op func() error) error {
	return retryTransient(ctx, uc.Logger, uc.Config, step, op)
}

func retryTransient(ctx context.Context, log logger.Logger, cfg SubmitConfig, step string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.BaseBackoff
	policy.MaxInterval = 8 * cfg.BaseBackoff

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := op()
		if err != nil && !isTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn(ctx, "Transient failure, retrying...",
				logger.String("step", step),
				logger.Int("attempt", attempt),
				logger.Duration("wait", wait),
				logger.WithError(err),
			)
		}),
	)
	return err
}

func isTransient(err error) bool {
	return !errors.Is(err, entity.ErrValidation) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (uc *SubmitUseCaseImpl) publish(ctx context.Context, sample *entity.DriverLocationSample) {
	if uc.Dispatcher == nil {
		return
	}
	evt := events.NewEvent(LocationAcceptedEvent, LocationAccepted{
		SampleID:   sample.ID(),
		DriverID:   sample.DriverID(),
		Latitude:   sample.Point().Lat,
		Longitude:  sample.Point().Lng,
		CapturedAt: sample.CapturedAt(),
	}, uc.Now())
	if err := uc.Dispatcher.Dispatch(ctx, evt); err != nil {
		uc.Logger.Warn(ctx, "Failed to publish location accepted event",
			logger.String("sample_id", sample.ID()),
			logger.WithError(err),
		)
	}
}
