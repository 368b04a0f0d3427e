package eviction

import (
	"context"
	"fmt"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

const DefaultBatchSize = 5000

type EvictUseCase interface {
	Execute(ctx context.Context, retention time.Duration) (int64, error)
}

// EvictUseCaseImpl deletes inactive samples older than the retention window in
// bounded batches. Active samples are never touched, whatever their age.
type EvictUseCaseImpl struct {
	Samples   outbound.SampleRepository
	Logger    logger.Logger
	Metrics   metrics.Metrics
	BatchSize int
	Now       func() time.Time
}

func NewEvictUseCase(samples outbound.SampleRepository, log logger.Logger, m metrics.Metrics, batchSize int) *EvictUseCaseImpl {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &EvictUseCaseImpl{
		Samples:   samples,
		Logger:    log,
		Metrics:   m,
		BatchSize: batchSize,
		Now:       time.Now,
	}
}

func (uc *EvictUseCaseImpl) Execute(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, entity.ErrInvalidRetention
	}
	cutoff := uc.Now().Add(-retention)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := uc.Samples.DeleteInactiveBefore(ctx, cutoff, uc.BatchSize)
		total += n
		if n > 0 {
			uc.Metrics.RecordSamplesEvicted(n)
		}
		if err != nil {
			return total, fmt.Errorf("%w: evict samples: %w", outbound.ErrUnavailable, err)
		}
		if n < int64(uc.BatchSize) {
			break
		}
	}

	uc.Logger.Info(ctx, "Eviction pass finished",
		logger.Int64("removed", total),
		logger.Any("cutoff", cutoff),
	)
	return total, nil
}
