package location

import (
	"context"
	"errors"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

type SubmitMetricsDecorator struct {
	Next    SubmitUseCase
	Metrics metrics.Metrics
}

func (d *SubmitMetricsDecorator) Execute(ctx context.Context, input SubmitInput) (SubmitOutput, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("SubmitLocation", err == nil, time.Since(start))

	switch {
	case err == nil:
		d.Metrics.RecordSampleIngested("accepted")
	case errors.Is(err, entity.ErrValidation):
		d.Metrics.RecordSampleIngested("rejected")
	default:
		d.Metrics.RecordSampleIngested("failed")
	}
	return output, err
}
