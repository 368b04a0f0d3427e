package location

import (
	"context"
	"time"

	"github.com/DioGolang/GoTrack/pkg/metrics"
)

type NearestDriversMetricsDecorator struct {
	Next    NearestDriversUseCase
	Metrics metrics.Metrics
}

func (d NearestDriversMetricsDecorator) Execute(ctx context.Context, input NearestInput) ([]DriverCandidate, error) {
	start := time.Now()
	output, err := d.Next.Execute(ctx, input)
	d.Metrics.RecordUseCaseExecution("NearestDrivers", err == nil, time.Since(start))
	return output, err
}
