package outbound

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// SpatialIndex answers radius lookups over the active sample of each driver.
// Within may return candidates slightly outside the radius; callers refine.
type SpatialIndex interface {
	Upsert(ctx context.Context, sample *entity.DriverLocationSample) error
	Remove(ctx context.Context, driverID string) error
	Within(ctx context.Context, origin entity.Point, radiusMeters float64) ([]*entity.DriverLocationSample, error)
}
