package outbound

import (
	"context"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// SampleRepository persists driver location samples. Inside a unit of work the
// write methods share one transaction.
type SampleRepository interface {
	// LockDriver serializes writers of the driver's current slot until the unit of work ends.
	LockDriver(ctx context.Context, driverID string) error
	// DeactivateCurrent flips every active sample of the driver and reports how many it flipped.
	DeactivateCurrent(ctx context.Context, driverID string) (int64, error)
	// Insert stores an active sample. Inserting an id that already exists reactivates it.
	Insert(ctx context.Context, sample *entity.DriverLocationSample) error
	FindActive(ctx context.Context, driverID string) (*entity.DriverLocationSample, error)
	// DeleteInactiveBefore removes up to limit inactive samples captured before cutoff.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
