package outbound

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// DriverDirectory is the read model of driver availability owned by the driver service.
type DriverDirectory interface {
	Status(ctx context.Context, driverID string) (entity.DriverStatus, error)
}
