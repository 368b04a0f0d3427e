package outbound

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type GeofenceRepository interface {
	Save(ctx context.Context, geofence *entity.Geofence) error
	Deactivate(ctx context.Context, id string) error
	// ActiveCandidates returns active zones whose bounding box covers p.
	// An empty zoneType matches every type.
	ActiveCandidates(ctx context.Context, p entity.Point, zoneType string) ([]*entity.Geofence, error)
}
