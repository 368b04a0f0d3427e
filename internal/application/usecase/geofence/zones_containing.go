package geofence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// ZonesContainingUseCaseImpl answers which active zones hold a point. The
// repository narrows by bounding box and the exact polygon test runs here,
// so every backend shares one boundary rule.
type ZonesContainingUseCaseImpl struct {
	Repository   outbound.GeofenceRepository
	QueryTimeout time.Duration
}

func NewZonesContainingUseCase(repo outbound.GeofenceRepository, queryTimeout time.Duration) *ZonesContainingUseCaseImpl {
	return &ZonesContainingUseCaseImpl{Repository: repo, QueryTimeout: queryTimeout}
}

func (uc *ZonesContainingUseCaseImpl) Execute(ctx context.Context, input ZonesInput) ([]ZoneMatch, error) {
	p := entity.Point{Lat: input.Latitude, Lng: input.Longitude}
	if err := entity.ValidatePoint(p); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.QueryTimeout)
	defer cancel()

	candidates, err := uc.Repository.ActiveCandidates(ctx, p, strings.TrimSpace(input.ZoneType))
	if err != nil {
		return nil, fmt.Errorf("%w: geofences: %w", outbound.ErrUnavailable, err)
	}

	matches := make([]ZoneMatch, 0, len(candidates))
	for _, g := range candidates {
		if !g.IsActive() || !g.Contains(p) {
			continue
		}
		matches = append(matches, ZoneMatch{
			GeofenceID: g.ID(),
			Name:       g.Name(),
			ZoneType:   g.ZoneType(),
			IsInside:   true,
			Metadata:   g.Metadata(),
		})
	}
	return matches, nil
}
