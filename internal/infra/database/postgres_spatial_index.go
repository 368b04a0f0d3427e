package database

import (
	"context"
	"database/sql"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// PostgresSpatialIndex reads the active samples straight from the sample
// table through its partial GiST index, so there is nothing to maintain on write.
type PostgresSpatialIndex struct {
	*Queries
}

func NewPostgresSpatialIndex(db *sql.DB) *PostgresSpatialIndex {
	return &PostgresSpatialIndex{Queries: New(db)}
}

func (i *PostgresSpatialIndex) Upsert(_ context.Context, _ *entity.DriverLocationSample) error {
	return nil
}

func (i *PostgresSpatialIndex) Remove(_ context.Context, _ string) error {
	return nil
}

func (i *PostgresSpatialIndex) Within(ctx context.Context, origin entity.Point, radiusMeters float64) ([]*entity.DriverLocationSample, error) {
	rows, err := i.ActiveSamplesWithin(ctx, ActiveSamplesWithinParams{
		Latitude:     origin.Lat,
		Longitude:    origin.Lng,
		RadiusMeters: radiusMeters,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*entity.DriverLocationSample, len(rows))
	for n, row := range rows {
		out[n] = row.toEntity()
	}
	return out, nil
}
