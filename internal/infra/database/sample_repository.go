package database

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type SampleRepositoryImpl struct {
	Db *sql.DB
	*Queries
}

func NewSampleRepository(db *sql.DB) *SampleRepositoryImpl {
	return &SampleRepositoryImpl{Db: db, Queries: New(db)}
}

func (r *SampleRepositoryImpl) LockDriver(ctx context.Context, driverID string) error {
	return r.Queries.LockDriver(ctx, driverID)
}

func (r *SampleRepositoryImpl) DeactivateCurrent(ctx context.Context, driverID string) (int64, error) {
	return r.DeactivateDriverSamples(ctx, driverID)
}

func (r *SampleRepositoryImpl) Insert(ctx context.Context, sample *entity.DriverLocationSample) error {
	motion := sample.Motion()
	return r.InsertSample(ctx, InsertSampleParams{
		ID:         sample.ID(),
		DriverID:   sample.DriverID(),
		Latitude:   sample.Point().Lat,
		Longitude:  sample.Point().Lng,
		Heading:    nullFloat(motion.Heading),
		Speed:      nullFloat(motion.Speed),
		Accuracy:   nullFloat(motion.Accuracy),
		Altitude:   nullFloat(motion.Altitude),
		CapturedAt: sample.CapturedAt(),
	})
}

func (r *SampleRepositoryImpl) FindActive(ctx context.Context, driverID string) (*entity.DriverLocationSample, error) {
	row, err := r.GetActiveSample(ctx, driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, outbound.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *SampleRepositoryImpl) DeleteInactiveBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	if limit <= 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	return r.DeleteInactiveSamplesBefore(ctx, cutoff, int32(limit))
}

func (row DriverLocationSampleRow) toEntity() *entity.DriverLocationSample {
	return entity.RestoreDriverLocationSample(
		row.ID,
		row.DriverID,
		entity.Point{Lat: row.Latitude, Lng: row.Longitude},
		entity.Motion{
			Heading:  floatPtr(row.Heading),
			Speed:    floatPtr(row.Speed),
			Accuracy: floatPtr(row.Accuracy),
			Altitude: floatPtr(row.Altitude),
		},
		row.CapturedAt,
		row.IsActive,
	)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
