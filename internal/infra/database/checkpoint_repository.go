package database

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type CheckpointRepositoryImpl struct {
	*Queries
}

func NewCheckpointRepository(db *sql.DB) *CheckpointRepositoryImpl {
	return &CheckpointRepositoryImpl{Queries: New(db)}
}

func (r *CheckpointRepositoryImpl) Append(ctx context.Context, c *entity.RideCheckpoint) error {
	seq, err := r.InsertCheckpoint(ctx, InsertCheckpointParams{
		ID:         c.ID(),
		RideID:     c.RideID(),
		Latitude:   c.Point().Lat,
		Longitude:  c.Point().Lng,
		Role:       string(c.Role()),
		RecordedAt: c.RecordedAt(),
	})
	if err != nil {
		return err
	}
	c.AssignSeq(seq)
	return nil
}

func (r *CheckpointRepositoryImpl) Last(ctx context.Context, rideID string) (*entity.RideCheckpoint, error) {
	row, err := r.LastCheckpoint(ctx, rideID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, outbound.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *CheckpointRepositoryImpl) Page(ctx context.Context, rideID string, after outbound.CheckpointCursor, limit int) ([]*entity.RideCheckpoint, error) {
	if limit <= 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	rows, err := r.ListCheckpointsAfter(ctx, ListCheckpointsAfterParams{
		RideID:     rideID,
		RecordedAt: after.RecordedAt,
		Seq:        after.Seq,
		Limit:      int32(limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]*entity.RideCheckpoint, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

func (row RideCheckpointRow) toEntity() *entity.RideCheckpoint {
	return entity.RestoreRideCheckpoint(
		row.ID,
		row.RideID,
		entity.Point{Lat: row.Latitude, Lng: row.Longitude},
		entity.CheckpointRole(row.Role),
		row.RecordedAt,
		row.Seq,
	)
}
