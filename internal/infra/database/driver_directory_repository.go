package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// DriverDirectoryRepository reads the drivers table maintained by the driver service.
type DriverDirectoryRepository struct {
	*Queries
}

func NewDriverDirectoryRepository(db *sql.DB) *DriverDirectoryRepository {
	return &DriverDirectoryRepository{Queries: New(db)}
}

func (r *DriverDirectoryRepository) Status(ctx context.Context, driverID string) (entity.DriverStatus, error) {
	row, err := r.GetDriverStatus(ctx, driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.DriverStatus{}, nil
	}
	if err != nil {
		return entity.DriverStatus{}, err
	}
	return entity.DriverStatus{Available: row.IsAvailable, Verified: row.IsVerified}, nil
}
