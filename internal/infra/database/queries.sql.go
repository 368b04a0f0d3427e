package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const lockDriver = `-- name: LockDriver :exec
SELECT pg_advisory_xact_lock(hashtext($1))
`

func (q *Queries) LockDriver(ctx context.Context, driverID string) error {
	_, err := q.db.ExecContext(ctx, lockDriver, driverID)
	return err
}

const deactivateDriverSamples = `-- name: DeactivateDriverSamples :execrows
UPDATE driver_location_samples
SET is_active = false
WHERE driver_id = $1 AND is_active
`

func (q *Queries) DeactivateDriverSamples(ctx context.Context, driverID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deactivateDriverSamples, driverID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertSample = `-- name: InsertSample :exec
INSERT INTO driver_location_samples (
    id, driver_id, latitude, longitude, location, heading, speed, accuracy, altitude, captured_at, is_active
) VALUES (
    $1, $2, $3, $4, ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography, $5, $6, $7, $8, $9, true
)
ON CONFLICT (id) DO UPDATE SET is_active = true
`

type InsertSampleParams struct {
	ID         string
	DriverID   string
	Latitude   float64
	Longitude  float64
	Heading    sql.NullFloat64
	Speed      sql.NullFloat64
	Accuracy   sql.NullFloat64
	Altitude   sql.NullFloat64
	CapturedAt time.Time
}

func (q *Queries) InsertSample(ctx context.Context, arg InsertSampleParams) error {
	_, err := q.db.ExecContext(ctx, insertSample,
		arg.ID,
		arg.DriverID,
		arg.Latitude,
		arg.Longitude,
		arg.Heading,
		arg.Speed,
		arg.Accuracy,
		arg.Altitude,
		arg.CapturedAt,
	)
	return err
}

const sampleColumns = `id, driver_id, latitude, longitude, heading, speed, accuracy, altitude, captured_at, is_active`

func scanSample(row interface{ Scan(dest ...any) error }) (DriverLocationSampleRow, error) {
	var i DriverLocationSampleRow
	err := row.Scan(
		&i.ID,
		&i.DriverID,
		&i.Latitude,
		&i.Longitude,
		&i.Heading,
		&i.Speed,
		&i.Accuracy,
		&i.Altitude,
		&i.CapturedAt,
		&i.IsActive,
	)
	return i, err
}

const getActiveSample = `-- name: GetActiveSample :one
SELECT ` + sampleColumns + `
FROM driver_location_samples
WHERE driver_id = $1 AND is_active
ORDER BY captured_at DESC
LIMIT 1
`

func (q *Queries) GetActiveSample(ctx context.Context, driverID string) (DriverLocationSampleRow, error) {
	return scanSample(q.db.QueryRowContext(ctx, getActiveSample, driverID))
}

const activeSamplesWithin = `-- name: ActiveSamplesWithin :many
SELECT ` + sampleColumns + `
FROM driver_location_samples
WHERE is_active
  AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
`

type ActiveSamplesWithinParams struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

func (q *Queries) ActiveSamplesWithin(ctx context.Context, arg ActiveSamplesWithinParams) ([]DriverLocationSampleRow, error) {
	rows, err := q.db.QueryContext(ctx, activeSamplesWithin, arg.Latitude, arg.Longitude, arg.RadiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DriverLocationSampleRow
	for rows.Next() {
		i, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteInactiveSamplesBefore = `-- name: DeleteInactiveSamplesBefore :execrows
DELETE FROM driver_location_samples
WHERE id IN (
    SELECT id FROM driver_location_samples
    WHERE NOT is_active AND captured_at < $1
    LIMIT $2
)
`

func (q *Queries) DeleteInactiveSamplesBefore(ctx context.Context, cutoff time.Time, limit int32) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInactiveSamplesBefore, cutoff, limit)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const upsertGeofence = `-- name: UpsertGeofence :exec
INSERT INTO geofences (id, name, zone_type, boundary, is_active, metadata)
VALUES ($1, $2, $3, ST_SetSRID(ST_GeomFromGeoJSON($4), 4326), $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    zone_type = EXCLUDED.zone_type,
    boundary = EXCLUDED.boundary,
    is_active = EXCLUDED.is_active,
    metadata = EXCLUDED.metadata
`

type UpsertGeofenceParams struct {
	ID       string
	Name     string
	ZoneType string
	GeoJSON  string
	IsActive bool
	Metadata json.RawMessage
}

func (q *Queries) UpsertGeofence(ctx context.Context, arg UpsertGeofenceParams) error {
	_, err := q.db.ExecContext(ctx, upsertGeofence,
		arg.ID,
		arg.Name,
		arg.ZoneType,
		arg.GeoJSON,
		arg.IsActive,
		[]byte(arg.Metadata),
	)
	return err
}

const deactivateGeofence = `-- name: DeactivateGeofence :execrows
UPDATE geofences SET is_active = false WHERE id = $1
`

func (q *Queries) DeactivateGeofence(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deactivateGeofence, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const activeGeofencesCovering = `-- name: ActiveGeofencesCovering :many
SELECT id, name, zone_type, ST_AsGeoJSON(boundary), is_active, metadata
FROM geofences
WHERE is_active
  AND ($3::text = '' OR zone_type = $3)
  AND boundary && ST_SetSRID(ST_MakePoint($2, $1), 4326)
ORDER BY id
`

type ActiveGeofencesCoveringParams struct {
	Latitude  float64
	Longitude float64
	ZoneType  string
}

func (q *Queries) ActiveGeofencesCovering(ctx context.Context, arg ActiveGeofencesCoveringParams) ([]GeofenceRow, error) {
	rows, err := q.db.QueryContext(ctx, activeGeofencesCovering, arg.Latitude, arg.Longitude, arg.ZoneType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GeofenceRow
	for rows.Next() {
		var i GeofenceRow
		var metadata []byte
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.ZoneType,
			&i.Boundary,
			&i.IsActive,
			&metadata,
		); err != nil {
			return nil, err
		}
		i.Metadata = metadata
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCheckpoint = `-- name: InsertCheckpoint :one
INSERT INTO ride_checkpoints (id, ride_id, latitude, longitude, location, role, recorded_at)
VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography, $5, $6)
RETURNING seq
`

type InsertCheckpointParams struct {
	ID         string
	RideID     string
	Latitude   float64
	Longitude  float64
	Role       string
	RecordedAt time.Time
}

func (q *Queries) InsertCheckpoint(ctx context.Context, arg InsertCheckpointParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertCheckpoint,
		arg.ID,
		arg.RideID,
		arg.Latitude,
		arg.Longitude,
		arg.Role,
		arg.RecordedAt,
	)
	var seq int64
	err := row.Scan(&seq)
	return seq, err
}

const checkpointColumns = `id, ride_id, latitude, longitude, role, recorded_at, seq`

func scanCheckpoint(row interface{ Scan(dest ...any) error }) (RideCheckpointRow, error) {
	var i RideCheckpointRow
	err := row.Scan(
		&i.ID,
		&i.RideID,
		&i.Latitude,
		&i.Longitude,
		&i.Role,
		&i.RecordedAt,
		&i.Seq,
	)
	return i, err
}

const lastCheckpoint = `-- name: LastCheckpoint :one
SELECT ` + checkpointColumns + `
FROM ride_checkpoints
WHERE ride_id = $1
ORDER BY recorded_at DESC, seq DESC
LIMIT 1
`

func (q *Queries) LastCheckpoint(ctx context.Context, rideID string) (RideCheckpointRow, error) {
	return scanCheckpoint(q.db.QueryRowContext(ctx, lastCheckpoint, rideID))
}

const listCheckpointsAfter = `-- name: ListCheckpointsAfter :many
SELECT ` + checkpointColumns + `
FROM ride_checkpoints
WHERE ride_id = $1 AND (recorded_at, seq) > ($2, $3)
ORDER BY recorded_at, seq
LIMIT $4
`

type ListCheckpointsAfterParams struct {
	RideID     string
	RecordedAt time.Time
	Seq        int64
	Limit      int32
}

func (q *Queries) ListCheckpointsAfter(ctx context.Context, arg ListCheckpointsAfterParams) ([]RideCheckpointRow, error) {
	rows, err := q.db.QueryContext(ctx, listCheckpointsAfter, arg.RideID, arg.RecordedAt, arg.Seq, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RideCheckpointRow
	for rows.Next() {
		i, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDriverStatus = `-- name: GetDriverStatus :one
SELECT is_available, is_verified FROM drivers WHERE id = $1
`

func (q *Queries) GetDriverStatus(ctx context.Context, driverID string) (DriverStatusRow, error) {
	row := q.db.QueryRowContext(ctx, getDriverStatus, driverID)
	var i DriverStatusRow
	err := row.Scan(&i.IsAvailable, &i.IsVerified)
	return i, err
}
