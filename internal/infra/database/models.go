package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

type DriverLocationSampleRow struct {
	ID         string
	DriverID   string
	Latitude   float64
	Longitude  float64
	Heading    sql.NullFloat64
	Speed      sql.NullFloat64
	Accuracy   sql.NullFloat64
	Altitude   sql.NullFloat64
	CapturedAt time.Time
	IsActive   bool
}

type GeofenceRow struct {
	ID       string
	Name     string
	ZoneType string
	Boundary string
	IsActive bool
	Metadata json.RawMessage
}

type RideCheckpointRow struct {
	ID         string
	RideID     string
	Latitude   float64
	Longitude  float64
	Role       string
	RecordedAt time.Time
	Seq        int64
}

type DriverStatusRow struct {
	IsAvailable bool
	IsVerified  bool
}
