package database

import (
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func newSample(t *testing.T, id, driverID string, lat, lng float64, at time.Time) *entity.DriverLocationSample {
	t.Helper()
	s, err := entity.NewDriverLocationSample(id, driverID, entity.Point{Lat: lat, Lng: lng}, entity.Motion{}, at)
	require.NoError(t, err)
	return s
}

func driverIDs(samples []*entity.DriverLocationSample) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = s.DriverID()
	}
	return out
}
