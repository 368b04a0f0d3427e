package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCheckpointRole(t *testing.T) {
	for _, s := range []string{"pickup", "dropoff", "waypoint", "current"} {
		role, err := ParseCheckpointRole(s)
		assert.NoError(t, err)
		assert.Equal(t, CheckpointRole(s), role)
	}

	_, err := ParseCheckpointRole("PICKUP")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewRideCheckpoint_ValidationErrors(t *testing.T) {
	now := time.Now()

	_, err := NewRideCheckpoint("c", "", Point{}, RolePickup, now)
	assert.ErrorIs(t, err, ErrRideIDIsRequired)

	_, err = NewRideCheckpoint("c", "R1", Point{Lat: 100}, RolePickup, now)
	assert.ErrorIs(t, err, ErrInvalidLatitude)

	_, err = NewRideCheckpoint("c", "R1", Point{}, CheckpointRole("teleport"), now)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRideCheckpoint_BeforeBreaksTiesBySeq(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := RestoreRideCheckpoint("a", "R1", Point{}, RolePickup, at, 1)
	second := RestoreRideCheckpoint("b", "R1", Point{}, RoleCurrent, at, 2)
	later := RestoreRideCheckpoint("c", "R1", Point{}, RoleDropoff, at.Add(time.Second), 0)

	assert.True(t, first.Before(second))
	assert.False(t, second.Before(first))
	assert.True(t, second.Before(later))
}
