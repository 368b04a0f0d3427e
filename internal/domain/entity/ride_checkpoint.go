package entity

import "time"

type CheckpointRole string

const (
	RolePickup   CheckpointRole = "pickup"
	RoleDropoff  CheckpointRole = "dropoff"
	RoleWaypoint CheckpointRole = "waypoint"
	RoleCurrent  CheckpointRole = "current"
)

func ParseCheckpointRole(s string) (CheckpointRole, error) {
	switch r := CheckpointRole(s); r {
	case RolePickup, RoleDropoff, RoleWaypoint, RoleCurrent:
		return r, nil
	}
	return "", ErrInvalidRole
}

// RideCheckpoint is an append-only record of where a ride was at a moment.
// Seq is assigned by storage and breaks ties between equal timestamps.
type RideCheckpoint struct {
	id         string
	rideID     string
	point      Point
	role       CheckpointRole
	recordedAt time.Time
	seq        int64
}

func NewRideCheckpoint(id, rideID string, point Point, role CheckpointRole, recordedAt time.Time) (*RideCheckpoint, error) {
	c := &RideCheckpoint{
		id:         id,
		rideID:     rideID,
		point:      point,
		role:       role,
		recordedAt: recordedAt.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func RestoreRideCheckpoint(id, rideID string, point Point, role CheckpointRole, recordedAt time.Time, seq int64) *RideCheckpoint {
	return &RideCheckpoint{
		id:         id,
		rideID:     rideID,
		point:      point,
		role:       role,
		recordedAt: recordedAt.UTC(),
		seq:        seq,
	}
}

func (c *RideCheckpoint) Validate() error {
	if c.id == "" {
		return ErrIDIsRequired
	}
	if c.rideID == "" {
		return ErrRideIDIsRequired
	}
	if err := ValidatePoint(c.point); err != nil {
		return err
	}
	if _, err := ParseCheckpointRole(string(c.role)); err != nil {
		return err
	}
	return nil
}

// AssignSeq is called once by the repository that persists the checkpoint.
func (c *RideCheckpoint) AssignSeq(seq int64) {
	c.seq = seq
}

// Before orders checkpoints by recorded time, then by insertion sequence.
func (c *RideCheckpoint) Before(other *RideCheckpoint) bool {
	if !c.recordedAt.Equal(other.recordedAt) {
		return c.recordedAt.Before(other.recordedAt)
	}
	return c.seq < other.seq
}

func (c *RideCheckpoint) ID() string            { return c.id }
func (c *RideCheckpoint) RideID() string        { return c.rideID }
func (c *RideCheckpoint) Point() Point          { return c.point }
func (c *RideCheckpoint) Role() CheckpointRole  { return c.role }
func (c *RideCheckpoint) RecordedAt() time.Time { return c.recordedAt }
func (c *RideCheckpoint) Seq() int64            { return c.seq }
