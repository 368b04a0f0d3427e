package entity

import (
	"math"
	"time"
)

// Motion carries the optional telemetry reported with a GPS fix.
type Motion struct {
	Heading  *float64
	Speed    *float64
	Accuracy *float64
	Altitude *float64
}

func (m Motion) Validate() error {
	if m.Heading != nil && !(*m.Heading >= 0 && *m.Heading < 360) {
		return ErrInvalidHeading
	}
	if !nonNegative(m.Speed) {
		return ErrInvalidSpeed
	}
	if !nonNegative(m.Accuracy) {
		return ErrInvalidAccuracy
	}
	if m.Altitude != nil && (math.IsNaN(*m.Altitude) || math.IsInf(*m.Altitude, 0)) {
		return ErrInvalidAltitude
	}
	return nil
}

// nonNegative accepts an absent value or a finite value >= 0.
func nonNegative(v *float64) bool {
	if v == nil {
		return true
	}
	return *v >= 0 && !math.IsInf(*v, 1)
}

// DriverLocationSample is one GPS fix of a driver. A driver has at most one
// active sample; the active flag only ever goes from true to false.
type DriverLocationSample struct {
	id         string
	driverID   string
	point      Point
	motion     Motion
	capturedAt time.Time
	active     bool
}

// NewDriverLocationSample builds the active sample that will replace the driver's current one.
func NewDriverLocationSample(id, driverID string, point Point, motion Motion, capturedAt time.Time) (*DriverLocationSample, error) {
	s := &DriverLocationSample{
		id:         id,
		driverID:   driverID,
		point:      point,
		motion:     motion,
		capturedAt: capturedAt.UTC(),
		active:     true,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// RestoreDriverLocationSample rehydrates a stored sample without re-validating it.
func RestoreDriverLocationSample(id, driverID string, point Point, motion Motion, capturedAt time.Time, active bool) *DriverLocationSample {
	return &DriverLocationSample{
		id:         id,
		driverID:   driverID,
		point:      point,
		motion:     motion,
		capturedAt: capturedAt.UTC(),
		active:     active,
	}
}

func (s *DriverLocationSample) Validate() error {
	if s.id == "" {
		return ErrIDIsRequired
	}
	if s.driverID == "" {
		return ErrDriverIDIsRequired
	}
	if err := ValidatePoint(s.point); err != nil {
		return err
	}
	if err := s.motion.Validate(); err != nil {
		return err
	}
	if s.capturedAt.IsZero() {
		return ErrCapturedAtRequired
	}
	return nil
}

// Deactivate retires the sample from the current slot.
func (s *DriverLocationSample) Deactivate() error {
	if !s.active {
		return ErrSampleAlreadyClosed
	}
	s.active = false
	return nil
}

// ClockSkewTolerance bounds how far ahead of server time a device clock may run.
const ClockSkewTolerance = 30 * time.Second

// ValidateCapturedAt rejects capture times too far ahead of now.
func ValidateCapturedAt(capturedAt, now time.Time) error {
	if capturedAt.After(now.Add(ClockSkewTolerance)) {
		return ErrCapturedAtInFuture
	}
	return nil
}

// Fresh reports whether the sample was captured within window of now. A
// capture time beyond the skew tolerance is never fresh.
func (s *DriverLocationSample) Fresh(now time.Time, window time.Duration) bool {
	return !s.capturedAt.Before(now.Add(-window)) && !s.capturedAt.After(now.Add(ClockSkewTolerance))
}

func (s *DriverLocationSample) ID() string            { return s.id }
func (s *DriverLocationSample) DriverID() string      { return s.driverID }
func (s *DriverLocationSample) Point() Point          { return s.point }
func (s *DriverLocationSample) Motion() Motion        { return s.motion }
func (s *DriverLocationSample) CapturedAt() time.Time { return s.capturedAt }
func (s *DriverLocationSample) IsActive() bool        { return s.active }
