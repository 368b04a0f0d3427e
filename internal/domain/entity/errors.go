package entity

import "errors"

// ErrValidation is matched by every input-rejection error of the domain.
var ErrValidation = errors.New("validation error")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func newValidationError(msg string) error {
	return &validationError{msg: msg}
}

var (
	ErrIDIsRequired        = newValidationError("id is required")
	ErrDriverIDIsRequired  = newValidationError("driver id is required")
	ErrRideIDIsRequired    = newValidationError("ride id is required")
	ErrInvalidLatitude     = newValidationError("latitude must be within [-90, 90]")
	ErrInvalidLongitude    = newValidationError("longitude must be within [-180, 180]")
	ErrInvalidHeading      = newValidationError("heading must be within [0, 360)")
	ErrInvalidSpeed        = newValidationError("speed must be a non-negative number")
	ErrInvalidAccuracy     = newValidationError("accuracy must be a non-negative number")
	ErrInvalidAltitude     = newValidationError("altitude must be a finite number")
	ErrCapturedAtRequired  = newValidationError("captured at is required")
	ErrCapturedAtInFuture  = newValidationError("captured at is too far in the future")
	ErrInvalidRole         = newValidationError("role must be one of pickup, dropoff, waypoint, current")
	ErrInvalidRadius       = newValidationError("radius must be greater than zero")
	ErrInvalidLimit        = newValidationError("limit must be greater than zero")
	ErrInvalidRetention    = newValidationError("retention must be greater than zero")
	ErrNameIsRequired      = newValidationError("name is required")
	ErrZoneTypeIsRequired  = newValidationError("zone type is required")
	ErrPolygonTooSmall     = newValidationError("boundary needs at least three distinct vertices")
	ErrSampleAlreadyClosed = errors.New("sample is already inactive")
)
