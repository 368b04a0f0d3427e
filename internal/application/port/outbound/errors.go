package outbound

import "errors"

var (
	// ErrUnavailable marks a failure of a backing store or index. Callers may retry later.
	ErrUnavailable = errors.New("location service unavailable")
	ErrNotFound    = errors.New("not found")
)
