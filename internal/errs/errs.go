package errs

import "errors"

var (
	// ErrRequestNotFound is returned when no row matches the given id.
	ErrRequestNotFound = errors.New("request not found")

	// ErrInvalidTransition is returned in strict mode when the target status
	// is not a legal successor of the current one.
	ErrInvalidTransition = errors.New("invalid status transition")
)
