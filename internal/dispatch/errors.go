package dispatch

import "errors"

// Registration errors.
var (
	// ErrNoPatterns is returned when a registration has no trigger patterns.
	ErrNoPatterns = errors.New("registration has no patterns")

	// ErrNilHandler is returned when a registration has a nil handler.
	ErrNilHandler = errors.New("registration handler is nil")

	// ErrNoHandler marks a query no registered handler took.
	ErrNoHandler = errors.New("no handler took the command")
)
