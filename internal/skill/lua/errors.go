package lua

import "errors"

var (
	// ErrStateClosed is returned when using a closed script state.
	ErrStateClosed = errors.New("lua state closed")
)
