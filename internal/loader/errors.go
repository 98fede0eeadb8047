package loader

import "errors"

var (
	// ErrDisabled marks a module skipped through configuration. The
	// module's registration code is never invoked.
	ErrDisabled = errors.New("disabled by configuration")

	// ErrReservedName marks a module whose name collides with a
	// reserved identifier.
	ErrReservedName = errors.New("reserved module name")
)
