package config

import "errors"

// Settings store errors.
var (
	// ErrNoPath is returned when a store is opened with an empty path.
	ErrNoPath = errors.New("settings path is empty")

	// ErrBadDocument is returned when the settings file is not valid JSON.
	ErrBadDocument = errors.New("settings file is not valid JSON")
)
