package history

import "errors"

// Sentinel errors for history operations.
var (
	// ErrEventExists indicates an event with the same ID already exists.
	ErrEventExists = errors.New("history: event already exists")
)
