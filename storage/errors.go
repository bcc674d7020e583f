package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when an archived profile is not found.
	ErrNotFound = errors.New("profile not found")
)
