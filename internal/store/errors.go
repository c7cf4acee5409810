package store

import "errors"

var (
	// ErrNotFound is returned when no record or object matches.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrInvalidName is returned for object names that could escape the storage root.
	ErrInvalidName = errors.New("store: invalid object name")
)
