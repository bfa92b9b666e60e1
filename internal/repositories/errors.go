package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned for IDs that are not valid ObjectIDs.
	ErrInvalidID = errors.New("invalid id format")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)
