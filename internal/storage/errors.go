package storage

import "errors"

// Errors shared by all snapshot backends.
var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when (identifier, version) is already in the log.
	// Snapshots are never replaced in place.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when a snapshot fails validation before append.
	ErrInvalidInput = errors.New("invalid input")
)
