package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateMapping is returned when a relay message id is recorded
	// twice. The relay engine records each delivery exactly once, so this
	// indicates an invariant violation rather than a recoverable condition.
	ErrDuplicateMapping = errors.New("duplicate relay message id")
)
