package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist or is
	// tombstoned.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record violates a check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrBusy is returned when the store could not serialize the operation and
	// the caller should retry.
	ErrBusy = errors.New("persistence: store busy")
)
