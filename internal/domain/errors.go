package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation indicates the input failed domain validation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the requested state transition is not allowed
	// from the record's current state.
	ErrConflict = errors.New("conflicting state")
)
