package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrNilPool     = errors.New("postgres pool is nil")
	ErrInvalidUser = errors.New("invalid user id")
)
