package repository

import "errors"

// Sentinel kinds for candidate registry errors.
var (
	ErrNotFound      = errors.New("candidate not found")
	ErrDuplicateID   = errors.New("duplicate candidate id")
	ErrInvalidRecord = errors.New("invalid candidate record")
	ErrInvalidQuery  = errors.New("invalid candidate query")
)
