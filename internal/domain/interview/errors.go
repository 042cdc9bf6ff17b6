package interview

import "errors"

// Sentinel kinds for interview errors.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
)
