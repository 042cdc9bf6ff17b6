package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrDuplicateSubmission means an answer for the question is already being
	// processed or was recorded.
	ErrDuplicateSubmission = errors.New("answer already submitted")
	// ErrStaleResponse means the session moved on while work for an earlier
	// question or session was in flight; the result was discarded.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrInFlight means the same operation is already running.
	ErrInFlight = errors.New("operation already in progress")
	// ErrNotStarted means the service was used before Start.
	ErrNotStarted = errors.New("service not started")
)
