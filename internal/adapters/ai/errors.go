package ai

import "errors"

// Sentinel kinds for gateway errors.
var (
	// ErrAIResponse means the model answered with empty or malformed content.
	ErrAIResponse = errors.New("ai response invalid")
	// ErrAIUnavailable means the model could not be reached or refused the call.
	ErrAIUnavailable = errors.New("ai unavailable")
	// ErrUnknownOperation means a request named an operation the gateway does not serve.
	ErrUnknownOperation = errors.New("unknown ai operation")
	// ErrInvalidRequest means a request payload is missing or malformed.
	ErrInvalidRequest = errors.New("invalid ai request")
)
