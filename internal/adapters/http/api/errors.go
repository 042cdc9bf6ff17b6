package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AVSAkash/interview-assistant/internal/adapters/ai"
	"github.com/AVSAkash/interview-assistant/internal/adapters/repository"
	service "github.com/AVSAkash/interview-assistant/internal/app"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/internal/domain/resume"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// badRequest wraps a client error with the operation that rejected it.
func badRequest(op, msg string) error {
	return fmt.Errorf("%s: %w: %s", op, ErrBadRequest, msg)
}

// statusFor maps an error kind to its HTTP status and machine-readable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, interview.ErrValidation),
		errors.Is(err, repository.ErrInvalidQuery),
		errors.Is(err, ai.ErrInvalidRequest),
		errors.Is(err, ai.ErrUnknownOperation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate_submission"
	case errors.Is(err, service.ErrStaleResponse):
		return http.StatusConflict, "stale_response"
	case errors.Is(err, service.ErrInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, interview.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, resume.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, resume.ErrExtraction):
		return http.StatusUnprocessableEntity, "extraction_failed"
	case errors.Is(err, ai.ErrAIUnavailable):
		return http.StatusBadGateway, "ai_unavailable"
	case errors.Is(err, ai.ErrAIResponse):
		return http.StatusBadGateway, "ai_response"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
