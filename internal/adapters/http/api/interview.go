package api

import (
	"errors"
	"net/http"

	"github.com/AVSAkash/interview-assistant/internal/adapters/ai"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
)

// Messages of the AI gateway endpoint. Its errors carry only {error}.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgBodyMissing      = "Request body is missing"
	msgInvalidType      = "Invalid request type"
	msgAIFailure        = "Failed to communicate with the AI model."
)

type aiErrorResponse struct {
	Error string `json:"error"`
}

// InterviewHandler serves the stateless AI gateway.
type InterviewHandler struct {
	gateway AIGateway
	logger  logger.Logger
}

// NewInterviewHandler creates a new AI gateway handler.
func NewInterviewHandler(gateway AIGateway) *InterviewHandler {
	return &InterviewHandler{gateway: gateway, logger: logger.Get().Named("api")}
}

// HandleInterview handles POST /api/interview requests.
func (h *InterviewHandler) HandleInterview(w http.ResponseWriter, r *http.Request) {
	const op = "api.interview"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, aiErrorResponse{Error: msgMethodNotAllowed})
		return
	}

	var req ai.Request
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, aiErrorResponse{Error: msgBodyMissing})
		return
	}
	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, aiErrorResponse{Error: msgInvalidType})
		return
	}

	result, err := h.gateway.Handle(r.Context(), req)
	switch {
	case errors.Is(err, ai.ErrUnknownOperation):
		writeJSON(w, http.StatusBadRequest, aiErrorResponse{Error: msgInvalidType})
	case errors.Is(err, ai.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, aiErrorResponse{Error: err.Error()})
	case err != nil:
		h.logger.Error(r.Context(), "error communicating with the AI provider",
			logger.String("type", req.Type),
			logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, aiErrorResponse{Error: msgAIFailure})
	default:
		writeJSON(w, http.StatusOK, result)
	}
}
