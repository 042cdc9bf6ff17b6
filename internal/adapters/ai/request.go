package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// Request is the envelope accepted by the single AI endpoint.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// QuestionPayload is the generate-question payload.
type QuestionPayload struct {
	Difficulty interview.Difficulty `json:"difficulty"`
}

// EvaluationPayload is the evaluate-answer payload.
type EvaluationPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SummaryPayload is the generate-summary payload.
type SummaryPayload struct {
	FullInterview []interview.Question `json:"fullInterview"`
}

// TextResponse carries generated question or summary text.
type TextResponse struct {
	Response string `json:"response"`
}

// Handle dispatches a Request to the matching operation. The result is either
// a TextResponse or an Evaluation.
func (g *Gateway) Handle(ctx context.Context, req Request) (any, error) {
	switch strings.TrimSpace(req.Type) {
	case OpGenerateQuestion:
		var p QuestionPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		text, err := g.GenerateQuestion(ctx, p.Difficulty)
		if err != nil {
			return nil, err
		}
		return TextResponse{Response: text}, nil

	case OpEvaluateAnswer:
		var p EvaluationPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		ev, err := g.EvaluateAnswer(ctx, p.Question, p.Answer)
		if err != nil {
			return nil, err
		}
		return ev, nil

	case OpGenerateSummary:
		var p SummaryPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		text, err := g.GenerateSummary(ctx, p.FullInterview)
		if err != nil {
			return nil, err
		}
		return TextResponse{Response: text}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Type)
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: payload missing", ErrInvalidRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
