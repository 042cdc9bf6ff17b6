// Package ai talks to the language model that writes questions, grades answers
// and summarizes finished interviews.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
	"github.com/AVSAkash/interview-assistant/pkg/metrics"
)

// Operation names, shared with the HTTP contract.
const (
	OpGenerateQuestion = "generate-question"
	OpEvaluateAnswer   = "evaluate-answer"
	OpGenerateSummary  = "generate-summary"
)

const logOutputLimit = 200

// Prompt is one single-turn exchange with the model.
type Prompt struct {
	System string
	User   string
	// JSON asks the model for a JSON object response.
	JSON bool
}

// Completer sends a prompt to a model and returns its raw text output.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Gateway runs the three interview operations against a Completer.
type Gateway struct {
	completer Completer
	role      string
	timeout   time.Duration
	log       logger.Logger
}

// Option applies a configuration option to the Gateway.
type Option func(*Gateway)

// WithRole sets the position the interviewer hires for.
func WithRole(role string) Option {
	return func(g *Gateway) {
		if role = strings.TrimSpace(role); role != "" {
			g.role = role
		}
	}
}

// WithTimeout bounds every model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGateway builds a Gateway on top of c.
func NewGateway(c Completer, opts ...Option) *Gateway {
	g := &Gateway{
		completer: c,
		role:      DefaultRole,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateQuestion asks for one question of the given difficulty.
func (g *Gateway) GenerateQuestion(ctx context.Context, d interview.Difficulty) (string, error) {
	if !d.Valid() {
		return "", fmt.Errorf("%w: difficulty %q", ErrInvalidRequest, d)
	}
	out, err := g.call(ctx, OpGenerateQuestion, questionPrompt(g.role, d))
	if err != nil {
		return "", err
	}
	return out, nil
}

// EvaluateAnswer grades answer against question.
func (g *Gateway) EvaluateAnswer(ctx context.Context, question, answer string) (Evaluation, error) {
	out, err := g.call(ctx, OpEvaluateAnswer, evaluationPrompt(question, answer))
	if err != nil {
		return Evaluation{}, err
	}
	ev, err := ParseEvaluation(out)
	if err != nil {
		g.log.Warn(ctx, "model evaluation rejected",
			logger.String("output", logger.Truncate(out, logOutputLimit)),
			logger.Error(err))
		metrics.RecordErrorByComponent("ai", "schema")
		return Evaluation{}, err
	}
	return ev, nil
}

// GenerateSummary summarizes the whole question sequence, unanswered entries included.
func (g *Gateway) GenerateSummary(ctx context.Context, questions []interview.Question) (string, error) {
	if questions == nil {
		questions = []interview.Question{}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("%w: encode interview: %w", ErrInvalidRequest, err)
	}
	return g.call(ctx, OpGenerateSummary, summaryPrompt(data))
}

func (g *Gateway) call(ctx context.Context, op string, p Prompt) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := g.completer.Complete(ctx, p)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordAICall(op, "unavailable", latency)
		metrics.RecordErrorLatency("ai", "unavailable", latency)
		g.log.Error(ctx, "model call failed", logger.String("op", op), logger.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrAIUnavailable, op, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		metrics.RecordAICall(op, "empty", latency)
		g.log.Warn(ctx, "model returned empty output", logger.String("op", op))
		return "", fmt.Errorf("%w: %s: empty output", ErrAIResponse, op)
	}

	metrics.RecordAICall(op, "ok", latency)
	g.log.Debug(ctx, "model call completed",
		logger.String("op", op),
		logger.Float64("latency_ms", latency),
		logger.String("output", logger.Truncate(out, logOutputLimit)))
	return out, nil
}
