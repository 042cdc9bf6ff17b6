package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Score bounds a model evaluation must respect.
const (
	MinScore = 1
	MaxScore = 10
)

// Evaluation is the graded result of one answer.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// ParseEvaluation validates raw model output against the evaluation schema:
// a JSON object with an integer score in 1..10 and a string feedback. A
// surrounding markdown code fence is tolerated.
func ParseEvaluation(raw string) (Evaluation, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &fields); err != nil {
		return Evaluation{}, fmt.Errorf("%w: not a json object: %w", ErrAIResponse, err)
	}

	rawScore, ok := fields["score"]
	if !ok {
		return Evaluation{}, fmt.Errorf("%w: score missing", ErrAIResponse)
	}
	score, ok := rawScore.(float64)
	if !ok || score != math.Trunc(score) {
		return Evaluation{}, fmt.Errorf("%w: score %v is not an integer", ErrAIResponse, rawScore)
	}
	if score < MinScore || score > MaxScore {
		return Evaluation{}, fmt.Errorf("%w: score %v out of range", ErrAIResponse, score)
	}

	rawFeedback, ok := fields["feedback"]
	if !ok {
		return Evaluation{}, fmt.Errorf("%w: feedback missing", ErrAIResponse)
	}
	feedback, ok := rawFeedback.(string)
	if !ok {
		return Evaluation{}, fmt.Errorf("%w: feedback is not a string", ErrAIResponse)
	}

	return Evaluation{Score: int(score), Feedback: strings.TrimSpace(feedback)}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
