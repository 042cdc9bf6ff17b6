// Package simulate drives a running interview server through a complete
// interview over its HTTP API, the way the candidate page does.
package simulate

import (
	"time"

	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// Config holds configuration for a simulated interview.
type Config struct {
	BaseURL    string             // Base URL of the service
	Candidate  interview.Identity // Details sent to /api/session/start
	Answers    []string           // One answer per question; defaults per difficulty when short
	Timeout    time.Duration      // HTTP request timeout
	Retries    int                // Attempts to regenerate a question that failed
	Reset      bool               // Abandon an in-progress session instead of failing
	OutputFile string             // Report file; empty skips writing
	Verbose    bool               // Log every question and evaluation
}

// Step is one answered question.
type Step struct {
	Index      int                  `json:"index"`
	Difficulty interview.Difficulty `json:"difficulty"`
	Question   string               `json:"question"`
	Answer     string               `json:"answer"`
	Score      int                  `json:"score"`
	Feedback   string               `json:"feedback"`
	Latency    time.Duration        `json:"latency"`
}

// Report holds the outcome of a simulated interview.
type Report struct {
	SessionID       string                    `json:"sessionId"`
	Steps           []Step                    `json:"steps"`
	Record          interview.CandidateRecord `json:"record"`
	Rank            int                       `json:"rank"`
	QuestionRetries int                       `json:"questionRetries"`
	StartTime       time.Time                 `json:"startTime"`
	EndTime         time.Time                 `json:"endTime"`
	Duration        time.Duration             `json:"duration"`
}
