package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	service "github.com/AVSAkash/interview-assistant/internal/app"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
)

const directoryPermission = 0o750

// ErrSessionBusy is returned when an interview is already running and Reset is off.
var ErrSessionBusy = errors.New("an interview is already in progress")

type answerBody struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

type candidateRow struct {
	Rank       int    `json:"rank"`
	ID         string `json:"id"`
	FinalScore int    `json:"finalScore"`
}

// Run executes one complete interview against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	return run(ctx, cfg, NewClient(cfg.BaseURL, timeoutOf(cfg), nil))
}

func run(ctx context.Context, cfg *Config, c *Client) (*Report, error) {
	log := logger.Get().Named("simulate")
	report := &Report{StartTime: time.Now()}

	log.Info(ctx, "starting simulated interview",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("candidate", cfg.Candidate.Name))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, c); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Make sure no other interview is running
	if err := ensureIdle(ctx, cfg, c); err != nil {
		return nil, err
	}

	// Step 3: Start the interview
	var view service.SessionView
	if err := c.Post(ctx, "/api/session/start", cfg.Candidate, &view); err != nil {
		return nil, fmt.Errorf("start interview: %w", err)
	}
	report.SessionID = view.ID

	// Step 4: Answer every question
	var record *interview.CandidateRecord
	for record == nil {
		var err error
		if view, err = ensureQuestion(ctx, cfg, c, view, report); err != nil {
			return nil, err
		}
		index := view.CurrentQuestionIndex
		answer := answerFor(cfg, index)

		// The page saves drafts while typing; do the same once.
		if err := c.Put(ctx, "/api/session/draft", answerBody{Index: index, Answer: answer}, nil); err != nil {
			return nil, fmt.Errorf("save draft %d: %w", index, err)
		}

		began := time.Now()
		var res service.AnswerResult
		if err := c.Post(ctx, "/api/session/answer", answerBody{Index: index, Answer: answer}, &res); err != nil {
			return nil, fmt.Errorf("answer question %d: %w", index, err)
		}
		step := Step{
			Index:      index,
			Difficulty: interview.DifficultyOf(index),
			Question:   view.Questions[index].Text,
			Answer:     answer,
			Score:      res.Evaluation.Score,
			Feedback:   res.Evaluation.Feedback,
			Latency:    time.Since(began),
		}
		report.Steps = append(report.Steps, step)
		if cfg.Verbose {
			log.Info(ctx, "question answered",
				logger.Int("index", index),
				logger.String("difficulty", string(step.Difficulty)),
				logger.String("question", logger.Truncate(step.Question, 120)),
				logger.Int("score", step.Score),
				logger.String("feedback", logger.Truncate(step.Feedback, 120)))
		}

		view, record = res.Session, res.Record
		if res.NextQuestionError != "" {
			log.Warn(ctx, "next question failed", logger.String("error", res.NextQuestionError))
		}
	}
	report.Record = *record

	// Step 5: Verify the candidate reached the dashboard
	rank, err := verifyArchived(ctx, c, record.ID)
	if err != nil {
		return nil, fmt.Errorf("verify dashboard: %w", err)
	}
	report.Rank = rank

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	// Step 6: Save the report
	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	displayFinalStats(ctx, log, report)
	return report, nil
}

func timeoutOf(cfg *Config) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return DefaultTimeout
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *Client) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 is healthy; the body is Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func ensureIdle(ctx context.Context, cfg *Config, c *Client) error {
	var view service.SessionView
	if err := c.Get(ctx, "/api/session", &view); err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if view.Status != interview.StatusInProgress {
		return nil
	}
	if !cfg.Reset {
		return ErrSessionBusy
	}
	if err := c.Post(ctx, "/api/session/reset", nil, nil); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// ensureQuestion regenerates the current question while it is missing.
func ensureQuestion(ctx context.Context, cfg *Config, c *Client, view service.SessionView, report *Report) (service.SessionView, error) {
	retries := cfg.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	for attempt := 0; len(view.Questions) <= view.CurrentQuestionIndex; attempt++ {
		if attempt == retries {
			return view, fmt.Errorf("question %d was not generated after %d attempts", view.CurrentQuestionIndex, retries)
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return view, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		report.QuestionRetries++
		var next service.SessionView
		if err := c.Post(ctx, "/api/session/question", nil, &next); err != nil {
			if IsStatus(err, http.StatusBadGateway) {
				continue
			}
			return view, fmt.Errorf("generate question %d: %w", view.CurrentQuestionIndex, err)
		}
		view = next
	}
	return view, nil
}

func verifyArchived(ctx context.Context, c *Client, id string) (int, error) {
	var row candidateRow
	if err := c.Get(ctx, "/api/candidates/"+id, &row); err != nil {
		return 0, err
	}
	if row.ID != id {
		return 0, fmt.Errorf("candidate %s returned as %s", id, row.ID)
	}
	return row.Rank, nil
}

// saveReport writes the report as indented JSON.
func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}

// displayFinalStats logs the interview outcome.
func displayFinalStats(ctx context.Context, log logger.Logger, report *Report) {
	var slowest time.Duration
	for _, s := range report.Steps {
		slowest = max(slowest, s.Latency)
	}
	log.Info(ctx, "final statistics",
		logger.String("sessionId", report.SessionID),
		logger.String("recordId", report.Record.ID),
		logger.Int("questions", len(report.Steps)),
		logger.Int("finalScore", report.Record.FinalScore),
		logger.String("band", string(interview.BandOf(report.Record.FinalScore))),
		logger.Int("rank", report.Rank),
		logger.Int("questionRetries", report.QuestionRetries),
		logger.String("slowestAnswer", slowest.String()),
		logger.String("duration", report.Duration.String()))
}
