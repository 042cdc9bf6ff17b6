// Package service runs the interview: it owns the persisted state, drives
// the session through the AI gateway and keeps the question countdowns.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/AVSAkash/interview-assistant/internal/adapters/ai"
	eventqueue "github.com/AVSAkash/interview-assistant/internal/adapters/mq/queue"
	"github.com/AVSAkash/interview-assistant/internal/adapters/mq/rabbit"
	workerpool "github.com/AVSAkash/interview-assistant/internal/adapters/mq/worker"
	"github.com/AVSAkash/interview-assistant/internal/adapters/repository"
	"github.com/AVSAkash/interview-assistant/internal/adapters/storage"
	"github.com/AVSAkash/interview-assistant/internal/domain/dedupe"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/internal/domain/resume"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
	"github.com/AVSAkash/interview-assistant/pkg/metrics"
)

// Gateway is the subset of the AI gateway the service drives.
type Gateway interface {
	GenerateQuestion(ctx context.Context, d interview.Difficulty) (string, error)
	EvaluateAnswer(ctx context.Context, question, answer string) (ai.Evaluation, error)
	GenerateSummary(ctx context.Context, questions []interview.Question) (string, error)
}

// ResumeExtractor reads candidate details from an uploaded file.
type ResumeExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (resume.Details, error)
}

// Source tells how an answer was submitted.
type Source string

// Submission sources.
const (
	SourceManual Source = "manual"
	SourceTimer  Source = "timer"
)

// SessionView is a copy of the session plus the countdown and resume state.
type SessionView struct {
	ID                   string                     `json:"id,omitempty"`
	Status               interview.Status           `json:"status"`
	Candidate            *interview.Identity        `json:"candidateDetails"`
	Questions            []interview.Question       `json:"questions"`
	CurrentQuestionIndex int                        `json:"currentQuestionIndex"`
	Difficulty           interview.Difficulty       `json:"difficulty,omitempty"`
	TimerSeconds         int                        `json:"timerSeconds,omitempty"`
	RemainingSeconds     *int                       `json:"remainingSeconds,omitempty"`
	Pending              bool                       `json:"pending"`
	Resumable            bool                       `json:"resumable"`
	Draft                string                     `json:"draft,omitempty"`
	LastRecord           *interview.CandidateRecord `json:"lastRecord,omitempty"`
}

// AnswerResult is the outcome of a recorded answer. NextQuestionError is set
// when the answer was recorded but the following question could not be
// generated; POST /api/session/question retries it.
type AnswerResult struct {
	Evaluation        ai.Evaluation              `json:"evaluation"`
	Session           SessionView                `json:"session"`
	Record            *interview.CandidateRecord `json:"record,omitempty"`
	NextQuestionError string                     `json:"nextQuestionError,omitempty"`
}

// Service implements the API dependencies for the interview.
type Service struct {
	mu sync.Mutex

	// Core components
	store      storage.Store
	state      *State
	gateway    Gateway
	extractor  ResumeExtractor
	guard      dedupe.Deduper
	timers     *TimerManager
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	sink       workerpool.Sink

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	countdown   func(index int) time.Duration
	now         func() time.Time

	// Session-scoped state that is not persisted
	drafts     map[string]string
	generating map[string]bool
	resumable  bool
	lastRecord *interview.CandidateRecord

	// Lifecycle
	started    bool
	baseCtx    context.Context
	cancelBase context.CancelFunc

	logger logger.Logger
}

// New constructs a Service persisting to store and calling gateway.
func New(store storage.Store, gateway Gateway, opts ...Option) *Service {
	s := &Service{
		store:       store,
		gateway:     gateway,
		extractor:   resume.NewExtractor(),
		workerCount: 1,
		queueSize:   256,
		dedupeSize:  1024,
		countdown:   interview.TimerDurationOf,
		now:         time.Now,
		drafts:      make(map[string]string),
		generating:  make(map[string]bool),
		baseCtx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the persisted state and starts the event publishers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.sink == nil {
		s.sink = rabbit.NewLogSink(s.logger)
	}

	state := NewState(s.store)
	if err := state.Load(ctx); err != nil {
		return err
	}
	s.state = state
	s.resumable = state.Interview.Status == interview.StatusInProgress
	s.lastRecord = nil
	if state.Interview.Status == interview.StatusFinished {
		if records := state.Candidates.Records(); len(records) > 0 {
			rec := records[0]
			s.lastRecord = &rec
		}
	}

	s.guard = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.timers = NewTimerManager(s.logger.Named("timer"))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.baseCtx, s.cancelBase = context.WithCancel(context.WithoutCancel(ctx))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.sink)
	s.workerPool.Start(s.baseCtx)

	metrics.UpdateCandidatesTotal(state.Candidates.Count(ctx))

	s.started = true
	s.logger.Info(ctx, "interview service started",
		logger.String("status", string(state.Interview.Status)),
		logger.Bool("resumable", s.resumable),
		logger.Int("candidates", state.Candidates.Count(ctx)),
		logger.String("sink", s.sink.Name()),
	)
	return nil
}

// Stop cancels the countdowns and drains the event publishers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.logger.Info(ctx, "stopping interview service...")
	s.timers.Shutdown()
	s.started = false
	pool, cancel := s.workerPool, s.cancelBase
	s.mu.Unlock()

	err := pool.Shutdown(ctx)
	cancel()
	s.logger.Info(ctx, "interview service stopped")
	return err
}

// ready must be called with s.mu held.
func (s *Service) ready() error {
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Snapshot returns the current session view.
func (s *Service) Snapshot(_ context.Context) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return SessionView{}, err
	}
	return s.viewLocked(), nil
}

func (s *Service) viewLocked() SessionView {
	sess := s.state.Interview.Clone()
	v := SessionView{
		ID:                   sess.ID,
		Status:               sess.Status,
		Candidate:            sess.Candidate,
		Questions:            sess.Questions,
		CurrentQuestionIndex: sess.CurrentQuestionIndex,
		Pending:              sess.HasPending(),
		Resumable:            s.resumable,
		LastRecord:           s.lastRecord,
	}
	if sess.Status != interview.StatusInProgress {
		return v
	}
	idx := sess.CurrentQuestionIndex
	v.Difficulty = sess.Difficulty()
	v.TimerSeconds = interview.TimerSecondsOf(idx)
	if left, ok := s.timers.Remaining(sess.ID, idx); ok {
		secs := int(math.Ceil(left.Seconds()))
		v.RemainingSeconds = &secs
	}
	v.Draft = s.drafts[dedupe.SubmissionKey(sess.ID, idx)]
	return v
}

// StartInterview validates the candidate, starts a new session and generates
// the first question. A failed first question leaves the session started;
// GenerateQuestion retries it.
func (s *Service) StartInterview(ctx context.Context, candidate interview.Identity) (SessionView, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return SessionView{}, err
	}
	sess := s.state.Interview
	backup := sess.Clone()
	if err := sess.Start(candidate); err != nil {
		s.mu.Unlock()
		return SessionView{}, err
	}
	if err := s.state.Save(ctx); err != nil {
		*sess = *backup
		s.mu.Unlock()
		return SessionView{}, err
	}
	if backup.ID != "" {
		s.timers.CancelSession(backup.ID)
	}
	s.drafts = make(map[string]string)
	s.resumable = false
	s.lastRecord = nil
	sid := sess.ID
	s.mu.Unlock()

	metrics.RecordInterviewStarted()
	s.logger.Info(ctx, "interview started",
		logger.String("session_id", sid),
		logger.String("candidate", candidate.Name))

	return s.GenerateQuestion(ctx)
}

// GenerateQuestion generates the question for the current slot, records it
// and arms its countdown. If the question already exists the current view is
// returned unchanged.
func (s *Service) GenerateQuestion(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return SessionView{}, err
	}
	sess := s.state.Interview
	if sess.Status != interview.StatusInProgress {
		s.mu.Unlock()
		return SessionView{}, fmt.Errorf("%w: no interview in progress", interview.ErrInvalidTransition)
	}
	if sess.HasPending() {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, nil
	}
	sid, idx := sess.ID, sess.CurrentQuestionIndex
	key := dedupe.SubmissionKey(sid, idx)
	if s.generating[key] {
		s.mu.Unlock()
		return SessionView{}, ErrInFlight
	}
	s.generating[key] = true
	difficulty := sess.Difficulty()
	s.mu.Unlock()

	text, err := s.gateway.GenerateQuestion(ctx, difficulty)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generating, key)
	if err != nil {
		s.logger.Warn(ctx, "question generation failed",
			logger.String("session_id", sid),
			logger.Int("index", idx),
			logger.Error(err))
		return SessionView{}, err
	}
	sess = s.state.Interview
	if !s.isCurrent(sid, idx) || !sess.NeedsQuestion() {
		metrics.RecordSubmissionDropped("stale")
		return SessionView{}, ErrStaleResponse
	}
	backup := sess.Clone()
	if err := sess.RecordGeneratedQuestion(text); err != nil {
		return SessionView{}, err
	}
	if err := s.state.Save(ctx); err != nil {
		*sess = *backup
		return SessionView{}, err
	}
	s.armLocked(sid, idx, s.countdown(idx))
	s.logger.Debug(ctx, "question recorded",
		logger.String("session_id", sid),
		logger.Int("index", idx),
		logger.String("difficulty", string(difficulty)))
	return s.viewLocked(), nil
}

// SaveDraft remembers the typed answer of the pending question so a timer
// expiry submits it.
func (s *Service) SaveDraft(_ context.Context, index int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	sess := s.state.Interview
	if sess.Status != interview.StatusInProgress || index != sess.CurrentQuestionIndex || !sess.HasPending() {
		return fmt.Errorf("%w: question %d is not awaiting an answer", interview.ErrInvalidTransition, index)
	}
	s.drafts[dedupe.SubmissionKey(sess.ID, index)] = answer
	return nil
}

// SubmitAnswer evaluates and records the answer to the pending question.
// After the last question the summary is generated and the candidate record
// archived in the same commit.
func (s *Service) SubmitAnswer(ctx context.Context, index int, answer string) (AnswerResult, error) {
	return s.submit(ctx, "", index, answer, SourceManual)
}

// submit is shared by manual submissions and countdown expiry. An empty
// sessionID targets the active session.
func (s *Service) submit(ctx context.Context, sessionID string, index int, answer string, source Source) (AnswerResult, error) { //nolint:funlen // one commit path for every submission source
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return AnswerResult{}, err
	}
	sess := s.state.Interview
	if sessionID == "" {
		sessionID = sess.ID
	}
	switch {
	case sess.ID != sessionID || sess.Status != interview.StatusInProgress:
		s.mu.Unlock()
		metrics.RecordSubmissionDropped("stale")
		return AnswerResult{}, ErrStaleResponse
	case index < sess.CurrentQuestionIndex:
		s.mu.Unlock()
		metrics.RecordSubmissionDropped("duplicate")
		return AnswerResult{}, ErrDuplicateSubmission
	case index != sess.CurrentQuestionIndex || !sess.HasPending():
		s.mu.Unlock()
		return AnswerResult{}, fmt.Errorf("%w: question %d is not awaiting an answer", interview.ErrInvalidTransition, index)
	}

	key := dedupe.SubmissionKey(sessionID, index)
	if s.guard.SeenAndRecord(ctx, key) {
		s.mu.Unlock()
		metrics.RecordSubmissionDropped("duplicate")
		return AnswerResult{}, ErrDuplicateSubmission
	}
	remaining, _ := s.timers.Remaining(sessionID, index)
	s.timers.Cancel(sessionID, index)
	if source == SourceTimer {
		answer = s.drafts[key]
	}
	question, _ := sess.Current()
	last := index == interview.LastQuestionIndex
	var filled []interview.Question
	if last {
		filled = append([]interview.Question(nil), sess.Questions...)
	}
	s.mu.Unlock()

	s.logger.Debug(ctx, "evaluating answer",
		logger.String("session_id", sessionID),
		logger.Int("index", index),
		logger.String("source", string(source)))

	eval, err := s.gateway.EvaluateAnswer(ctx, question.Text, answer)
	var summary string
	if err == nil && last {
		q := &filled[index]
		q.Answer, q.Score, q.Feedback, q.Answered = answer, eval.Score, eval.Feedback, true
		summary, err = s.gateway.GenerateSummary(ctx, filled)
	}
	if err != nil {
		s.release(ctx, sessionID, index, remaining)
		s.logger.Warn(ctx, "answer not recorded",
			logger.String("session_id", sessionID),
			logger.Int("index", index),
			logger.Error(err))
		return AnswerResult{}, err
	}

	s.mu.Lock()
	sess = s.state.Interview
	if !s.isCurrent(sessionID, index) || !sess.HasPending() {
		s.mu.Unlock()
		metrics.RecordSubmissionDropped("stale")
		return AnswerResult{}, ErrStaleResponse
	}
	backup := sess.Clone()
	rollback := func(err error) (AnswerResult, error) {
		*sess = *backup
		s.releaseLocked(ctx, sessionID, index, remaining)
		s.mu.Unlock()
		return AnswerResult{}, err
	}

	if err := sess.RecordAnswer(index, answer, eval.Score, eval.Feedback); err != nil {
		return rollback(err)
	}
	if err := sess.Advance(); err != nil {
		return rollback(err)
	}
	var record *interview.CandidateRecord
	if last {
		rec, err := interview.NewCandidateRecord(sess, summary, s.now())
		if err != nil {
			return rollback(err)
		}
		if err := s.state.Candidates.Prepend(ctx, rec); err != nil {
			return rollback(err)
		}
		record = &rec
	}
	if err := s.state.Save(ctx); err != nil {
		if record != nil {
			s.state.Candidates.Remove(ctx, record.ID)
		}
		return rollback(err)
	}
	delete(s.drafts, key)
	if record != nil {
		s.lastRecord = record
	}
	view := s.viewLocked()
	s.mu.Unlock()

	metrics.RecordAnswer(string(source), string(interview.DifficultyOf(index)))
	result := AnswerResult{Evaluation: eval, Session: view, Record: record}

	if record != nil {
		metrics.RecordInterviewFinished(record.FinalScore)
		s.logger.Info(ctx, "interview finished",
			logger.String("session_id", sessionID),
			logger.String("record_id", record.ID),
			logger.Int("final_score", record.FinalScore))
		s.publish(ctx, *record)
		return result, nil
	}

	next, err := s.GenerateQuestion(ctx)
	if err != nil {
		result.NextQuestionError = err.Error()
		return result, nil
	}
	result.Session = next
	return result, nil
}

// release frees the submission claim after a failed evaluation so the
// candidate can retry, and restores the countdown that was running.
func (s *Service) release(ctx context.Context, sessionID string, index int, remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(ctx, sessionID, index, remaining)
}

func (s *Service) releaseLocked(ctx context.Context, sessionID string, index int, remaining time.Duration) {
	s.guard.Unrecord(ctx, dedupe.SubmissionKey(sessionID, index))
	if remaining > 0 && s.isCurrent(sessionID, index) && s.state.Interview.HasPending() {
		s.armLocked(sessionID, index, remaining)
	}
}

// isCurrent must be called with s.mu held.
func (s *Service) isCurrent(sessionID string, index int) bool {
	sess := s.state.Interview
	return sess.Status == interview.StatusInProgress && sess.ID == sessionID && sess.CurrentQuestionIndex == index
}

func (s *Service) armLocked(sessionID string, index int, d time.Duration) {
	ctx := s.baseCtx
	s.timers.Start(sessionID, index, d, func(sessionID string, index int) {
		s.onTimeout(ctx, sessionID, index)
	})
}

// onTimeout submits the draft answer of an expired question.
func (s *Service) onTimeout(ctx context.Context, sessionID string, index int) {
	_, err := s.submit(ctx, sessionID, index, "", SourceTimer)
	switch {
	case err == nil:
	case errors.Is(err, ErrDuplicateSubmission), errors.Is(err, ErrStaleResponse), errors.Is(err, ErrNotStarted):
		s.logger.Debug(ctx, "countdown submission suppressed",
			logger.String("session_id", sessionID),
			logger.Int("index", index),
			logger.Error(err))
	default:
		s.logger.Warn(ctx, "countdown submission failed",
			logger.String("session_id", sessionID),
			logger.Int("index", index),
			logger.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, rec interview.CandidateRecord) {
	if err := s.eventQueue.Enqueue(ctx, interview.CompletedFrom(rec)); err != nil {
		s.logger.Warn(ctx, "completion event dropped",
			logger.String("record_id", rec.ID),
			logger.Error(err))
	}
}

// Resume continues an in-progress session restored from storage. The
// countdown restarts with the full duration of the current question; a
// missing question is generated.
func (s *Service) Resume(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return SessionView{}, err
	}
	sess := s.state.Interview
	if sess.Status != interview.StatusInProgress {
		s.mu.Unlock()
		return SessionView{}, fmt.Errorf("%w: no interview to resume", interview.ErrInvalidTransition)
	}
	s.resumable = false
	if sess.HasPending() {
		sid, idx := sess.ID, sess.CurrentQuestionIndex
		if _, running := s.timers.Remaining(sid, idx); !running {
			s.armLocked(sid, idx, s.countdown(idx))
		}
		v := s.viewLocked()
		s.mu.Unlock()
		s.logger.Info(ctx, "interview resumed", logger.String("session_id", sid), logger.Int("index", idx))
		return v, nil
	}
	s.mu.Unlock()
	return s.GenerateQuestion(ctx)
}

// Reset abandons the session and returns it to idle. Archived records stay.
func (s *Service) Reset(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return SessionView{}, err
	}
	sess := s.state.Interview
	backup := sess.Clone()
	sess.Reset()
	if err := s.state.Save(ctx); err != nil {
		*sess = *backup
		return SessionView{}, err
	}
	if backup.ID != "" {
		s.timers.CancelSession(backup.ID)
	}
	s.drafts = make(map[string]string)
	s.resumable = false
	s.lastRecord = nil

	metrics.RecordInterviewReset()
	s.logger.Info(ctx, "interview reset", logger.String("session_id", backup.ID))
	return s.viewLocked(), nil
}

// ExtractResume reads the candidate details from an uploaded resume.
func (s *Service) ExtractResume(ctx context.Context, data []byte, mimeType string) (resume.Details, error) {
	format := resumeFormat(mimeType)
	details, err := s.extractor.Extract(ctx, data, mimeType)
	switch {
	case errors.Is(err, resume.ErrUnsupportedFormat):
		metrics.RecordResumeExtraction(format, "unsupported")
		return resume.Details{}, err
	case err != nil:
		metrics.RecordResumeExtraction(format, "error")
		return resume.Details{}, err
	}
	metrics.RecordResumeExtraction(format, "ok")
	if s.logger != nil {
		s.logger.Debug(ctx, "resume extracted",
			logger.String("format", format),
			logger.Bool("name", details.Name != nil),
			logger.Bool("email", details.Email != nil),
			logger.Bool("phone", details.Phone != nil))
	}
	return details, nil
}

func resumeFormat(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, resume.MIMEPDF):
		return "pdf"
	case strings.HasPrefix(mimeType, resume.MIMEDOCX):
		return "docx"
	default:
		return "other"
	}
}

// Candidates lists the archived records in the requested order.
func (s *Service) Candidates(ctx context.Context, q repository.Query) ([]repository.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.state.Candidates.List(ctx, q), nil
}

// Candidate returns one archived record with its rank.
func (s *Service) Candidate(ctx context.Context, id string) (repository.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return repository.Entry{}, err
	}
	return s.state.Candidates.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.eventQueue.Len()
		stats["candidates"] = s.state.Candidates.Count(ctx)
		stats["activeTimers"] = s.timers.Active()
		stats["claimedSubmissions"] = s.guard.Size()
		stats["sessionStatus"] = s.state.Interview.Status
		stats["sink"] = s.sink.Name()

		metrics.UpdateQueueSize(s.eventQueue.Len())
	}

	return stats
}
