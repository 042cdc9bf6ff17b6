// Package interview holds the interview session state machine, the
// difficulty/timer policy and the archived candidate records.
//
// A question is appended to the session when it is generated, before it is
// answered. CurrentQuestionIndex always points at the most recently appended
// question, or at the slot the next generated question will fill.
package interview

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session.
type Status string

// Session states.
const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

// Identity is the candidate's contact details.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Missing returns the names of empty fields.
func (i Identity) Missing() []string {
	var missing []string
	if strings.TrimSpace(i.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(i.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(i.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// Question is one generated question and, once submitted, its evaluation.
type Question struct {
	Text     string `json:"questionText"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Answered bool   `json:"answered,omitempty"`
}

// Session is the single active interview.
type Session struct {
	ID                   string     `json:"id,omitempty"`
	Status               Status     `json:"status"`
	Questions            []Question `json:"questions"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	Candidate            *Identity  `json:"candidateDetails"`
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{Status: StatusIdle, Questions: []Question{}}
}

// Start begins a new interview for the candidate. The session is left
// untouched when a required field is missing.
func (s *Session) Start(candidate Identity) error {
	if missing := candidate.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	trimmed := Identity{
		Name:  strings.TrimSpace(candidate.Name),
		Email: strings.TrimSpace(candidate.Email),
		Phone: strings.TrimSpace(candidate.Phone),
	}
	s.ID = uuid.NewString()
	s.Status = StatusInProgress
	s.Questions = make([]Question, 0, MaxQuestions)
	s.CurrentQuestionIndex = 0
	s.Candidate = &trimmed
	return nil
}

// HasPending reports whether the question at the current index has been
// generated and not yet answered.
func (s *Session) HasPending() bool {
	if s.Status != StatusInProgress {
		return false
	}
	idx := s.CurrentQuestionIndex
	return len(s.Questions) == idx+1 && !s.Questions[idx].Answered
}

// NeedsQuestion reports whether the current slot still has to be generated.
func (s *Session) NeedsQuestion() bool {
	return s.Status == StatusInProgress && len(s.Questions) == s.CurrentQuestionIndex
}

// Current returns the question at the current index, if generated.
func (s *Session) Current() (Question, bool) {
	if s.CurrentQuestionIndex < len(s.Questions) {
		return s.Questions[s.CurrentQuestionIndex], true
	}
	return Question{}, false
}

// RecordGeneratedQuestion appends a new unanswered question at the current index.
func (s *Session) RecordGeneratedQuestion(text string) error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot add a question while %s", ErrInvalidTransition, s.Status)
	}
	if !s.NeedsQuestion() {
		return fmt.Errorf("%w: question %d already generated", ErrInvalidTransition, s.CurrentQuestionIndex)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty question text", ErrValidation)
	}
	s.Questions = append(s.Questions, Question{Text: text})
	return nil
}

// RecordAnswer fills the question at index. Only the current, pending
// question can be answered, and only once.
func (s *Session) RecordAnswer(index int, answer string, score int, feedback string) error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot answer while %s", ErrInvalidTransition, s.Status)
	}
	if index != s.CurrentQuestionIndex {
		return fmt.Errorf("%w: answer for question %d, current is %d", ErrInvalidTransition, index, s.CurrentQuestionIndex)
	}
	if !s.HasPending() {
		return fmt.Errorf("%w: question %d is not awaiting an answer", ErrInvalidTransition, index)
	}
	if score < 0 || score > 10 {
		return fmt.Errorf("%w: score %d out of range", ErrValidation, score)
	}
	q := &s.Questions[index]
	q.Answer = answer
	q.Score = score
	q.Feedback = feedback
	q.Answered = true
	return nil
}

// Advance moves to the next question, or finishes after the last one.
func (s *Session) Advance() error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot advance while %s", ErrInvalidTransition, s.Status)
	}
	if s.CurrentQuestionIndex < LastQuestionIndex {
		s.CurrentQuestionIndex++
		return nil
	}
	s.Status = StatusFinished
	return nil
}

// Reset returns the session to idle with empty state.
func (s *Session) Reset() {
	*s = *NewSession()
}

// Difficulty returns the tier of the current question.
func (s *Session) Difficulty() Difficulty {
	return DifficultyOf(s.CurrentQuestionIndex)
}

// Clone returns a deep copy safe to hand out of a lock.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]Question(nil), s.Questions...)
	if c.Questions == nil {
		c.Questions = []Question{}
	}
	if s.Candidate != nil {
		id := *s.Candidate
		c.Candidate = &id
	}
	return &c
}
