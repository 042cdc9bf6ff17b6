package interview

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Score band thresholds used by the dashboard.
const (
	goodScoreAbove    = 7
	averageScoreAbove = 4
)

// Band is the colour class of a final score.
type Band string

// Score bands.
const (
	BandGreen  Band = "green"
	BandOrange Band = "orange"
	BandRed    Band = "red"
)

// BandOf classifies a final score: above 7 green, above 4 orange, else red.
func BandOf(score int) Band {
	switch {
	case score > goodScoreAbove:
		return BandGreen
	case score > averageScoreAbove:
		return BandOrange
	default:
		return BandRed
	}
}

// CandidateRecord is the archived, immutable result of a completed interview.
type CandidateRecord struct {
	ID         string     `json:"id"`
	Candidate  Identity   `json:"details"`
	Interview  []Question `json:"interview"`
	FinalScore int        `json:"finalScore"`
	Summary    string     `json:"summary"`
	Date       time.Time  `json:"date"`
}

// Band returns the colour class of the record's final score.
func (r CandidateRecord) Band() Band { return BandOf(r.FinalScore) }

// FinalScore is the rounded mean of the question scores.
func FinalScore(questions []Question) int {
	if len(questions) == 0 {
		return 0
	}
	sum := 0
	for _, q := range questions {
		sum += q.Score
	}
	return int(math.Round(float64(sum) / float64(len(questions))))
}

// NewCandidateRecord archives a finished session.
func NewCandidateRecord(s *Session, summary string, now time.Time) (CandidateRecord, error) {
	if s.Status != StatusFinished {
		return CandidateRecord{}, fmt.Errorf("%w: session is %s, not finished", ErrInvalidTransition, s.Status)
	}
	if len(s.Questions) != MaxQuestions {
		return CandidateRecord{}, fmt.Errorf("%w: %d questions recorded, want %d", ErrInvalidTransition, len(s.Questions), MaxQuestions)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return CandidateRecord{}, fmt.Errorf("record id: %w", err)
	}
	var candidate Identity
	if s.Candidate != nil {
		candidate = *s.Candidate
	}
	questions := append([]Question(nil), s.Questions...)
	return CandidateRecord{
		ID:         id.String(),
		Candidate:  candidate,
		Interview:  questions,
		FinalScore: FinalScore(questions),
		Summary:    summary,
		Date:       now.UTC(),
	}, nil
}
