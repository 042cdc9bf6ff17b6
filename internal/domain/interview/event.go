package interview

import "time"

// Completed announces that an interview was archived.
type Completed struct {
	RecordID   string    `json:"recordId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	FinalScore int       `json:"finalScore"`
	Band       Band      `json:"band"`
	Date       time.Time `json:"date"`
}

// CompletedFrom builds the completion event for r.
func CompletedFrom(r CandidateRecord) Completed {
	return Completed{
		RecordID:   r.ID,
		Name:       r.Candidate.Name,
		Email:      r.Candidate.Email,
		FinalScore: r.FinalScore,
		Band:       r.Band(),
		Date:       r.Date,
	}
}
