package api

import (
	"net/http"
	"time"

	"github.com/AVSAkash/interview-assistant/internal/adapters/repository"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// candidateSummary is one dashboard row.
type candidateSummary struct {
	Rank       int                `json:"rank"`
	ID         string             `json:"id"`
	Details    interview.Identity `json:"details"`
	FinalScore int                `json:"finalScore"`
	Band       interview.Band     `json:"band"`
	Summary    string             `json:"summary"`
	Date       time.Time          `json:"date"`
}

// questionDetail is a question with the colour class of its score.
type questionDetail struct {
	interview.Question
	Band interview.Band `json:"band"`
}

// candidateDetail is the Q&A drill-down of one record.
type candidateDetail struct {
	candidateSummary
	Interview []questionDetail `json:"interview"`
}

func toSummary(e repository.Entry) candidateSummary {
	return candidateSummary{
		Rank:       e.Rank,
		ID:         e.Record.ID,
		Details:    e.Record.Candidate,
		FinalScore: e.Record.FinalScore,
		Band:       e.Record.Band(),
		Summary:    e.Record.Summary,
		Date:       e.Record.Date,
	}
}

func toDetail(e repository.Entry) candidateDetail {
	d := candidateDetail{candidateSummary: toSummary(e), Interview: make([]questionDetail, len(e.Record.Interview))}
	for i, q := range e.Record.Interview {
		d.Interview[i] = questionDetail{Question: q, Band: interview.BandOf(q.Score)}
	}
	return d
}

// CandidatesHandler serves the interviewer dashboard data.
type CandidatesHandler struct {
	svc CandidateService
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(svc CandidateService) *CandidatesHandler {
	return &CandidatesHandler{svc: svc}
}

// HandleList handles GET /api/candidates?sort=date|name|score&order=asc|desc.
func (h *CandidatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q, err := repository.ParseQuery(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.svc.Candidates(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]candidateSummary, len(entries))
	for i, e := range entries {
		out[i] = toSummary(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /api/candidates/{id}.
func (h *CandidatesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.candidate"
	if !allow(w, r, http.MethodGet) {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, badRequest(op, "missing candidate id"))
		return
	}
	entry, err := h.svc.Candidate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetail(entry))
}
