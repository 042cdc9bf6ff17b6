// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/AVSAkash/interview-assistant/internal/adapters/ai"
	"github.com/AVSAkash/interview-assistant/internal/adapters/repository"
	service "github.com/AVSAkash/interview-assistant/internal/app"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/internal/domain/resume"
)

// AIGateway answers the stateless AI endpoint.
type AIGateway interface {
	Handle(ctx context.Context, req ai.Request) (any, error)
}

// SessionService drives the interview session.
type SessionService interface {
	Snapshot(ctx context.Context) (service.SessionView, error)
	StartInterview(ctx context.Context, candidate interview.Identity) (service.SessionView, error)
	GenerateQuestion(ctx context.Context) (service.SessionView, error)
	SaveDraft(ctx context.Context, index int, answer string) error
	SubmitAnswer(ctx context.Context, index int, answer string) (service.AnswerResult, error)
	Resume(ctx context.Context) (service.SessionView, error)
	Reset(ctx context.Context) (service.SessionView, error)
}

// ResumeService extracts candidate details from resumes.
type ResumeService interface {
	ExtractResume(ctx context.Context, data []byte, mimeType string) (resume.Details, error)
}

// CandidateService reads archived candidate records.
type CandidateService interface {
	Candidates(ctx context.Context, q repository.Query) ([]repository.Entry, error)
	Candidate(ctx context.Context, id string) (repository.Entry, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionService
	ResumeService
	CandidateService
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	interviewHandler  *InterviewHandler
	sessionHandler    *SessionHandler
	resumeHandler     *ResumeHandler
	candidatesHandler *CandidatesHandler
	dashboardHandler  *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, gateway AIGateway) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		interviewHandler:  NewInterviewHandler(gateway),
		sessionHandler:    NewSessionHandler(deps),
		resumeHandler:     NewResumeHandler(deps),
		candidatesHandler: NewCandidatesHandler(deps),
		dashboardHandler:  newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)

	mux.HandleFunc("/api/interview", MetricsMiddleware(s.interviewHandler.HandleInterview, "interview"))
	mux.HandleFunc("/api/resume", MetricsMiddleware(s.resumeHandler.HandleUpload, "resume"))

	mux.HandleFunc("/api/session", MetricsMiddleware(s.sessionHandler.HandleGet, "session"))
	mux.HandleFunc("/api/session/start", MetricsMiddleware(s.sessionHandler.HandleStart, "session_start"))
	mux.HandleFunc("/api/session/resume", MetricsMiddleware(s.sessionHandler.HandleResume, "session_resume"))
	mux.HandleFunc("/api/session/reset", MetricsMiddleware(s.sessionHandler.HandleReset, "session_reset"))
	mux.HandleFunc("/api/session/question", MetricsMiddleware(s.sessionHandler.HandleQuestion, "session_question"))
	mux.HandleFunc("/api/session/answer", MetricsMiddleware(s.sessionHandler.HandleAnswer, "session_answer"))
	mux.HandleFunc("/api/session/draft", MetricsMiddleware(s.sessionHandler.HandleDraft, "session_draft"))

	mux.HandleFunc("/api/candidates", MetricsMiddleware(s.candidatesHandler.HandleList, "candidates"))
	mux.HandleFunc("/api/candidates/{id}", MetricsMiddleware(s.candidatesHandler.HandleGet, "candidate"))
}
