package api

import (
	"net/http"

	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// startRequest is the candidate form submitted to start an interview.
type startRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// answerRequest targets a question by index. Index is required.
type answerRequest struct {
	Index  *int   `json:"index"`
	Answer string `json:"answer"`
}

func (a answerRequest) validate(op string) error {
	if a.Index == nil {
		return badRequest(op, "missing index")
	}
	if *a.Index < 0 || *a.Index > interview.LastQuestionIndex {
		return badRequest(op, "index out of range")
	}
	return nil
}

// SessionHandler exposes the interview session.
type SessionHandler struct {
	svc SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// HandleGet handles GET /api/session requests.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	view, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleStart handles POST /api/session/start requests.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_start"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req startRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	view, err := h.svc.StartInterview(r.Context(), interview.Identity(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleResume handles POST /api/session/resume requests.
func (h *SessionHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	view, err := h.svc.Resume(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleReset handles POST /api/session/reset requests.
func (h *SessionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	view, err := h.svc.Reset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleQuestion handles POST /api/session/question requests.
func (h *SessionHandler) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	view, err := h.svc.GenerateQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDraft handles PUT /api/session/draft requests.
func (h *SessionHandler) HandleDraft(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_draft"
	if !allow(w, r, http.MethodPut) {
		return
	}
	var req answerRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(op); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.SaveDraft(r.Context(), *req.Index, req.Answer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAnswer handles POST /api/session/answer requests.
func (h *SessionHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_answer"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req answerRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(op); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.SubmitAnswer(r.Context(), *req.Index, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
