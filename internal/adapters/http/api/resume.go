package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/AVSAkash/interview-assistant/internal/domain/resume"
)

// Upload limits.
const (
	maxResumeSize = 10 << 20
	maxFormSize   = maxResumeSize + 1<<20
)

// ResumeHandler extracts candidate details from an uploaded resume.
type ResumeHandler struct {
	svc ResumeService
}

// NewResumeHandler creates a new resume handler.
func NewResumeHandler(svc ResumeService) *ResumeHandler {
	return &ResumeHandler{svc: svc}
}

// HandleUpload handles POST /api/resume multipart requests with a single
// "file" part.
func (h *ResumeHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.resume"
	if !allow(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		writeError(w, badRequest(op, "invalid multipart form: "+err.Error()))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeError(w, badRequest(op, fmt.Sprintf("exactly one file is required, got %d", len(files))))
		return
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		writeError(w, badRequest(op, "unreadable file: "+err.Error()))
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, badRequest(op, "unreadable file: "+err.Error()))
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byName := resume.MIMEFromFilename(fh.Filename); byName != "" {
			mimeType = byName
		}
	}

	details, err := h.svc.ExtractResume(r.Context(), data, mimeType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
