package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {error, code} with the status of the error kind.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// decodeJSON reads a JSON body into v. An empty body is a bad request.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return badRequest(op, "request body is missing")
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	switch {
	case errors.Is(err, io.EOF):
		return badRequest(op, "request body is missing")
	case err != nil:
		return badRequest(op, "invalid JSON body: "+err.Error())
	}
	return nil
}

// allow rejects requests whose method is not m.
func allow(w http.ResponseWriter, r *http.Request, m string) bool {
	if r.Method == m {
		return true
	}
	w.Header().Set("Allow", m)
	writeError(w, ErrMethodNotAllowed)
	return false
}
