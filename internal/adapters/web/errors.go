package web

import (
	"encoding/json"
	"log"
	"net/http"

	"pharmacy-erp/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a service error to its HTTP status. Internal errors
// are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := core.ErrorCode(err)
	switch code {
	case core.CodeNotFound:
		writeError(w, r, err.Error(), code, http.StatusNotFound)
	case core.CodeInsufficientStock:
		writeError(w, r, err.Error(), code, http.StatusConflict)
	case core.CodeValidation:
		writeError(w, r, err.Error(), code, http.StatusBadRequest)
	case core.CodeTransactionAborted:
		w.Header().Set("Retry-After", "1")
		writeError(w, r, err.Error(), code, http.StatusServiceUnavailable)
	default:
		log.Printf("%s %s [%s]: %v", r.Method, r.URL.Path, requestIDFromContext(r.Context()), err)
		writeError(w, r, "internal server error", code, http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}
