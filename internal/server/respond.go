package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

type errorEnvelope struct {
	Error      string            `json:"error"`
	Code       string            `json:"code"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case errors.ErrCodeRecordNotFound, errors.ErrCodeConfigNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidRecord, errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeRetrievalFailed, errors.ErrCodeWorkflowFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *errors.AmanError
	if !stderrors.As(err, &ae) {
		ae = errors.InternalError("unexpected error", err)
	}

	status := statusFor(ae.Code)
	if status >= 500 {
		logger(r).Error("request_failed", errors.LogAttrs(err)...)
	}

	env := errorEnvelope{
		Error:      ae.Message,
		Code:       ae.Code,
		Suggestion: ae.Suggestion,
	}
	if status < 500 {
		env.Details = ae.Details
	}
	writeJSON(w, status, env)
}
