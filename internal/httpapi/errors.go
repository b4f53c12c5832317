package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"croprec/internal/predictor"
	"croprec/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
// Only errors below 500 show their message to clients.
type HTTPError interface {
	error
	StatusCode() int
}

// codeInternal is the only message clients see for 5xx errors; the cause is logged.
const codeInternal = "internal_error"

// statusFor maps service errors to a status and the message shown to clients.
// Predict validation errors expose only their code.
func statusFor(err error) (int, string) {
	switch {
	case predictor.IsNotReady(err):
		return http.StatusServiceUnavailable, "not_ready"
	case predictor.IsPredictError(err):
		return http.StatusBadRequest, predictor.ErrorCode(err)
	}
	status := http.StatusInternalServerError
	var he HTTPError
	if errors.As(err, &he) {
		status = he.StatusCode()
		if status < http.StatusInternalServerError {
			return status, he.Error()
		}
	}
	return status, codeInternal
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
