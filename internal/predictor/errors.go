package predictor

import (
	"errors"
	"net/http"
)

// Client-facing error codes returned by Predict, in validation order.
const (
	CodeBadModelName     = "bad_model_name"
	CodeBadFeatureSet    = "bad_feature_set"
	CodeNonExistingModel = "non_existing_model"
	CodeBadModelFeatures = "bad_model_features"
	CodeLoadModel        = "load_model"
	CodeValueIsEmpty     = "value_is_empty"
	CodeValueIsNotNumber = "value_is_not_number"
	codeNotReady         = "not_ready"
)

// predictError is a request rejected by validation or model loading.
// Code is safe to show to clients; Err carries the internal cause.
type predictError struct {
	Code string
	Err  error
}

func (e *predictError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *predictError) Unwrap() error { return e.Err }

func errCode(code string, cause error) error { return &predictError{Code: code, Err: cause} }

// IsPredictError reports whether err is a client error from Predict.
func IsPredictError(err error) bool {
	var pe *predictError
	return errors.As(err, &pe) && pe.Code != codeNotReady
}

// ErrorCode returns the client-facing code of err, or "" when err is not a predict error.
func ErrorCode(err error) string {
	var pe *predictError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// ErrNotReady is returned when no catalog has been loaded.
var ErrNotReady error = &predictError{Code: codeNotReady}

// IsNotReady reports whether err means the service has no catalog yet.
func IsNotReady(err error) bool { return ErrorCode(err) == codeNotReady }

// decodeError is a label-encoded prediction that maps to no served class.
// It is a server fault: the bundle passed its load checks but predicted a
// code outside the vocabulary.
type decodeError struct {
	Code string
	Err  error
}

func (e *decodeError) Error() string { return "decode class code " + e.Code + ": " + e.Err.Error() }

func (e *decodeError) Unwrap() error { return e.Err }

// StatusCode reports decode failures as internal errors to HTTP callers.
func (e *decodeError) StatusCode() int { return http.StatusInternalServerError }
