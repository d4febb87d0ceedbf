// Package errors defines the HTTP error contract shared by every
// handler: a JSON envelope with a stable code, a human message, the
// request ID when one is present, and optional details.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/castforge/castforge/internal/server/middleware"
	"github.com/castforge/castforge/pkg/objstore"
	"github.com/castforge/castforge/pkg/podcast"
	"github.com/castforge/castforge/pkg/provider"
)

// Error codes returned in the envelope.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// HTTPError is the error object inside the envelope.
type HTTPError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the JSON body of every error response.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// WriteError sends the envelope with the given status and code.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	resp := HTTPErrorResponse{Error: HTTPError{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
		Details:   details,
	}}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// RespondWithError maps an application error to the envelope. Unknown
// errors become INTERNAL_ERROR without leaking internals.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs podcast.FieldErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]any, len(fieldErrs))
		for field, msgs := range fieldErrs {
			details[field] = msgs
		}
		WriteError(w, r, http.StatusBadRequest, CodeValidationError, "invalid input", details)
		return
	}

	if objstore.IsNotFound(err) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "resource not found", nil)
		return
	}

	var cfgErr *provider.ConfigError
	if errors.As(err, &cfgErr) {
		WriteError(w, r, http.StatusServiceUnavailable, CodeUnavailable, cfgErr.Error(), nil)
		return
	}

	WriteError(w, r, http.StatusInternalServerError, CodeInternalError, "internal server error", nil)
}

// NotFoundHandler is wired as the router's fallback route.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "route not found", nil)
	}
}

// MethodNotAllowedHandler is wired as the router's 405 handler.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil)
	}
}
