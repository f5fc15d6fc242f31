// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rankengine/internal/logging"
	"github.com/tomtom215/rankengine/internal/recommend"
	"github.com/tomtom215/rankengine/internal/validation"
)

// APIResponse wraps every response body.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError is the error body.
type APIError struct {
	// Code is machine-readable.
	Code string `json:"code"`

	// Message is human-readable.
	Message string `json:"message"`

	// Details carries structured context such as failed fields.
	Details any `json:"details,omitempty"`
}

// APIMeta is attached to every response.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = validation.CodeValidation
)

func newMeta(r *http.Request) *APIMeta {
	return &APIMeta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

// respondJSON writes a success envelope around data.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, &APIResponse{Success: true, Data: data, Meta: newMeta(r)})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError) {
	writeEnvelope(w, r, status, &APIResponse{Success: false, Error: apiErr, Meta: newMeta(r)})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, body *APIResponse) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to write response")
	}
}

// classifyError maps an engine error to a status code and error body.
// Internal failures get a generic message; the cause is only logged.
func classifyError(err error) (int, *APIError) {
	if verr, ok := validation.AsRequestValidationError(err); ok {
		ae := verr.ToAPIError()
		out := &APIError{Code: ae.Code, Message: ae.Message}
		if ae.Details != nil {
			out.Details = ae.Details
		}
		return http.StatusBadRequest, out
	}

	switch {
	case errors.Is(err, recommend.ErrInvalidArgument), errors.Is(err, recommend.ErrInvalidFilter):
		return http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, recommend.ErrTrainingInProgress):
		return http.StatusConflict, &APIError{Code: ErrCodeConflict, Message: "a training run is already in progress"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &APIError{Code: ErrCodeServiceUnavailable, Message: "request timed out"}
	default:
		return http.StatusInternalServerError, &APIError{Code: ErrCodeInternalError, Message: "internal server error"}
	}
}

// respondEngineError logs err and writes its classified response.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)

	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	respondError(w, r, status, apiErr)
}

// badRequest writes a 400 for malformed input found before reaching the
// engine.
func badRequest(w http.ResponseWriter, r *http.Request, message string, details any) {
	respondError(w, r, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: message, Details: details})
}
