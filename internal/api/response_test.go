// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/rankengine/internal/logging"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend"
	"github.com/tomtom215/rankengine/internal/validation"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	verr := validation.Validate(&models.Interaction{})
	if verr == nil {
		t.Fatal("zero interaction should fail validation")
	}

	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		genericM bool
	}{
		{"validation", verr, http.StatusBadRequest, ErrCodeValidationFailed, false},
		{"wrapped validation", fmt.Errorf("%w: %w", recommend.ErrInvalidArgument, verr), http.StatusBadRequest, ErrCodeValidationFailed, false},
		{"invalid argument", fmt.Errorf("%w: k must be non-negative", recommend.ErrInvalidArgument), http.StatusBadRequest, ErrCodeBadRequest, false},
		{"invalid filter", fmt.Errorf("%w: syntax", recommend.ErrInvalidFilter), http.StatusBadRequest, ErrCodeBadRequest, false},
		{"not found", fmt.Errorf("%w: user 9", recommend.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, false},
		{"training", recommend.ErrTrainingInProgress, http.StatusConflict, ErrCodeConflict, false},
		{"deadline", fmt.Errorf("score: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, ErrCodeServiceUnavailable, false},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, apiErr := classifyError(tt.err)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.code)
			}
			if tt.genericM && apiErr.Message != "internal server error" {
				t.Errorf("internal message leaked: %q", apiErr.Message)
			}
		})
	}
}

func TestRespondJSON_Envelope(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(logging.ContextWithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	respondJSON(rec, req, http.StatusCreated, map[string]int{"n": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Error != nil {
		t.Errorf("envelope = %+v", env)
	}
	if env.Meta == nil || env.Meta.RequestID != "req-1" || env.Meta.Timestamp.IsZero() {
		t.Errorf("meta = %+v", env.Meta)
	}
	var data map[string]int
	decodeData(t, env, &data)
	if data["n"] != 1 {
		t.Errorf("data = %v", data)
	}
}

func TestRespondError_OmitsEmptyDetails(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	respondEngineError(rec, req, fmt.Errorf("%w: product 4", recommend.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Error.Details != nil {
		t.Errorf("details = %v, want omitted", env.Error.Details)
	}
	if len(env.Data) != 0 {
		t.Errorf("data = %s, want omitted", env.Data)
	}
}
