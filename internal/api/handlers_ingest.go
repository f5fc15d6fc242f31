// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"net/http"

	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/validation"
)

// respondInputError answers a request whose input failed before reaching
// the engine. Structured validation failures keep their field details.
func respondInputError(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := validation.AsRequestValidationError(err); ok {
		respondEngineError(w, r, err)
		return
	}
	badRequest(w, r, err.Error(), nil)
}

// CreateUser handles POST /api/v1/users.
func (router *Router) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInputError(w, r, err)
		return
	}

	user := req.ToModel()
	if err := router.engine.AddUser(r.Context(), user); err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, user)
}

// GetUser handles GET /api/v1/users/{id}.
func (router *Router) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	user, err := router.engine.User(id)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// CreateProduct handles POST /api/v1/products.
func (router *Router) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInputError(w, r, err)
		return
	}

	product := req.ToModel()
	if err := router.engine.AddProduct(r.Context(), product); err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, product)
}

// GetProduct handles GET /api/v1/products/{id}.
func (router *Router) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	product, err := router.engine.Product(id)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, product)
}

// CreateInteraction handles POST /api/v1/interactions.
func (router *Router) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	var in models.Interaction
	if err := decodeJSON(w, r, &in); err != nil {
		respondInputError(w, r, err)
		return
	}
	if err := router.engine.IngestInteraction(r.Context(), in); err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, map[string]int{"accepted": 1})
}

// CreateInteractions handles POST /api/v1/interactions/batch. Ingestion
// stops at the first invalid interaction; the ones before it are kept and
// counted in the error details.
func (router *Router) CreateInteractions(w http.ResponseWriter, r *http.Request) {
	var req InteractionBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInputError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondInputError(w, r, err)
		return
	}

	n, err := router.engine.IngestInteractions(r.Context(), req.Interactions)
	if err != nil {
		status, apiErr := classifyError(err)
		if apiErr.Details == nil {
			apiErr.Details = map[string]int{"accepted": n}
		}
		respondError(w, r, status, apiErr)
		return
	}
	respondJSON(w, r, http.StatusAccepted, map[string]int{"accepted": n})
}
