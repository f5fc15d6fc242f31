// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/rankengine/internal/logging"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend"
)

// listResponse is the body of the list routes.
type listResponse struct {
	Items []*models.Recommendation `json:"items"`
	Count int                      `json:"count"`
}

func newListResponse(items []*models.Recommendation) listResponse {
	if items == nil {
		items = []*models.Recommendation{}
	}
	return listResponse{Items: items, Count: len(items)}
}

// Recommendations handles GET /api/v1/users/{id}/recommendations.
//
// Query parameters: k, strategy, filter (CEL), diversify and exclude (a
// comma-separated product id list). An unknown user gets an empty list.
func (router *Router) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	q, err := parseRecommendQuery(r)
	if err != nil {
		respondInputError(w, r, err)
		return
	}

	resp, err := router.engine.Recommend(r.Context(), recommend.Request{
		UserID:    userID,
		K:         q.K,
		Strategy:  recommend.Strategy(q.Strategy),
		Filter:    q.Filter,
		Diversify: q.Diversify,
		Exclude:   q.Exclude,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// Popular handles GET /api/v1/products/popular.
func (router *Router) Popular(w http.ResponseWriter, r *http.Request) {
	k, err := kQuery(r)
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	recs, err := router.engine.Popular(r.Context(), 0, k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newListResponse(recs))
}

// TrendingInCategory handles GET /api/v1/categories/{category}/trending.
func (router *Router) TrendingInCategory(w http.ResponseWriter, r *http.Request) {
	k, err := kQuery(r)
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	recs, err := router.engine.TrendingInCategory(r.Context(), chi.URLParam(r, "category"), k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newListResponse(recs))
}
