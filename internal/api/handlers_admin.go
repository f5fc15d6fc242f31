// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/rankengine/internal/logging"
	"github.com/tomtom215/rankengine/internal/recommend"
)

// Health handles GET /healthz.
func (router *Router) Health(w http.ResponseWriter, r *http.Request) {
	stats := router.engine.Stats()
	respondJSON(w, r, http.StatusOK, map[string]any{
		"status":        "ok",
		"users":         stats.Users,
		"products":      stats.Products,
		"interactions":  stats.Interactions,
		"model_trained": stats.Training.Trained,
	})
}

// GetWeights handles GET /api/v1/weights.
func (router *Router) GetWeights(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, router.engine.Weights())
}

// PutWeights handles PUT /api/v1/weights. The stored weights are the
// request's normalized to sum 1.
func (router *Router) PutWeights(w http.ResponseWriter, r *http.Request) {
	var req WeightsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondInputError(w, r, err)
		return
	}
	weights, err := router.engine.SetWeights(req.Collaborative, req.Content, req.Popularity, req.Trending)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, weights)
}

// Stats handles GET /api/v1/stats.
func (router *Router) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, router.engine.Stats())
}

// Train handles POST /api/v1/admin/train.
//
// By default the run starts in the background and the handler answers 202.
// With ?wait=true the handler blocks until the run ends and answers 200
// with the new model status. Either way a run already in progress is a 409.
func (router *Router) Train(w http.ResponseWriter, r *http.Request) {
	wait, err := boolQuery(r, "wait")
	if err != nil {
		respondInputError(w, r, err)
		return
	}

	if wait {
		if err := router.engine.Train(r.Context()); err != nil {
			respondEngineError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, router.engine.TrainingStatus())
		return
	}

	if router.engine.TrainingStatus().Training {
		respondEngineError(w, r, recommend.ErrTrainingInProgress)
		return
	}

	logger := logging.Ctx(r.Context()).With().Logger()
	go func() {
		err := router.engine.Train(router.baseCtx)
		switch {
		case errors.Is(err, recommend.ErrTrainingInProgress):
			logger.Debug().Msg("training already in progress")
		case err != nil:
			logger.Error().Err(err).Msg("background training failed")
		}
	}()

	respondJSON(w, r, http.StatusAccepted, map[string]string{"status": "training started"})
}

// ClearCaches handles POST /api/v1/admin/cache/clear.
func (router *Router) ClearCaches(w http.ResponseWriter, r *http.Request) {
	router.engine.ClearCaches()
	logging.Ctx(r.Context()).Info().Msg("caches cleared")
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}
