// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"net/http"

	"github.com/tomtom215/rankengine/internal/recommend"
)

// pathResponse is the body of the path route.
type pathResponse struct {
	Steps []recommend.PathStep `json:"steps"`
	Hops  int                  `json:"hops"`
}

// communitiesResponse is the body of the communities route.
type communitiesResponse struct {
	Communities [][]int64 `json:"communities"`
	Count       int       `json:"count"`
}

// peersResponse is the body of the peers route.
type peersResponse struct {
	Items []recommend.PeerAffinity `json:"items"`
	Count int                      `json:"count"`
}

// Neighborhood handles GET /api/v1/graph/users/{id}.
func (router *Router) Neighborhood(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	n, err := router.engine.Neighborhood(userID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, n)
}

// ShortestPath handles GET /api/v1/graph/users/{id}/path/{product}.
// Unreachable products are reported as 404.
func (router *Router) ShortestPath(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	productID, err := idParam(r, "product")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	steps, err := router.engine.ShortestPath(userID, productID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, pathResponse{Steps: steps, Hops: len(steps) - 1})
}

// Communities handles GET /api/v1/graph/communities.
func (router *Router) Communities(w http.ResponseWriter, r *http.Request) {
	comps := router.engine.Communities()
	respondJSON(w, r, http.StatusOK, communitiesResponse{Communities: comps, Count: len(comps)})
}

// Peers handles GET /api/v1/users/{id}/peers.
func (router *Router) Peers(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	k, err := kQuery(r)
	if err != nil {
		respondInputError(w, r, err)
		return
	}
	peers, err := router.engine.PeerAffinities(userID, k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, peersResponse{Items: peers, Count: len(peers)})
}
