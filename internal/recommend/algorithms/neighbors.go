// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"

	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/graph"
	"github.com/tomtom215/rankengine/internal/models"
)

// Graph neighbor limits.
const (
	neighborDepth = 2
	neighborPeers = 10
)

// GraphNeighbors recommends what the nearest users in the interaction graph
// engaged with. Unlike UserBased it needs no interaction vectors: peers are
// the first users a two-hop breadth-first search reaches, and each is
// weighted by the Jaccard overlap of product sets:
//
//	score(u, p) = sum_{v in peers(u)} jaccard(u, v) * w(v, p)
//
// A user without peers is served the popularity baseline.
type GraphNeighbors struct {
	fallback *Popularity
}

// NewGraphNeighbors creates the strategy. A nil fallback gets a fresh
// popularity baseline.
func NewGraphNeighbors(fallback *Popularity) *GraphNeighbors {
	if fallback == nil {
		fallback = NewPopularity()
	}
	return &GraphNeighbors{fallback: fallback}
}

// Name returns the algorithm tag.
func (n *GraphNeighbors) Name() string { return models.AlgorithmSimilarUsers }

// Recommend returns up to k products. Products the user already has an
// edge to are skipped.
func (n *GraphNeighbors) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 || !data.HasUser(userID) {
		return nil, nil
	}

	g := data.Graph()
	peers := g.FindSimilarUsers(userID, neighborDepth)
	if len(peers) == 0 {
		return n.fallback.Recommend(ctx, data, userID, k)
	}
	if len(peers) > neighborPeers {
		peers = peers[:neighborPeers]
	}

	own := g.NeighborSet(graph.UserNode(userID))
	candidates := make(map[int64]*models.Recommendation)
	for _, peer := range peers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sim := g.GraphSimilarity(userID, peer)
		for _, productID := range g.UserProducts(peer) {
			if _, done := own[productID]; done {
				continue
			}
			rec, ok := candidates[productID]
			if !ok {
				rec = models.NewRecommendation(userID, productID, 0, models.AlgorithmSimilarUsers)
				candidates[productID] = rec
			}
			rec.Score += sim * g.Weight(peer, productID)
		}
	}

	for _, rec := range candidates {
		rec.WithComponent(ComponentUserSimilarity, rec.Score).
			WithReason(models.ReasonSimilarUsers, "", rec.Score)
	}
	return selectTop(candidates, k), nil
}
