// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/tomtom215/rankengine/internal/graph"
	"github.com/tomtom215/rankengine/internal/similarity"
)

// Graph exploration limits.
const (
	influentialUsers = 10
	neighborhoodHops = 2
	walkLength       = 6
	walkCount        = 200
	walkTop          = 10

	// walkSeed is mixed with the user id so a user's walk is reproducible.
	walkSeed = 0x9e3779b97f4a7c15
)

// peerBlend weighs behavioral against recency similarity in PeerAffinities.
var peerBlend = map[string]float64{"behavior": 0.8, "recency": 0.2}

// PathStep is one node of a user-product path.
type PathStep struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// ProductShare is a product with its share of random walk visits.
type ProductShare struct {
	ProductID int64   `json:"product_id"`
	Share     float64 `json:"share"`
}

// Neighborhood describes a user's position in the interaction graph.
type Neighborhood struct {
	UserID int64 `json:"user_id"`
	// Products are one hop away, Peers two hops.
	Products              []int64 `json:"products"`
	Peers                 []int64 `json:"peers"`
	ClusteringCoefficient float64 `json:"clustering_coefficient"`
	// Reachable lists the products a seeded random walk from the user visits
	// most, best first.
	Reachable []ProductShare `json:"reachable"`
}

// PeerAffinity scores another user against a target user.
type PeerAffinity struct {
	UserID   int64   `json:"user_id"`
	Score    float64 `json:"score"`
	Behavior float64 `json:"behavior"`
	Recency  float64 `json:"recency"`
}

// Neighborhood returns the graph neighborhood of a user. Unknown users
// yield ErrNotFound.
func (e *Engine) Neighborhood(userID int64) (*Neighborhood, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	g := e.data.Graph()
	start := graph.UserNode(userID)
	if !g.HasNode(start) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	n := &Neighborhood{
		UserID:                userID,
		Products:              []int64{},
		Peers:                 []int64{},
		ClusteringCoefficient: g.ClusteringCoefficient(userID),
		Reachable:             []ProductShare{},
	}
	for _, id := range g.KHopNeighbors(start, neighborhoodHops) {
		if id.Kind == graph.KindProduct {
			n.Products = append(n.Products, id.ID)
		} else {
			n.Peers = append(n.Peers, id.ID)
		}
	}

	rng := rand.New(rand.NewPCG(uint64(userID), walkSeed)) //nolint:gosec // exploration, not security
	for productID, share := range g.RandomWalk(userID, walkLength, walkCount, rng) {
		n.Reachable = append(n.Reachable, ProductShare{ProductID: productID, Share: share})
	}
	slices.SortFunc(n.Reachable, func(a, b ProductShare) int {
		if a.Share != b.Share {
			return cmp.Compare(b.Share, a.Share)
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(n.Reachable) > walkTop {
		n.Reachable = n.Reachable[:walkTop]
	}
	return n, nil
}

// ShortestPath returns the alternating user-product path linking a user to
// a product, both ends included. Unknown endpoints and unreachable products
// yield ErrNotFound.
func (e *Engine) ShortestPath(userID, productID int64) ([]PathStep, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	g := e.data.Graph()
	switch {
	case !g.HasNode(graph.UserNode(userID)):
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	case !g.HasNode(graph.ProductNode(productID)):
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	nodes := g.ShortestPath(userID, productID)
	if nodes == nil {
		return nil, fmt.Errorf("%w: no path from user %d to product %d", ErrNotFound, userID, productID)
	}
	steps := make([]PathStep, len(nodes))
	for i, n := range nodes {
		steps[i] = PathStep{Kind: n.Kind.String(), ID: n.ID}
	}
	return steps, nil
}

// Communities returns the connected components of the interaction graph as
// sorted user id groups.
func (e *Engine) Communities() [][]int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	comps := e.data.Graph().ConnectedComponents()
	if comps == nil {
		return [][]int64{}
	}
	return comps
}

// PeerAffinities ranks up to k other users by a blend of interaction vector
// cosine and how recently both were active. Users without positive cosine
// are skipped; ties order by ascending id.
func (e *Engine) PeerAffinities(userID int64, k int) ([]PeerAffinity, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative, got %d", ErrInvalidArgument, k)
	}
	k = e.clampK(k)

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.data.Graph().HasNode(graph.UserNode(userID)) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	vectors := similarity.UserVectors(e.data.Log())
	own := e.data.UserLog(userID)

	out := []PeerAffinity{}
	for _, c := range similarity.MostSimilar(userID, vectors, len(vectors)) {
		if c.Score <= 0 {
			break
		}
		recency := similarity.Temporal(own, e.data.UserLog(c.ID))
		out = append(out, PeerAffinity{
			UserID:   c.ID,
			Score:    similarity.Weighted(map[string]float64{"behavior": c.Score, "recency": recency}, peerBlend),
			Behavior: c.Score,
			Recency:  recency,
		})
	}
	slices.SortFunc(out, func(a, b PeerAffinity) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
