// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"cmp"
	"context"
	"slices"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/graph"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/similarity"
)

// Score component names set by the collaborative strategies.
const (
	ComponentUserSimilarity = "user_similarity"
	ComponentItemSimilarity = "item_similarity"
)

// CollaborativeConfig contains configuration for the neighborhood methods.
type CollaborativeConfig struct {
	// Depth is the hop limit for graph discovery of candidate peers.
	Depth int

	// Peers is the number of most similar users kept when none is given
	// per call.
	Peers int
}

// DefaultCollaborativeConfig returns default neighborhood configuration.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{
		Depth: 2,
		Peers: 20,
	}
}

func (c CollaborativeConfig) withDefaults() CollaborativeConfig {
	def := DefaultCollaborativeConfig()
	if c.Depth <= 0 {
		c.Depth = def.Depth
	}
	if c.Peers <= 0 {
		c.Peers = def.Peers
	}
	return c
}

// userVector builds the accumulated interaction vector of one user.
func userVector(data *catalog.Catalog, userID int64) similarity.Vector {
	return similarity.UserVector(userID, data.UserLog(userID))
}

// itemVector builds the accumulated interaction vector of one product.
func itemVector(data *catalog.Catalog, productID int64) similarity.Vector {
	return similarity.ItemVector(productID, data.ProductLog(productID))
}

// ========== User-Based Collaborative Filtering ==========

// UserBased recommends products that the most similar users engaged with.
//
// Peers are discovered through the interaction graph and ranked by cosine
// similarity of their accumulated interaction vectors:
//
//	score(u, p) = sum_{v in peers(u)} sim(u, v) * w(v, p)
//
// where w(v, p) is the current graph edge weight. Products the user already
// has an edge to are never recommended.
type UserBased struct {
	config CollaborativeConfig
	sims   *cache.Memo[cache.Pair, float64]
}

// NewUserBased creates a user-based strategy. A nil sims cache gets a
// private one.
func NewUserBased(cfg CollaborativeConfig, sims *cache.Memo[cache.Pair, float64]) *UserBased {
	if sims == nil {
		sims = cache.NewMemo[cache.Pair, float64]("user_similarity")
	}
	return &UserBased{config: cfg.withDefaults(), sims: sims}
}

// Name returns the algorithm tag.
func (u *UserBased) Name() string { return models.AlgorithmUserCF }

// Config returns the effective configuration.
func (u *UserBased) Config() CollaborativeConfig { return u.config }

// Similarity returns the cached cosine similarity of two users.
func (u *UserBased) Similarity(ctx context.Context, data *catalog.Catalog, a, b int64) (float64, error) {
	return u.sims.GetOrCompute(ctx, cache.PairOf(a, b), func() (float64, error) {
		return similarity.Cosine(userVector(data, a), userVector(data, b)), nil
	})
}

// SimilarPeers returns up to n users with positive similarity to userID,
// most similar first, ties by ascending id.
func (u *UserBased) SimilarPeers(ctx context.Context, data *catalog.Catalog, userID int64, n int) ([]similarity.Scored, error) {
	if !data.HasUser(userID) || n <= 0 {
		return nil, nil
	}

	g := data.Graph()
	candidates := g.FindSimilarUsers(userID, u.config.Depth)
	if len(candidates) < n {
		known := make(map[int64]struct{}, len(candidates))
		for _, id := range candidates {
			known[id] = struct{}{}
		}
		extra := g.ExploreNeighborhood(userID)
		slices.Sort(extra)
		for _, id := range extra {
			if _, ok := known[id]; !ok {
				candidates = append(candidates, id)
			}
		}
	}

	target := userVector(data, userID)
	scored := make([]similarity.Scored, 0, len(candidates))
	for _, peer := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !data.HasUser(peer) {
			continue
		}
		sim, err := u.sims.GetOrCompute(ctx, cache.PairOf(userID, peer), func() (float64, error) {
			return similarity.Cosine(target, userVector(data, peer)), nil
		})
		if err != nil {
			return nil, err
		}
		if sim > 0 {
			scored = append(scored, similarity.Scored{ID: peer, Score: sim})
		}
	}

	slices.SortFunc(scored, func(a, b similarity.Scored) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}

// Recommend returns the top k products weighted by peer similarity. peers
// limits the neighborhood; zero or less uses the configured default.
func (u *UserBased) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k, peers int) ([]*models.Recommendation, error) {
	if k <= 0 || !data.HasUser(userID) {
		return nil, nil
	}
	if peers <= 0 {
		peers = u.config.Peers
	}

	neighbors, err := u.SimilarPeers(ctx, data, userID, peers)
	if err != nil {
		return nil, err
	}

	g := data.Graph()
	own := g.NeighborSet(graph.UserNode(userID))
	candidates := make(map[int64]*models.Recommendation)
	contributors := make(map[int64]int)

	for _, peer := range neighbors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, productID := range g.UserProducts(peer.ID) {
			if _, done := own[productID]; done {
				continue
			}
			rec, ok := candidates[productID]
			if !ok {
				rec = models.NewRecommendation(userID, productID, 0, models.AlgorithmUserCF)
				candidates[productID] = rec
			}
			rec.Score += peer.Score * g.Weight(peer.ID, productID)
			contributors[productID]++
		}
	}

	for productID, rec := range candidates {
		rec.WithComponent(ComponentUserSimilarity, rec.Score).
			WithReason(models.ReasonSimilarUsers, "", float64(contributors[productID]))
	}
	return selectTop(candidates, k), nil
}

// ========== Item-Based Collaborative Filtering ==========

// ItemBased recommends products whose interaction vectors resemble those of
// the user's history:
//
//	score(u, c) = sum_h sim(h, c) * w(u, h) / sum_h sim(h, c)
//
// over history items h with positive similarity to c. Candidates without
// any such item are skipped.
type ItemBased struct {
	sims *cache.Memo[cache.Pair, float64]
}

// NewItemBased creates an item-based strategy. A nil sims cache gets a
// private one.
func NewItemBased(sims *cache.Memo[cache.Pair, float64]) *ItemBased {
	if sims == nil {
		sims = cache.NewMemo[cache.Pair, float64]("item_similarity")
	}
	return &ItemBased{sims: sims}
}

// Name returns the algorithm tag.
func (i *ItemBased) Name() string { return models.AlgorithmItemCF }

// Similarity returns the cached cosine similarity of two products.
func (i *ItemBased) Similarity(ctx context.Context, data *catalog.Catalog, a, b int64) (float64, error) {
	return i.sims.GetOrCompute(ctx, cache.PairOf(a, b), func() (float64, error) {
		return similarity.Cosine(itemVector(data, a), itemVector(data, b)), nil
	})
}

// Recommend returns the top k products by similarity-weighted history.
func (i *ItemBased) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 || !data.HasUser(userID) {
		return nil, nil
	}

	g := data.Graph()
	history := g.UserProducts(userID)
	if len(history) == 0 {
		return nil, nil
	}
	own := g.NeighborSet(graph.UserNode(userID))

	// Vectors are built at most once per request; the pair cache covers
	// repeated requests.
	vectors := make(map[int64]similarity.Vector)
	vectorOf := func(id int64) similarity.Vector {
		v, ok := vectors[id]
		if !ok {
			v = itemVector(data, id)
			vectors[id] = v
		}
		return v
	}

	candidates := make(map[int64]*models.Recommendation)
	for _, candidate := range g.Products() {
		if _, done := own[candidate]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var weighted, total float64
		for _, h := range history {
			sim, err := i.sims.GetOrCompute(ctx, cache.PairOf(h, candidate), func() (float64, error) {
				return similarity.Cosine(vectorOf(h), vectorOf(candidate)), nil
			})
			if err != nil {
				return nil, err
			}
			if sim > 0 {
				weighted += sim * g.Weight(userID, h)
				total += sim
			}
		}
		if total <= 0 {
			continue
		}

		score := weighted / total
		candidates[candidate] = models.NewRecommendation(userID, candidate, score, models.AlgorithmItemCF).
			WithComponent(ComponentItemSimilarity, score).
			WithReason(models.ReasonSimilarToHistory, "", total)
	}
	return selectTop(candidates, k), nil
}

// ========== Combined Collaborative Filtering ==========

// ComponentCombined is set on products both neighborhood methods agreed on.
const ComponentCombined = "combined"

// Collaborative pairs the user-based and item-based strategies.
type Collaborative struct {
	Users *UserBased
	Items *ItemBased
}

// NewCollaborative combines the two neighborhood strategies.
func NewCollaborative(users *UserBased, items *ItemBased) *Collaborative {
	return &Collaborative{Users: users, Items: items}
}

// Recommend asks each method for half of k and merges the lists. Products
// found by both get the mean of the two scores and the combined algorithm
// tag; the rest keep their own.
func (c *Collaborative) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 {
		return nil, nil
	}
	userRecs, err := c.Users.Recommend(ctx, data, userID, half(k), 0)
	if err != nil {
		return nil, err
	}
	itemRecs, err := c.Items.Recommend(ctx, data, userID, half(k))
	if err != nil {
		return nil, err
	}

	merged := make(map[int64]*models.Recommendation, len(userRecs)+len(itemRecs))
	for _, rec := range userRecs {
		merged[rec.ProductID] = rec
	}
	for _, rec := range itemRecs {
		existing, ok := merged[rec.ProductID]
		if !ok {
			merged[rec.ProductID] = rec
			continue
		}
		existing.Score = (existing.Score + rec.Score) / 2
		existing.Algorithm = models.AlgorithmCollaborative
		existing.WithComponent(ComponentItemSimilarity, rec.Score).
			WithComponent(ComponentCombined, existing.Score)
		existing.Reasons = append(existing.Reasons, rec.Reasons...)
	}
	return selectTop(merged, k), nil
}

// Signal is the collaborative input of the hybrid combiner: each method
// fills half of k and both lists pass through one selector of size k. A
// product found by both keeps the user-based entry.
func (c *Collaborative) Signal(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 {
		return nil, nil
	}
	userRecs, err := c.Users.Recommend(ctx, data, userID, half(k), 0)
	if err != nil {
		return nil, err
	}
	itemRecs, err := c.Items.Recommend(ctx, data, userID, half(k))
	if err != nil {
		return nil, err
	}
	return mergeTop(k, userRecs, itemRecs), nil
}
