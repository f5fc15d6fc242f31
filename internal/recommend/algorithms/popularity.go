// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"
	"math"

	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/models"
)

// ComponentPopularity is the score component set by the popularity baseline.
const ComponentPopularity = "popularity"

// popularityScale maps a product's popularity score into [0, 1].
const popularityScale = 1000.0

// Popularity is the non-personalized baseline. It serves users without
// history and backfills the other strategies.
//
// Candidates are the products with the most interacting users (graph
// degree, ties by ascending id). Each is scored
//
//	min(1, popularityScore / 1000)
//
// and returned in degree order, so the ranking reflects reach while the
// score reflects engagement depth.
type Popularity struct{}

// NewPopularity creates the popularity baseline.
func NewPopularity() *Popularity {
	return &Popularity{}
}

// Name returns the algorithm tag.
func (p *Popularity) Name() string { return models.AlgorithmPopularity }

// Recommend returns up to k popular products the user has not viewed or
// purchased. A user without a record is served anonymously, with no
// exclusions.
func (p *Popularity) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var seen models.IDSet
	if user, ok := data.User(userID); ok {
		seen = user.Seen()
	}

	out := make([]*models.Recommendation, 0, k)
	for _, productID := range data.Graph().MostPopular(k * 2) {
		if seen.Has(productID) {
			continue
		}
		product, ok := data.Product(productID)
		if !ok {
			continue
		}
		score := math.Min(1, product.PopularityScore()/popularityScale)
		out = append(out, models.NewRecommendation(userID, productID, score, models.AlgorithmPopularity).
			WithComponent(ComponentPopularity, score).
			WithReason(models.ReasonPopular, "", score))
		if len(out) >= k {
			break
		}
	}
	return out, nil
}
