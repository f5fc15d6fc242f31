// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package reranking

import (
	"context"
	"strings"

	"github.com/tomtom215/rankengine/internal/models"
)

// OverFetch is the candidate multiplier callers use before diversifying.
const OverFetch = 3

// CategoryCaps limits how many admitted items may share a category or a
// brand, then backfills by score.
type CategoryCaps struct {
	lookup ProductLookup
}

// NewCategoryCaps creates the cap-based diversifier.
func NewCategoryCaps(lookup ProductLookup) *CategoryCaps {
	return &CategoryCaps{lookup: lookup}
}

// Name returns the reranker identifier.
func (c *CategoryCaps) Name() string { return NameCategoryCaps }

// Caps returns the per-category and per-brand limits for k.
func Caps(k int) (category, brand int) {
	return max(1, k/3), max(1, k/2)
}

// Rerank applies the caps. Candidates whose product is unknown are only
// eligible for backfill.
func (c *CategoryCaps) Rerank(ctx context.Context, candidates []*models.Recommendation, k int) []*models.Recommendation {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	k = boundK(k, len(candidates))
	categoryCap, brandCap := Caps(k)

	out := make([]*models.Recommendation, 0, k)
	taken := make(map[int64]struct{}, k)
	categories := make(map[string]int)
	brands := make(map[string]int)

	for _, rec := range candidates {
		if len(out) >= k || ctx.Err() != nil {
			break
		}
		if _, dup := taken[rec.ProductID]; dup {
			continue
		}
		p, ok := c.lookup(rec.ProductID)
		if !ok {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(p.Category))
		brand := strings.ToLower(strings.TrimSpace(p.Brand))

		if category != "" && categories[category] >= categoryCap {
			continue
		}
		if brand != "" && brands[brand] >= brandCap {
			continue
		}

		if category != "" {
			categories[category]++
		}
		if brand != "" {
			brands[brand]++
		}
		taken[rec.ProductID] = struct{}{}
		out = append(out, rec.WithReason(models.ReasonDiverse, category, 0))
	}

	// Backfill
	for _, rec := range candidates {
		if len(out) >= k {
			break
		}
		if _, ok := taken[rec.ProductID]; ok {
			continue
		}
		taken[rec.ProductID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

var _ Reranker = (*CategoryCaps)(nil)
