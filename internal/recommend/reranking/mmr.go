// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package reranking

import (
	"context"
	"math"
	"strings"

	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/similarity"
)

// DefaultLambda is the MMR relevance weight used when none is configured.
const DefaultLambda = 0.7

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lookup ProductLookup

	// lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1].
func NewMMR(lookup ProductLookup, lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lookup: lookup, lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string { return NameMMR }

// Lambda returns the relevance weight.
func (m *MMR) Lambda() float64 { return m.lambda }

// Rerank applies greedy MMR selection.
func (m *MMR) Rerank(ctx context.Context, candidates []*models.Recommendation, k int) []*models.Recommendation {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	k = boundK(k, len(candidates))

	if m.lambda >= 1.0 {
		return append([]*models.Recommendation(nil), candidates[:k]...)
	}

	features := make([]map[string]struct{}, len(candidates))
	for i, rec := range candidates {
		features[i] = m.featureSet(rec.ProductID)
	}

	selected := make([]*models.Recommendation, 0, k)
	selectedIdx := make([]int, 0, k)
	used := make([]bool, len(candidates))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}
		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i, rec := range candidates {
			if used[i] {
				continue
			}
			maxSim := 0.0
			for _, j := range selectedIdx {
				if len(features[i]) == 0 || len(features[j]) == 0 {
					continue
				}
				if sim := similarity.Jaccard(features[i], features[j]); sim > maxSim {
					maxSim = sim
				}
			}

			score := m.lambda*rec.Score - (1-m.lambda)*maxSim
			if score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		used[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
		selected = append(selected, candidates[bestIdx])
	}
	return selected
}

// featureSet returns the prefixed category, brand and tag features of a
// product. Unknown products have no features and count as dissimilar to
// everything.
func (m *MMR) featureSet(productID int64) map[string]struct{} {
	p, ok := m.lookup(productID)
	if !ok {
		return nil
	}
	set := p.TagSet()
	out := make(map[string]struct{}, len(set)+2)
	for t := range set {
		out["tag:"+t] = struct{}{}
	}
	if c := strings.ToLower(strings.TrimSpace(p.Category)); c != "" {
		out["category:"+c] = struct{}{}
	}
	if b := strings.ToLower(strings.TrimSpace(p.Brand)); b != "" {
		out["brand:"+b] = struct{}{}
	}
	return out
}

var _ Reranker = (*MMR)(nil)
