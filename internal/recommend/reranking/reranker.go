// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package reranking

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/rankengine/internal/models"
)

// Reranker identifiers accepted by New.
const (
	NameCategoryCaps = "caps"
	NameMMR          = "mmr"
)

// maxRerankSize bounds allocations driven by k.
const maxRerankSize = 10000

// ProductLookup resolves a product id to its catalog record.
type ProductLookup func(id int64) (*models.Product, bool)

// Reranker chooses the final k entries from a score-ordered candidate list.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank returns at most k entries. Candidates are not modified except
	// for reasons added to selected entries.
	Rerank(ctx context.Context, candidates []*models.Recommendation, k int) []*models.Recommendation
}

// New returns the reranker registered under name. lambda is used by MMR only.
func New(name string, lookup ProductLookup, lambda float64) (Reranker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameCategoryCaps:
		return NewCategoryCaps(lookup), nil
	case NameMMR:
		return NewMMR(lookup, lambda), nil
	default:
		return nil, fmt.Errorf("unknown reranker %q", name)
	}
}

func boundK(k, n int) int {
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > n {
		k = n
	}
	return k
}
