// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package reranking

import (
	"slices"
	"testing"

	"github.com/tomtom215/rankengine/internal/models"
)

func lookupOf(products ...*models.Product) ProductLookup {
	byID := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return func(id int64) (*models.Product, bool) {
		p, ok := byID[id]
		return p, ok
	}
}

func product(id int64, category, brand string, tags ...string) *models.Product {
	return &models.Product{ID: id, Name: "p", Category: category, Brand: brand, Tags: tags}
}

// ranked builds candidates with descending scores in argument order.
func ranked(ids ...int64) []*models.Recommendation {
	out := make([]*models.Recommendation, len(ids))
	for i, id := range ids {
		out[i] = models.NewRecommendation(1, id, 1-float64(i)/10, models.AlgorithmHybrid)
	}
	return out
}

func assertIDs(t *testing.T, recs []*models.Recommendation, want []int64) {
	t.Helper()
	if got := models.ProductIDs(recs); !slices.Equal(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}
