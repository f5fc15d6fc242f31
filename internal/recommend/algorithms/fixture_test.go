// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"math"
	"slices"
	"testing"

	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/models"
)

const tol = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

// newFixture builds a small catalog:
//
//	user 1: view 10, purchase 11
//	user 2: view 10, purchase 11, view 12
//	user 3: view 20, view 21
//	user 4: no history
func newFixture(t *testing.T) *catalog.Catalog {
	t.Helper()

	c := catalog.New()
	for id := int64(1); id <= 4; id++ {
		c.AddUser(models.NewUser(id, "user", ""))
	}
	products := []*models.Product{
		{ID: 10, Name: "Laptop", Category: "Electronics", Brand: "Acme", Price: 1200, Rating: 4.5, Tags: []string{"thin", "light"}},
		{ID: 11, Name: "Mouse", Category: "Electronics", Brand: "Acme", Price: 25, Tags: []string{"wireless"}},
		{ID: 12, Name: "Keyboard", Category: "Electronics", Brand: "Zeta", Price: 80, Tags: []string{"wireless"}},
		{ID: 20, Name: "Novel", Category: "Books", Brand: "Pub", Price: 15, Tags: []string{"fiction"}},
		{ID: 21, Name: "Cookbook", Category: "Books", Brand: "Pub", Price: 30, Tags: []string{"food"}},
	}
	for _, p := range products {
		c.AddProduct(p)
	}

	log := []models.Interaction{
		{UserID: 1, ProductID: 10, Type: models.InteractionView},
		{UserID: 1, ProductID: 11, Type: models.InteractionPurchase},
		{UserID: 2, ProductID: 10, Type: models.InteractionView},
		{UserID: 2, ProductID: 11, Type: models.InteractionPurchase},
		{UserID: 2, ProductID: 12, Type: models.InteractionView},
		{UserID: 3, ProductID: 20, Type: models.InteractionView},
		{UserID: 3, ProductID: 21, Type: models.InteractionView},
	}
	for _, in := range log {
		c.Ingest(in)
	}
	return c
}

func assertIDs(t *testing.T, recs []*models.Recommendation, want []int64) {
	t.Helper()
	if got := models.ProductIDs(recs); !slices.Equal(got, want) {
		t.Errorf("product ids = %v, want %v", got, want)
	}
}

func assertSorted(t *testing.T, recs []*models.Recommendation) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		if models.Less(recs[i].Score, recs[i].ProductID, recs[i-1].Score, recs[i-1].ProductID) {
			t.Errorf("results not ordered at %d: %v before %v", i, recs[i-1].Score, recs[i].Score)
		}
	}
}
