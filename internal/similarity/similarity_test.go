// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/rankengine/internal/models"
)

const eps = 1e-9

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Vector
		want float64
		tol  float64
	}{
		{"known value", Vector{1: 5, 2: 3}, Vector{1: 4, 2: 5}, 35 / (math.Sqrt(34) * math.Sqrt(41)), eps},
		{"rounded", Vector{1: 5, 2: 3}, Vector{1: 4, 2: 5}, 0.938, 0.001},
		{"identical", Vector{1: 1, 2: 2}, Vector{1: 1, 2: 2}, 1, eps},
		{"disjoint", Vector{1: 1}, Vector{2: 1}, 0, eps},
		{"empty", Vector{}, Vector{1: 1}, 0, eps},
		{"zero norm", Vector{1: 0}, Vector{1: 1}, 0, eps},
		{"partial overlap uses full norms", Vector{1: 1, 2: 1}, Vector{1: 1}, 1 / math.Sqrt2, eps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Cosine(tt.a, tt.b); !approx(got, tt.want, tt.tol) {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
			if got := Cosine(tt.b, tt.a); !approx(got, tt.want, tt.tol) {
				t.Errorf("Cosine() not symmetric: %v", got)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	set := func(xs ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(xs))
		for _, x := range xs {
			m[x] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name string
		a, b map[string]struct{}
		want float64
	}{
		{"both empty", set(), set(), 1},
		{"one empty", set("a"), set(), 0},
		{"other empty", set(), set("a"), 0},
		{"half", set("a", "b"), set("b", "c"), 1.0 / 3.0},
		{"equal", set("a", "b"), set("a", "b"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Jaccard(tt.a, tt.b); !approx(got, tt.want, eps) {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
			if Jaccard(tt.a, tt.b) != Jaccard(tt.b, tt.a) {
				t.Error("Jaccard not symmetric")
			}
		})
	}
}

func TestPearson(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"perfect positive", Vector{1: 1, 2: 2, 3: 3}, Vector{1: 2, 2: 4, 3: 6}, 1},
		{"perfect negative", Vector{1: 1, 2: 2, 3: 3}, Vector{1: 3, 2: 2, 3: 1}, -1},
		{"one shared key", Vector{1: 1, 2: 2}, Vector{1: 1, 3: 2}, 0},
		{"zero variance", Vector{1: 2, 2: 2}, Vector{1: 1, 2: 5}, 0},
		{"ignores unshared keys", Vector{1: 1, 2: 2, 9: 100}, Vector{1: 1, 2: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Pearson(tt.a, tt.b); !approx(got, tt.want, eps) {
				t.Errorf("Pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContent(t *testing.T) {
	t.Parallel()

	laptop := &models.Product{Category: "Laptops", Brand: "Acme", Price: 1000, Tags: []string{"thin", "light"}}

	tests := []struct {
		name string
		b    *models.Product
		want float64
	}{
		{
			"identical attributes",
			&models.Product{Category: "laptops", Brand: "ACME", Price: 1000, Tags: []string{"light", "thin"}},
			1,
		},
		{
			"category only, no tags",
			&models.Product{Category: "Laptops", Brand: "Other", Price: 1000},
			// (0.4 + 0.2) / 0.9
			0.6 / 0.9,
		},
		{
			"no price on one side",
			&models.Product{Category: "Laptops", Brand: "Acme", Tags: []string{"thin", "light"}},
			// (0.4 + 0.3 + 0.1) / 0.8
			1,
		},
		{
			"price proximity",
			&models.Product{Category: "Phones", Brand: "Other", Price: 3000},
			// price sim = max(0, 1 - 2000/2000) = 0
			0,
		},
		{
			"half price distance",
			&models.Product{Category: "Phones", Brand: "Other", Price: 600, Tags: []string{"thin"}},
			// price: 1 - 400/800 = 0.5; tags 1/2 -> (0.1 + 0.05) / 1.0
			0.15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Content(laptop, tt.b); !approx(got, tt.want, eps) {
				t.Errorf("Content() = %v, want %v", got, tt.want)
			}
		})
	}

	if Content(nil, laptop) != 0 {
		t.Error("Content(nil, p) should be 0")
	}
}

func TestVectorsAccumulate(t *testing.T) {
	t.Parallel()

	log := []models.Interaction{
		{UserID: 1, ProductID: 10, Type: models.InteractionView},
		{UserID: 1, ProductID: 10, Type: models.InteractionPurchase},
		{UserID: 1, ProductID: 11, Type: models.InteractionRating, Value: 4},
		{UserID: 2, ProductID: 10, Type: models.InteractionWishlist},
	}

	uv := UserVector(1, log)
	if uv[10] != 6 || uv[11] != 4 || len(uv) != 2 {
		t.Errorf("UserVector(1) = %v, want {10:6 11:4}", uv)
	}
	iv := ItemVector(10, log)
	if iv[1] != 6 || iv[2] != 2 {
		t.Errorf("ItemVector(10) = %v, want {1:6 2:2}", iv)
	}

	all := UserVectors(log)
	if all[1][10] != 6 || all[2][10] != 2 {
		t.Errorf("UserVectors = %v", all)
	}
	items := ItemVectors(log)
	if items[10][1] != 6 || items[11][1] != 4 {
		t.Errorf("ItemVectors = %v", items)
	}
}

func TestTemporal(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := []models.Interaction{{Timestamp: base}}
	b := []models.Interaction{{Timestamp: base.Add(168 * time.Hour)}}

	if got := Temporal(a, a); got != 1 {
		t.Errorf("same time = %v, want 1", got)
	}
	if got := Temporal(a, b); !approx(got, math.Exp(-1), eps) {
		t.Errorf("one week = %v, want e^-1", got)
	}
	if Temporal(nil, b) != 0 {
		t.Error("empty history should score 0")
	}
}

func TestWeighted(t *testing.T) {
	t.Parallel()

	got := Weighted(
		map[string]float64{"cosine": 1, "jaccard": 0},
		map[string]float64{"cosine": 3},
	)
	// (1*3 + 0*1) / 4
	if !approx(got, 0.75, eps) {
		t.Errorf("Weighted() = %v, want 0.75", got)
	}
	if Weighted(nil, nil) != 0 {
		t.Error("empty Weighted should be 0")
	}
}

func TestMostSimilar(t *testing.T) {
	t.Parallel()

	vectors := map[int64]Vector{
		1: {10: 1, 11: 1},
		2: {10: 1, 11: 1},
		3: {10: 1, 11: 1},
		4: {12: 1},
	}
	got := MostSimilar(1, vectors, 2)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("MostSimilar = %+v, want ids [2 3]", got)
	}
	if MostSimilar(99, vectors, 2) != nil {
		t.Error("unknown target should return nil")
	}
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	if Clamp01(-1) != 0 || Clamp01(2) != 1 || Clamp01(0.4) != 0.4 {
		t.Error("Clamp01 mismatch")
	}
}
