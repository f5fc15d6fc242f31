// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"
	"testing"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/models"
)

func TestPriceBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price float64
		want  string
	}{
		{0, BucketBudget},
		{499.99, BucketBudget},
		{500, BucketLow},
		{1499, BucketLow},
		{1500, BucketMid},
		{3000, BucketHigh},
		{4999, BucketHigh},
		{5000, BucketPremium},
	}
	for _, tt := range tests {
		if got := PriceBucket(tt.price); got != tt.want {
			t.Errorf("PriceBucket(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestProfileFor(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	profiles := cache.NewMemo[cache.ID, Profile]("test_profiles")
	c := NewContentBased(ContentConfig{}, profiles)

	p, err := c.ProfileFor(context.Background(), data, 1)
	if err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}

	// Total weight 6: view 10 (1) + purchase 11 (5).
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"category electronics", p.Categories["electronics"], 0.4},
		{"brand acme", p.Brands["acme"], 0.25},
		{"bucket low", p.PriceBuckets[BucketLow], 1.0 / 6 * 0.2},
		{"bucket budget", p.PriceBuckets[BucketBudget], 5.0 / 6 * 0.2},
		{"tag thin", p.Tags["thin"], 1.0 / 6 * 0.15},
		{"tag wireless", p.Tags["wireless"], 5.0 / 6 * 0.15},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if profiles.Len() != 1 {
		t.Errorf("profiles cached = %d, want 1", profiles.Len())
	}

	// The returned profile is a copy.
	p.Categories["electronics"] = 99
	again, _ := c.ProfileFor(context.Background(), data, 1)
	if again.Categories["electronics"] != 0.4 {
		t.Error("ProfileFor must return a copy")
	}

	empty, _ := c.ProfileFor(context.Background(), data, 99)
	if !empty.Empty() || profiles.Len() != 1 {
		t.Error("unknown user should give an uncached empty profile")
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	profile := newProfile()
	profile.Categories["electronics"] = 0.3
	profile.Brands["acme"] = 0.05
	profile.PriceBuckets[BucketBudget] = 0.1
	profile.Tags["wireless"] = 0.1

	tests := []struct {
		name        string
		product     *models.Product
		want        float64
		wantReasons []models.ReasonCode
	}{
		{
			"full match",
			&models.Product{Category: "Electronics", Brand: "ACME", Price: 10, Tags: []string{"Wireless"}},
			0.55,
			[]models.ReasonCode{models.ReasonCategoryMatch},
		},
		{
			"bonuses",
			&models.Product{Category: "Books", Price: 10, Rating: 4.5, ViewCount: 101},
			0.1 + 0.1 + 0.05,
			[]models.ReasonCode{models.ReasonHighlyRated},
		},
		{
			"no match",
			&models.Product{Category: "Books", Price: 9000},
			0,
			nil,
		},
		{
			"clamped",
			&models.Product{Category: "Electronics", Brand: "Acme", Price: 1, Tags: []string{"wireless"}, Rating: 5, ViewCount: 1000},
			0.55 + 0.15,
			[]models.ReasonCode{models.ReasonCategoryMatch, models.ReasonHighlyRated},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, reasons := Score(profile, tt.product)
			if !approx(got, tt.want) {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
			if len(reasons) != len(tt.wantReasons) {
				t.Fatalf("reasons = %v, want %v", reasons, tt.wantReasons)
			}
			for i, r := range reasons {
				if r.Code != tt.wantReasons[i] {
					t.Errorf("reason %d = %s, want %s", i, r.Code, tt.wantReasons[i])
				}
			}
		})
	}

	strong := newProfile()
	strong.Categories["electronics"] = 0.9
	strong.PriceBuckets[BucketBudget] = 0.9
	if got, _ := Score(strong, &models.Product{Category: "electronics", Price: 1}); got != 1 {
		t.Errorf("Score() = %v, want clamp to 1", got)
	}
}

func TestContentRecommend(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	c := NewContentBased(DefaultContentConfig(), nil)

	recs, err := c.Recommend(context.Background(), data, 1, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// 12: category 0.4 + budget 5/6*0.2 + wireless 5/6*0.15.
	// 20 and 21: budget only, tie broken by id.
	assertIDs(t, recs, []int64{12, 20, 21})
	want12 := 0.4 + 5.0/6*0.2 + 5.0/6*0.15
	if !approx(recs[0].Score, want12) {
		t.Errorf("score(12) = %v, want %v", recs[0].Score, want12)
	}
	if !recs[0].HasReason(models.ReasonCategoryMatch) {
		t.Error("12 should explain the category match")
	}
	if !recs[1].HasReason(models.ReasonProfileMatch) {
		t.Error("weak matches should carry a profile_match reason")
	}

	for _, id := range []int64{4, 99} {
		if recs, _ := c.Recommend(context.Background(), data, id, 10); len(recs) != 0 {
			t.Errorf("Recommend(%d) = %v, want empty", id, models.ProductIDs(recs))
		}
	}
}

func TestContentTrending(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	c := NewContentBased(DefaultContentConfig(), nil)

	recs, err := c.Trending(context.Background(), data, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Only electronics clears the preference bar; 10 and 11 were viewed.
	assertIDs(t, recs, []int64{12})
	// popularity of 12 is one view * 0.1, preference 0.4.
	if !approx(recs[0].Score, 0.04) {
		t.Errorf("score = %v, want 0.04", recs[0].Score)
	}
	if recs[0].Components[ComponentCategoryPreference] != 0.4 {
		t.Errorf("components = %v", recs[0].Components)
	}
}

func TestSimilarProducts(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	c := NewContentBased(DefaultContentConfig(), nil)

	recs, err := c.SimilarProducts(context.Background(), data, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	// 12 vs 11: category 0.4 + shared tag 0.1 = 0.5. Books stay below 0.3.
	assertIDs(t, recs, []int64{12})
	if !approx(recs[0].Score, 0.5) {
		t.Errorf("score = %v, want 0.5", recs[0].Score)
	}

	strict := NewContentBased(ContentConfig{SimilarityThreshold: 0.6}, nil)
	if recs, _ := strict.SimilarProducts(context.Background(), data, 1, 10); len(recs) != 0 {
		t.Errorf("threshold 0.6 = %v, want empty", models.ProductIDs(recs))
	}
}

func TestTrendingInCategory(t *testing.T) {
	t.Parallel()

	data := newFixture(t)

	recs, err := TrendingInCategory(context.Background(), data, "ELECTRONICS", 10)
	if err != nil {
		t.Fatal(err)
	}
	// 10: 2 views and rating 4.5; 11: 2 purchases; 12: 1 view.
	assertIDs(t, recs, []int64{10, 11, 12})
	if !approx(recs[0].Score, 0.4*2.0/1000+0.2*4.5/5) {
		t.Errorf("score(10) = %v", recs[0].Score)
	}
	if recs, _ := TrendingInCategory(context.Background(), data, "garden", 10); len(recs) != 0 {
		t.Error("unknown category should be empty")
	}
}

func TestContentSignal(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	c := NewContentBased(DefaultContentConfig(), nil)

	recs, err := c.Signal(context.Background(), data, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	// Profile scoring fills two slots (12, 20); similar products adds 12
	// again, which the selector rejects as a duplicate.
	assertIDs(t, recs, []int64{12, 20})
	if recs[0].Algorithm != models.AlgorithmContent {
		t.Errorf("Algorithm = %q, want profile scoring to win", recs[0].Algorithm)
	}
}
