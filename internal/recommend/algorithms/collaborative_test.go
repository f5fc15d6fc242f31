// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/models"
)

func TestNewUserBased(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       CollaborativeConfig
		wantDepth int
		wantPeers int
	}{
		{"applies defaults for zero config", CollaborativeConfig{}, 2, 20},
		{"uses provided config values", CollaborativeConfig{Depth: 4, Peers: 5}, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := NewUserBased(tt.cfg, nil)
			if u.Config().Depth != tt.wantDepth || u.Config().Peers != tt.wantPeers {
				t.Errorf("Config() = %+v, want depth %d peers %d", u.Config(), tt.wantDepth, tt.wantPeers)
			}
			if u.Name() != models.AlgorithmUserCF {
				t.Errorf("Name() = %q", u.Name())
			}
		})
	}
}

func TestUserBasedRecommend(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	sims := cache.NewMemo[cache.Pair, float64]("test_users")
	u := NewUserBased(DefaultCollaborativeConfig(), sims)

	recs, err := u.Recommend(context.Background(), data, 1, 5, 0)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	assertIDs(t, recs, []int64{12})

	// cos({10:1, 11:5}, {10:1, 11:5, 12:1}) times edge weight 1
	want := 26 / (math.Sqrt(26) * math.Sqrt(27))
	if !approx(recs[0].Score, want) {
		t.Errorf("score = %v, want %v", recs[0].Score, want)
	}
	if recs[0].Components[ComponentUserSimilarity] != recs[0].Score {
		t.Error("user_similarity component should carry the score")
	}
	if !recs[0].HasReason(models.ReasonSimilarUsers) {
		t.Error("missing similar_users reason")
	}
	if recs[0].Algorithm != models.AlgorithmUserCF {
		t.Errorf("Algorithm = %q", recs[0].Algorithm)
	}

	// The pair is visible under both orders.
	if v, ok := sims.Get(cache.PairOf(2, 1)); !ok || !approx(v, want) {
		t.Errorf("cached similarity = %v, %v", v, ok)
	}
}

func TestUserBasedEdgeCases(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	u := NewUserBased(DefaultCollaborativeConfig(), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		k      int
	}{
		{"unknown user", 99, 5},
		{"user without history", 4, 5},
		{"no overlapping peers", 3, 5},
		{"zero k", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recs, err := u.Recommend(ctx, data, tt.userID, tt.k, 0)
			if err != nil || len(recs) != 0 {
				t.Errorf("Recommend() = %v, %v; want empty", recs, err)
			}
		})
	}
}

func TestUserBasedCancelled(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	u := NewUserBased(DefaultCollaborativeConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := u.Recommend(ctx, data, 1, 5, 0); err == nil {
		t.Error("expected context error")
	}
}

func TestSimilarPeers(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	u := NewUserBased(DefaultCollaborativeConfig(), nil)

	peers, err := u.SimilarPeers(context.Background(), data, 2, 10)
	if err != nil {
		t.Fatalf("SimilarPeers() error = %v", err)
	}
	if len(peers) != 1 || peers[0].ID != 1 {
		t.Errorf("SimilarPeers(2) = %+v, want user 1 only", peers)
	}

	sim, err := u.Similarity(context.Background(), data, 1, 2)
	if err != nil || !approx(sim, peers[0].Score) {
		t.Errorf("Similarity(1, 2) = %v, %v; want %v", sim, err, peers[0].Score)
	}
}

func TestItemBasedRecommend(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	sims := cache.NewMemo[cache.Pair, float64]("test_items")
	i := NewItemBased(sims)

	recs, err := i.Recommend(context.Background(), data, 1, 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// Product 12 is similar to both history items (cos = 1/sqrt(2) each);
	// weights 1 and 5 average to 3. Books share no users and are skipped.
	assertIDs(t, recs, []int64{12})
	if !approx(recs[0].Score, 3) {
		t.Errorf("score = %v, want 3", recs[0].Score)
	}
	if !recs[0].HasReason(models.ReasonSimilarToHistory) {
		t.Error("missing similar_to_history reason")
	}

	if v, ok := sims.Get(cache.PairOf(12, 10)); !ok || !approx(v, 1/math.Sqrt2) {
		t.Errorf("cached item similarity = %v, %v", v, ok)
	}
	if i.Name() != models.AlgorithmItemCF {
		t.Errorf("Name() = %q", i.Name())
	}
}

func TestItemBasedNoHistory(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	i := NewItemBased(nil)

	for _, id := range []int64{4, 99} {
		recs, err := i.Recommend(context.Background(), data, id, 5)
		if err != nil || len(recs) != 0 {
			t.Errorf("Recommend(%d) = %v, %v; want empty", id, recs, err)
		}
	}
}

func TestCollaborativeRespectsK(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	// User 5 shares product 20 with user 3, who also has 21, and product 10
	// with users 1 and 2.
	data.AddUser(models.NewUser(5, "five", ""))
	data.Ingest(models.Interaction{UserID: 5, ProductID: 20, Type: models.InteractionView})
	data.Ingest(models.Interaction{UserID: 5, ProductID: 10, Type: models.InteractionView})

	u := NewUserBased(DefaultCollaborativeConfig(), nil)
	all, err := u.Recommend(context.Background(), data, 5, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 2 {
		t.Fatalf("expected several candidates, got %d", len(all))
	}
	assertSorted(t, all)

	top1, _ := u.Recommend(context.Background(), data, 5, 1, 0)
	if len(top1) != 1 || top1[0].ProductID != all[0].ProductID {
		t.Errorf("k=1 = %v, want first of %v", models.ProductIDs(top1), models.ProductIDs(all))
	}
}

func TestCollaborativeCombined(t *testing.T) {
	t.Parallel()

	data := newFixture(t)
	c := NewCollaborative(NewUserBased(DefaultCollaborativeConfig(), nil), NewItemBased(nil))
	ctx := context.Background()

	recs, err := c.Recommend(ctx, data, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, recs, []int64{12})

	userScore := 26 / (math.Sqrt(26) * math.Sqrt(27))
	if !approx(recs[0].Score, (userScore+3)/2) {
		t.Errorf("score = %v, want mean of %v and 3", recs[0].Score, userScore)
	}
	if recs[0].Algorithm != models.AlgorithmCollaborative {
		t.Errorf("Algorithm = %q, want %q", recs[0].Algorithm, models.AlgorithmCollaborative)
	}
	if !recs[0].HasReason(models.ReasonSimilarUsers) || !recs[0].HasReason(models.ReasonSimilarToHistory) {
		t.Errorf("reasons = %v", recs[0].Reasons)
	}

	// The hybrid signal keeps the user-based entry on overlap.
	signal, err := c.Signal(ctx, data, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(signal) != 1 || signal[0].Algorithm != models.AlgorithmUserCF {
		t.Errorf("Signal() = %+v", signal)
	}
}
