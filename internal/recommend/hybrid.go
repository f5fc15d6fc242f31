// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
	"github.com/tomtom215/rankengine/internal/topk"
)

// Signal names. They key the score components of hybrid results.
const (
	SignalCollaborative = "collaborative"
	SignalContent       = "content"
	SignalPopularity    = "popularity"
	SignalTrending      = "trending"
)

// Hybrid fuses the collaborative, content, popularity and trending signals.
type Hybrid struct {
	collaborative *algorithms.Collaborative
	content       *algorithms.ContentBased
	popularity    *algorithms.Popularity
	logger        zerolog.Logger
}

// NewHybrid creates a combiner over the given strategies.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewHybrid(collaborative *algorithms.Collaborative, content *algorithms.ContentBased, popularity *algorithms.Popularity, logger zerolog.Logger) *Hybrid {
	return &Hybrid{
		collaborative: collaborative,
		content:       content,
		popularity:    popularity,
		logger:        logger,
	}
}

type signal struct {
	name   string
	weight float64
	run    func(ctx context.Context, k int) ([]*models.Recommendation, error)
}

func (h *Hybrid) signals(data *catalog.Catalog, userID int64, w Weights) []signal {
	return []signal{
		{SignalCollaborative, w.Collaborative, func(ctx context.Context, k int) ([]*models.Recommendation, error) {
			return h.collaborative.Signal(ctx, data, userID, k)
		}},
		{SignalContent, w.Content, func(ctx context.Context, k int) ([]*models.Recommendation, error) {
			return h.content.Signal(ctx, data, userID, k)
		}},
		{SignalPopularity, w.Popularity, func(ctx context.Context, k int) ([]*models.Recommendation, error) {
			return h.popularity.Recommend(ctx, data, userID, k)
		}},
		{SignalTrending, w.Trending, func(ctx context.Context, k int) ([]*models.Recommendation, error) {
			return h.content.Trending(ctx, data, userID, k)
		}},
	}
}

// fused accumulates one product's weighted signal scores.
type fused struct {
	rec      *models.Recommendation
	weighted float64
	total    float64
}

// Recommend runs the signals with positive weight concurrently, each asked
// for k items, and fuses them per product:
//
//	score(p) = sum_s w_s * score_s(p) / sum_s w_s
//
// over the signals that returned p. A failing signal contributes nothing.
// Components hold each contributing signal's raw score; reasons name the
// contributing signals followed by their own explanations. Unknown users
// get no results.
func (h *Hybrid) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int, w Weights) ([]*models.Recommendation, error) {
	if k <= 0 || !data.HasUser(userID) {
		return nil, nil
	}

	signals := h.signals(data, userID, w)
	results := make([][]*models.Recommendation, len(signals))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range signals {
		if s.weight <= 0 {
			continue
		}
		g.Go(func() error {
			recs, err := algorithms.SafeRecommend(gctx, h.logger, s.name, userID, func() ([]*models.Recommendation, error) {
				return s.run(gctx, k)
			})
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := make(map[int64]*fused)
	for i, s := range signals {
		for _, rec := range results[i] {
			f, ok := combined[rec.ProductID]
			if !ok {
				f = &fused{rec: models.NewRecommendation(userID, rec.ProductID, 0, models.AlgorithmHybrid)}
				combined[rec.ProductID] = f
			}
			f.weighted += rec.Score * s.weight
			f.total += s.weight
			f.rec.WithComponent(s.name, rec.Score).
				WithReason(models.ReasonCombined, s.name, rec.Score)
			for _, reason := range rec.Reasons {
				addReason(f.rec, reason)
			}
		}
	}

	sel := topk.New[*models.Recommendation](k)
	for _, f := range combined {
		f.rec.Score = f.weighted / f.total
		sel.Offer(f.rec)
	}
	return sel.TopK(), nil
}

// addReason appends reason unless one with the same code and subject is
// already present.
func addReason(rec *models.Recommendation, reason models.Reason) {
	for _, r := range rec.Reasons {
		if r.Code == reason.Code && r.Subject == reason.Subject {
			return
		}
	}
	rec.Reasons = append(rec.Reasons, reason)
}

// Cascade tries collaborative filtering first, then content for the
// missing slots, then popularity. Later stages never repeat a product an
// earlier stage returned, and every item keeps the tag of the strategy
// that produced it.
func (h *Hybrid) Cascade(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 {
		return nil, nil
	}

	stages := []struct {
		name string
		run  func(ctx context.Context, n int) ([]*models.Recommendation, error)
	}{
		{SignalCollaborative, func(ctx context.Context, n int) ([]*models.Recommendation, error) {
			return h.collaborative.Signal(ctx, data, userID, n)
		}},
		{SignalContent, func(ctx context.Context, n int) ([]*models.Recommendation, error) {
			return h.content.Signal(ctx, data, userID, n)
		}},
		{SignalPopularity, func(ctx context.Context, n int) ([]*models.Recommendation, error) {
			return h.popularity.Recommend(ctx, data, userID, n)
		}},
	}

	out := make([]*models.Recommendation, 0, k)
	seen := make(map[int64]struct{}, k)
	for _, stage := range stages {
		missing := k - len(out)
		if missing <= 0 {
			break
		}
		recs, err := algorithms.SafeRecommend(ctx, h.logger, stage.name, userID, func() ([]*models.Recommendation, error) {
			return stage.run(ctx, missing)
		})
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if len(out) >= k {
				break
			}
			if _, dup := seen[rec.ProductID]; dup {
				continue
			}
			seen[rec.ProductID] = struct{}{}
			out = append(out, rec)
		}
	}
	return out, nil
}
