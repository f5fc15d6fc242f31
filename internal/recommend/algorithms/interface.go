// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/metrics"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/topk"
)

var (
	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrNotTrained is returned when a model is queried before its first
	// successful training run.
	ErrNotTrained = errors.New("model not trained")
)

// BaseAlgorithm provides the shared training bookkeeping for trained models.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{name: name}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version, incremented per successful run.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

func (b *BaseAlgorithm) markTrained() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

// RecommendFunc produces one strategy's recommendations.
type RecommendFunc func() ([]*models.Recommendation, error)

// SafeRecommend runs fn and turns a panic or an error into an empty result.
// Failures are logged at warn level and counted per strategy. Context
// cancellation is not a strategy failure and is returned as is.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func SafeRecommend(ctx context.Context, logger zerolog.Logger, strategy string, userID int64, fn RecommendFunc) (recs []*models.Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("strategy", strategy).
				Int64("user_id", userID).
				Interface("panic", r).
				Msg("Strategy panicked, returning no results")
			metrics.RecordStrategyFailure(strategy)
			recs, err = nil, nil
		}
	}()

	recs, err = fn()
	if err == nil {
		return recs, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, err
	}

	logger.Warn().
		Err(err).
		Str("strategy", strategy).
		Int64("user_id", userID).
		Msg("Strategy failed, returning no results")
	metrics.RecordStrategyFailure(strategy)
	return nil, nil
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// selectTop funnels scored candidates through a bounded selector and returns
// the best k, best first. Ties order by ascending product id.
func selectTop(candidates map[int64]*models.Recommendation, k int) []*models.Recommendation {
	sel := topk.New[*models.Recommendation](k)
	for _, rec := range candidates {
		sel.Offer(rec)
	}
	return sel.TopK()
}

// mergeTop offers lists in order to one selector of size k. The first
// list offering a product wins.
func mergeTop(k int, lists ...[]*models.Recommendation) []*models.Recommendation {
	sel := topk.New[*models.Recommendation](k)
	for _, list := range lists {
		for _, rec := range list {
			sel.Offer(rec)
		}
	}
	return sel.TopK()
}

// half splits k between two sub-strategies, keeping at least one each.
func half(k int) int {
	return max(1, k/2)
}
