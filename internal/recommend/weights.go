// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"fmt"
	"math"
)

// Interaction counts at which AdaptiveWeights switches profile.
const (
	// SparseHistory is the interaction count below which a user is treated
	// as new.
	SparseHistory = 5

	// DenseHistory is the interaction count above which a user is treated
	// as established.
	DenseHistory = 50
)

// Weights is the relative contribution of each hybrid signal.
type Weights struct {
	Collaborative float64 `json:"collaborative" koanf:"collaborative"`
	Content       float64 `json:"content" koanf:"content"`
	Popularity    float64 `json:"popularity" koanf:"popularity"`
	Trending      float64 `json:"trending" koanf:"trending"`
}

// DefaultWeights returns the default hybrid mix.
func DefaultWeights() Weights {
	return Weights{
		Collaborative: 0.4,
		Content:       0.3,
		Popularity:    0.2,
		Trending:      0.1,
	}
}

// NewWeights normalizes the four weights to sum 1. Negative, non-finite or
// all-zero weights are rejected with ErrInvalidArgument.
func NewWeights(collaborative, content, popularity, trending float64) (Weights, error) {
	return Weights{
		Collaborative: collaborative,
		Content:       content,
		Popularity:    popularity,
		Trending:      trending,
	}.Normalize()
}

// Sum returns the total of the four weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Sum() float64 {
	return w.Collaborative + w.Content + w.Popularity + w.Trending
}

// Validate reports whether the weights can be normalized.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"collaborative", w.Collaborative},
		{"content", w.Content},
		{"popularity", w.Popularity},
		{"trending", w.Trending},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: weight %s must be finite, got %f", ErrInvalidArgument, f.name, f.value)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: weight %s must be non-negative, got %f", ErrInvalidArgument, f.name, f.value)
		}
	}
	if sum := w.Sum(); sum <= 0 {
		return fmt.Errorf("%w: weights must sum to a positive value, got %f", ErrInvalidArgument, sum)
	}
	return nil
}

// Normalize returns a copy scaled to sum 1.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Normalize() (Weights, error) {
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	sum := w.Sum()
	return Weights{
		Collaborative: w.Collaborative / sum,
		Content:       w.Content / sum,
		Popularity:    w.Popularity / sum,
		Trending:      w.Trending / sum,
	}, nil
}

// AdaptiveWeights picks the mix for a user with the given number of
// interactions. New users lean on content and popularity, established users
// on collaborative filtering, everyone else gets base. The result is a new
// value; base is never modified.
func AdaptiveWeights(base Weights, interactions int) Weights {
	switch {
	case interactions < SparseHistory:
		return Weights{Collaborative: 0.1, Content: 0.4, Popularity: 0.4, Trending: 0.1}
	case interactions > DenseHistory:
		return Weights{Collaborative: 0.6, Content: 0.2, Popularity: 0.1, Trending: 0.1}
	default:
		return base
	}
}
