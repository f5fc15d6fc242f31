// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package models

import (
	"fmt"
	"slices"
	"strings"
)

// Algorithm tags identify the strategy that produced a recommendation.
const (
	AlgorithmUserCF        = "user_collaborative"
	AlgorithmItemCF        = "item_collaborative"
	AlgorithmCollaborative = "collaborative"
	AlgorithmMF            = "matrix_factorization"
	AlgorithmContent       = "content_based"
	AlgorithmSimilar       = "similar_content"
	AlgorithmTrending      = "trending_content"
	AlgorithmPopularity    = "popularity"
	AlgorithmHybrid        = "hybrid"
	AlgorithmSimilarUsers  = "similar_users"
	AlgorithmCategoryTrend = "trending"
)

// ReasonCode is a machine-readable explanation category.
type ReasonCode string

// Reason codes emitted by the scoring strategies.
const (
	ReasonSimilarUsers     ReasonCode = "similar_users"
	ReasonSimilarToHistory ReasonCode = "similar_to_history"
	ReasonLatentFactors    ReasonCode = "latent_factors"
	ReasonCategoryMatch    ReasonCode = "category_match"
	ReasonBrandMatch       ReasonCode = "brand_match"
	ReasonHighlyRated      ReasonCode = "highly_rated"
	ReasonProfileMatch     ReasonCode = "profile_match"
	ReasonSimilarContent   ReasonCode = "similar_content"
	ReasonTrending         ReasonCode = "trending_in_category"
	ReasonPopular          ReasonCode = "popular"
	ReasonCombined         ReasonCode = "combined"
	ReasonDiverse          ReasonCode = "diverse_selection"
)

// Reason is one structured explanation attached to a recommendation.
// Presentation layers decide how to render it.
type Reason struct {
	Code    ReasonCode `json:"code"`
	Subject string     `json:"subject,omitempty"`
	Value   float64    `json:"value,omitempty"`
}

// String renders the reason for logs and the CLI.
func (r Reason) String() string {
	switch {
	case r.Subject != "" && r.Value != 0:
		return fmt.Sprintf("%s(%s=%.3f)", r.Code, r.Subject, r.Value)
	case r.Subject != "":
		return fmt.Sprintf("%s(%s)", r.Code, r.Subject)
	case r.Value != 0:
		return fmt.Sprintf("%s(%.3f)", r.Code, r.Value)
	default:
		return string(r.Code)
	}
}

// Recommendation is one ranked product for a user.
type Recommendation struct {
	UserID     int64              `json:"user_id"`
	ProductID  int64              `json:"product_id"`
	Score      float64            `json:"score"`
	Algorithm  string             `json:"algorithm"`
	Components map[string]float64 `json:"components,omitempty"`
	Reasons    []Reason           `json:"reasons,omitempty"`

	// Rank is 1-based and assigned only when a ranked list is read.
	Rank     int  `json:"rank"`
	Accepted bool `json:"accepted,omitempty"`
}

// NewRecommendation returns a recommendation with one score component.
func NewRecommendation(userID, productID int64, score float64, algorithm string) *Recommendation {
	return &Recommendation{
		UserID:     userID,
		ProductID:  productID,
		Score:      score,
		Algorithm:  algorithm,
		Components: make(map[string]float64, 2),
	}
}

// Key returns the product id; it identifies the entry in a top-K selector.
func (r *Recommendation) Key() int64 { return r.ProductID }

// Value returns the score used for ranking.
func (r *Recommendation) Value() float64 { return r.Score }

// WithComponent records a named score component and returns r.
func (r *Recommendation) WithComponent(name string, v float64) *Recommendation {
	if r.Components == nil {
		r.Components = make(map[string]float64, 2)
	}
	r.Components[name] = v
	return r
}

// WithReason appends a structured reason and returns r.
func (r *Recommendation) WithReason(code ReasonCode, subject string, v float64) *Recommendation {
	r.Reasons = append(r.Reasons, Reason{Code: code, Subject: subject, Value: v})
	return r
}

// HasReason reports whether a reason with the code is attached.
func (r *Recommendation) HasReason(code ReasonCode) bool {
	return slices.ContainsFunc(r.Reasons, func(x Reason) bool { return x.Code == code })
}

// Explain joins the reasons into a single line for logs.
func (r *Recommendation) Explain() string {
	parts := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		parts[i] = reason.String()
	}
	return strings.Join(parts, ", ")
}

// Clone returns a deep copy.
func (r *Recommendation) Clone() *Recommendation {
	c := *r
	if r.Components != nil {
		c.Components = make(map[string]float64, len(r.Components))
		for k, v := range r.Components {
			c.Components[k] = v
		}
	}
	c.Reasons = slices.Clone(r.Reasons)
	return &c
}

// Less orders by descending score, then ascending key.
func Less(scoreA float64, keyA int64, scoreB float64, keyB int64) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return keyA < keyB
}

// SortRecommendations sorts in place by descending score, ties by ascending product id.
func SortRecommendations(recs []*Recommendation) {
	slices.SortFunc(recs, func(a, b *Recommendation) int {
		if Less(a.Score, a.ProductID, b.Score, b.ProductID) {
			return -1
		}
		if Less(b.Score, b.ProductID, a.Score, a.ProductID) {
			return 1
		}
		return 0
	})
}

// Rank assigns 1-based ranks in slice order.
func Rank(recs []*Recommendation) []*Recommendation {
	for i, r := range recs {
		r.Rank = i + 1
	}
	return recs
}

// Truncate returns at most k leading recommendations.
func Truncate(recs []*Recommendation, k int) []*Recommendation {
	if k < 0 {
		k = 0
	}
	if len(recs) > k {
		return recs[:k]
	}
	return recs
}

// ProductIDs returns the product ids in order.
func ProductIDs(recs []*Recommendation) []int64 {
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ProductID
	}
	return ids
}
