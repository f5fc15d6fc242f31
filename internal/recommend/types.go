// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/journal"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
)

// Strategy selects how a request is scored.
type Strategy string

// Strategies accepted by Recommend.
const (
	// StrategyAuto routes by the user's interaction count.
	StrategyAuto                Strategy = "auto"
	StrategyHybrid              Strategy = "hybrid"
	StrategyAdaptive            Strategy = "adaptive"
	StrategyDiversified         Strategy = "diversified"
	StrategyCascade             Strategy = "cascade"
	StrategyCollaborative       Strategy = "collaborative"
	StrategyUserBased           Strategy = "user_based"
	StrategyItemBased           Strategy = "item_based"
	StrategyContent             Strategy = "content"
	StrategyPopular             Strategy = "popular"
	StrategyTrending            Strategy = "trending"
	StrategySimilarUsers        Strategy = "similar_users"
	StrategyMatrixFactorization Strategy = "matrix_factorization"
)

var strategies = []Strategy{
	StrategyAuto,
	StrategyHybrid,
	StrategyAdaptive,
	StrategyDiversified,
	StrategyCascade,
	StrategyCollaborative,
	StrategyUserBased,
	StrategyItemBased,
	StrategyContent,
	StrategyPopular,
	StrategyTrending,
	StrategySimilarUsers,
	StrategyMatrixFactorization,
}

// Strategies returns every accepted strategy name.
func Strategies() []Strategy {
	return append([]Strategy(nil), strategies...)
}

// ParseStrategy parses a case-insensitive strategy name. The empty string
// is StrategyAuto.
func ParseStrategy(s string) (Strategy, error) {
	name := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return StrategyAuto, nil
	}
	for _, known := range strategies {
		if name == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
}

// String returns the strategy name.
func (s Strategy) String() string { return string(s) }

// Request is one recommendation request.
type Request struct {
	// UserID is the user to recommend for.
	UserID int64 `json:"user_id"`

	// K is the number of results. Zero uses the configured default; values
	// above the configured maximum are clamped.
	K int `json:"k"`

	// Strategy picks the scoring path. Empty means StrategyAuto.
	Strategy Strategy `json:"strategy,omitempty"`

	// Filter is an optional CEL expression candidates must satisfy.
	Filter string `json:"filter,omitempty"`

	// Diversify re-ranks the result with the configured re-ranker.
	Diversify bool `json:"diversify,omitempty"`

	// Exclude lists product ids that must not be returned.
	Exclude []int64 `json:"exclude,omitempty"`

	// RequestID correlates logs. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response is a ranked recommendation list with request metadata.
type Response struct {
	Items    []*models.Recommendation `json:"items"`
	Metadata ResponseMetadata         `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	UserID    int64  `json:"user_id"`

	// Strategy is the strategy requested.
	Strategy Strategy `json:"strategy"`

	// Served is the strategy that produced the items. It differs from
	// Strategy after auto routing or a fallback.
	Served Strategy `json:"served"`

	// Fallback is set when the primary strategy returned nothing.
	Fallback bool `json:"fallback,omitempty"`

	// Interactions is the user's interaction count used for routing.
	Interactions int `json:"interactions"`

	// Candidates is the number of items before exclusion, filtering and
	// truncation.
	Candidates int `json:"candidates"`

	// Reranker names the diversification step, if any.
	Reranker string `json:"reranker,omitempty"`

	ModelVersion int       `json:"model_version"`
	LatencyMS    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// Stats summarizes engine state.
type Stats struct {
	Users        int     `json:"users"`
	Products     int     `json:"products"`
	Interactions int     `json:"interactions"`
	Edges        int     `json:"edges"`
	Density      float64 `json:"density"`
	ActiveUsers  int     `json:"active_users"`
	Categories   int     `json:"categories"`

	// TopProducts are the most popular product ids by graph degree.
	TopProducts []int64 `json:"top_products"`
	// Influential are user ids ranked by degree weighted by clustering.
	Influential []int64 `json:"influential_users"`

	Weights  Weights                        `json:"weights"`
	Caches   []cache.MemoStats              `json:"caches"`
	Training algorithms.FactorizationStatus `json:"training"`
	Journal  *journal.Stats                 `json:"journal,omitempty"`
}
