// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
	"github.com/tomtom215/rankengine/internal/recommend/reranking"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights is the default hybrid mix. It is normalized on load.
	Weights Weights `json:"weights" koanf:"weights"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Collaborative contains neighborhood parameters.
	Collaborative CollaborativeConfig `json:"collaborative" koanf:"collaborative"`

	// Content contains content-based parameters.
	Content ContentConfig `json:"content" koanf:"content"`

	// Factorization contains matrix factorization parameters.
	Factorization FactorizationConfig `json:"factorization" koanf:"factorization"`

	// Diversity selects the re-ranker used for diversified results.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Cache contains similarity and profile cache parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is used when a request leaves K at zero.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK caps K.
	MaxK int `json:"max_k" koanf:"max_k"`

	// Timeout bounds one Recommend call. Zero disables the bound.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

// CollaborativeConfig contains neighborhood parameters.
type CollaborativeConfig struct {
	// Depth is the BFS hop limit for peer discovery.
	Depth int `json:"depth" koanf:"depth"`

	// Peers is the number of similar users consulted.
	Peers int `json:"peers" koanf:"peers"`
}

// ContentConfig contains content-based parameters.
type ContentConfig struct {
	// SimilarityThreshold is the minimum attribute similarity for similar
	// product expansion.
	SimilarityThreshold float64 `json:"similarity_threshold" koanf:"similarity_threshold"`
}

// FactorizationConfig contains matrix factorization parameters.
type FactorizationConfig struct {
	Factors        int     `json:"factors" koanf:"factors"`
	Iterations     int     `json:"iterations" koanf:"iterations"`
	LearningRate   float64 `json:"learning_rate" koanf:"learning_rate"`
	Regularization float64 `json:"regularization" koanf:"regularization"`
	Seed           uint64  `json:"seed" koanf:"seed"`
}

// DiversityConfig contains diversification parameters.
type DiversityConfig struct {
	// Reranker is "caps" (category and brand caps) or "mmr".
	Reranker string `json:"reranker" koanf:"reranker"`

	// MMRLambda trades relevance against novelty for the mmr re-ranker.
	MMRLambda float64 `json:"mmr_lambda" koanf:"mmr_lambda"`
}

// CacheConfig contains cache parameters.
type CacheConfig struct {
	// Shards is the lock-shard count of each in-process cache.
	Shards int `json:"shards" koanf:"shards"`

	// RemoteTTL is the expiry of entries written to the shared cache.
	RemoteTTL time.Duration `json:"remote_ttl" koanf:"remote_ttl"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	collab := algorithms.DefaultCollaborativeConfig()
	mf := algorithms.DefaultFactorizationConfig()
	return &Config{
		Weights: DefaultWeights(),
		Limits: LimitsConfig{
			DefaultK: 10,
			MaxK:     100,
			Timeout:  5 * time.Second,
		},
		Collaborative: CollaborativeConfig{
			Depth: collab.Depth,
			Peers: collab.Peers,
		},
		Content: ContentConfig{
			SimilarityThreshold: algorithms.DefaultContentConfig().SimilarityThreshold,
		},
		Factorization: FactorizationConfig{
			Factors:        mf.Factors,
			Iterations:     mf.Iterations,
			LearningRate:   mf.LearningRate,
			Regularization: mf.Regularization,
			Seed:           mf.Seed,
		},
		Diversity: DiversityConfig{
			Reranker:  reranking.NameCategoryCaps,
			MMRLambda: reranking.DefaultLambda,
		},
		Cache: CacheConfig{
			Shards:    16,
			RemoteTTL: time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if c.Limits.DefaultK <= 0 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.Timeout < 0 {
		return fmt.Errorf("limits.timeout must be non-negative, got %v", c.Limits.Timeout)
	}
	if c.Collaborative.Depth <= 0 {
		return fmt.Errorf("collaborative.depth must be positive, got %d", c.Collaborative.Depth)
	}
	if c.Collaborative.Peers <= 0 {
		return fmt.Errorf("collaborative.peers must be positive, got %d", c.Collaborative.Peers)
	}
	if c.Content.SimilarityThreshold < 0 || c.Content.SimilarityThreshold > 1 {
		return fmt.Errorf("content.similarity_threshold must be in [0, 1], got %f", c.Content.SimilarityThreshold)
	}
	if c.Factorization.Factors <= 0 {
		return fmt.Errorf("factorization.factors must be positive, got %d", c.Factorization.Factors)
	}
	if c.Factorization.Iterations <= 0 {
		return fmt.Errorf("factorization.iterations must be positive, got %d", c.Factorization.Iterations)
	}
	if c.Factorization.LearningRate <= 0 {
		return fmt.Errorf("factorization.learning_rate must be positive, got %f", c.Factorization.LearningRate)
	}
	if c.Factorization.Regularization < 0 {
		return fmt.Errorf("factorization.regularization must be non-negative, got %f", c.Factorization.Regularization)
	}
	switch c.Diversity.Reranker {
	case "", reranking.NameCategoryCaps, reranking.NameMMR:
	default:
		return fmt.Errorf("diversity.reranker must be %q or %q, got %q", reranking.NameCategoryCaps, reranking.NameMMR, c.Diversity.Reranker)
	}
	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("diversity.mmr_lambda must be in [0, 1], got %f", c.Diversity.MMRLambda)
	}
	if c.Cache.Shards <= 0 {
		return fmt.Errorf("cache.shards must be positive, got %d", c.Cache.Shards)
	}
	if c.Cache.RemoteTTL < 0 {
		return fmt.Errorf("cache.remote_ttl must be non-negative, got %v", c.Cache.RemoteTTL)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func (c CollaborativeConfig) toAlgorithms() algorithms.CollaborativeConfig {
	return algorithms.CollaborativeConfig{Depth: c.Depth, Peers: c.Peers}
}

func (c ContentConfig) toAlgorithms() algorithms.ContentConfig {
	return algorithms.ContentConfig{SimilarityThreshold: c.SimilarityThreshold}
}

//nolint:gocritic // value receiver is intentional for immutable semantics
func (c FactorizationConfig) toAlgorithms() algorithms.FactorizationConfig {
	cfg := algorithms.DefaultFactorizationConfig()
	cfg.Factors = c.Factors
	cfg.Iterations = c.Iterations
	cfg.LearningRate = c.LearningRate
	cfg.Regularization = c.Regularization
	cfg.Seed = c.Seed
	return cfg
}
