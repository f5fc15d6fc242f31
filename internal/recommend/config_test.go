// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Weights != DefaultWeights() {
		t.Errorf("Weights = %+v, want defaults", cfg.Weights)
	}
	if cfg.Limits.DefaultK != 10 || cfg.Limits.MaxK != 100 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
	if cfg.Diversity.Reranker != "caps" {
		t.Errorf("Reranker = %q, want caps", cfg.Diversity.Reranker)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty reranker", func(c *Config) { c.Diversity.Reranker = "" }, ""},
		{"zero timeout", func(c *Config) { c.Limits.Timeout = 0 }, ""},
		{"zero weights", func(c *Config) { c.Weights = Weights{} }, "weights"},
		{"zero default k", func(c *Config) { c.Limits.DefaultK = 0 }, "limits.default_k"},
		{"max below default", func(c *Config) { c.Limits.MaxK = 5 }, "limits.max_k"},
		{"negative timeout", func(c *Config) { c.Limits.Timeout = -time.Second }, "limits.timeout"},
		{"zero depth", func(c *Config) { c.Collaborative.Depth = 0 }, "collaborative.depth"},
		{"zero peers", func(c *Config) { c.Collaborative.Peers = 0 }, "collaborative.peers"},
		{"threshold above one", func(c *Config) { c.Content.SimilarityThreshold = 1.5 }, "content.similarity_threshold"},
		{"zero factors", func(c *Config) { c.Factorization.Factors = 0 }, "factorization.factors"},
		{"zero iterations", func(c *Config) { c.Factorization.Iterations = 0 }, "factorization.iterations"},
		{"zero learning rate", func(c *Config) { c.Factorization.LearningRate = 0 }, "factorization.learning_rate"},
		{"negative regularization", func(c *Config) { c.Factorization.Regularization = -1 }, "factorization.regularization"},
		{"unknown reranker", func(c *Config) { c.Diversity.Reranker = "random" }, "diversity.reranker"},
		{"lambda above one", func(c *Config) { c.Diversity.MMRLambda = 2 }, "diversity.mmr_lambda"},
		{"zero shards", func(c *Config) { c.Cache.Shards = 0 }, "cache.shards"},
		{"negative ttl", func(c *Config) { c.Cache.RemoteTTL = -time.Minute }, "cache.remote_ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Limits.DefaultK = 99
	clone.Weights.Content = 0

	if cfg.Limits.DefaultK != 10 || cfg.Weights.Content != 0.3 {
		t.Error("Clone() shares state with the original")
	}
}

func TestFactorizationConfigConversion(t *testing.T) {
	t.Parallel()

	cfg := FactorizationConfig{Factors: 8, Iterations: 3, LearningRate: 0.05, Regularization: 0.1, Seed: 7}
	got := cfg.toAlgorithms()
	if got.Factors != 8 || got.Iterations != 3 || got.LearningRate != 0.05 || got.Regularization != 0.1 || got.Seed != 7 {
		t.Errorf("toAlgorithms() = %+v", got)
	}
}
