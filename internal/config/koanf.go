// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/rankengine/internal/journal"
	"github.com/tomtom215/rankengine/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/rankengine/config.yaml",
	"/etc/rankengine/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			RequestTimeout:    10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Journal:   journal.DefaultConfig(),
		Redis:     RedisConfig{DialTimeout: 2 * time.Second},
		Recommend: *recommend.DefaultConfig(),
		Training: TrainingConfig{
			Interval:        time.Hour,
			OnStartup:       true,
			MinInteractions: 10,
		},
	}
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: path, or the first file found via CONFIG_PATH and
//     DefaultConfigPaths when path is empty
//  3. Environment Variables: Override any mapped setting
//
// An explicit path that does not exist is an error; a missing default file
// is not.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"http.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from defaults or YAML)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// HTTP server
	"rankengine_http_addr":             "http.addr",
	"rankengine_http_read_timeout":     "http.read_timeout",
	"rankengine_http_write_timeout":    "http.write_timeout",
	"rankengine_http_idle_timeout":     "http.idle_timeout",
	"rankengine_http_request_timeout":  "http.request_timeout",
	"rankengine_http_shutdown_timeout": "http.shutdown_timeout",
	"rankengine_cors_origins":          "http.cors_origins",
	"rankengine_rate_limit_requests":   "http.rate_limit_requests",
	"rankengine_rate_limit_window":     "http.rate_limit_window",
	"rankengine_disable_rate_limit":    "http.rate_limit_disabled",

	// Logging
	"rankengine_log_level":  "logging.level",
	"rankengine_log_format": "logging.format",
	"rankengine_log_caller": "logging.caller",

	// Journal
	"rankengine_journal_path":        "journal.path",
	"rankengine_journal_in_memory":   "journal.in_memory",
	"rankengine_journal_sync_writes": "journal.sync_writes",
	"rankengine_journal_compression": "journal.compression",
	"rankengine_journal_gc_interval": "journal.gc_interval",
	"rankengine_journal_gc_ratio":    "journal.gc_ratio",

	// Redis
	"rankengine_redis_enabled":      "redis.enabled",
	"rankengine_redis_addr":         "redis.addr",
	"rankengine_redis_password":     "redis.password",
	"rankengine_redis_db":           "redis.db",
	"rankengine_redis_dial_timeout": "redis.dial_timeout",

	// Recommendation engine
	"rankengine_weight_collaborative":   "recommend.weights.collaborative",
	"rankengine_weight_content":         "recommend.weights.content",
	"rankengine_weight_popularity":      "recommend.weights.popularity",
	"rankengine_weight_trending":        "recommend.weights.trending",
	"rankengine_default_k":              "recommend.limits.default_k",
	"rankengine_max_k":                  "recommend.limits.max_k",
	"rankengine_recommend_timeout":      "recommend.limits.timeout",
	"rankengine_bfs_depth":              "recommend.collaborative.depth",
	"rankengine_similar_peers":          "recommend.collaborative.peers",
	"rankengine_similarity_threshold":   "recommend.content.similarity_threshold",
	"rankengine_mf_factors":             "recommend.factorization.factors",
	"rankengine_mf_iterations":          "recommend.factorization.iterations",
	"rankengine_mf_learning_rate":       "recommend.factorization.learning_rate",
	"rankengine_mf_regularization":      "recommend.factorization.regularization",
	"rankengine_mf_seed":                "recommend.factorization.seed",
	"rankengine_diversity_reranker":     "recommend.diversity.reranker",
	"rankengine_diversity_lambda":       "recommend.diversity.mmr_lambda",
	"rankengine_cache_shards":           "recommend.cache.shards",
	"rankengine_cache_ttl":              "recommend.cache.remote_ttl",
	"rankengine_train_interval":         "training.interval",
	"rankengine_train_on_startup":       "training.on_startup",
	"rankengine_train_min_interactions": "training.min_interactions",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - RANKENGINE_HTTP_ADDR -> http.addr
//   - RANKENGINE_LOG_LEVEL -> logging.level
//   - RANKENGINE_WEIGHT_CONTENT -> recommend.weights.content
//   - RANKENGINE_MF_FACTORS -> recommend.factorization.factors
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
