// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package config

import (
	"time"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/journal"
	"github.com/tomtom215/rankengine/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: RANKENGINE_* overrides
//
// Configuration Categories:
//
//   - HTTP: listen address, timeouts, CORS and rate limiting
//   - Logging: level, format and caller annotation
//   - Journal: BadgerDB ingestion journal
//   - Redis: optional shared similarity cache
//   - Recommend: engine weights, limits and algorithm parameters
//   - Training: background matrix factorization schedule
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	HTTP      HTTPConfig       `koanf:"http"`
	Logging   LoggingConfig    `koanf:"logging"`
	Journal   journal.Config   `koanf:"journal"`
	Redis     RedisConfig      `koanf:"redis"`
	Recommend recommend.Config `koanf:"recommend"`
	Training  TrainingConfig   `koanf:"training"`
}

// HTTPConfig holds HTTP server settings.
//
// Environment Variables:
//   - RANKENGINE_HTTP_ADDR: listen address (default: :8080)
//   - RANKENGINE_HTTP_READ_TIMEOUT, RANKENGINE_HTTP_WRITE_TIMEOUT, RANKENGINE_HTTP_IDLE_TIMEOUT
//   - RANKENGINE_HTTP_REQUEST_TIMEOUT: per-request handler deadline (default: 10s)
//   - RANKENGINE_HTTP_SHUTDOWN_TIMEOUT: graceful shutdown bound (default: 15s)
//   - RANKENGINE_CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RANKENGINE_RATE_LIMIT_REQUESTS, RANKENGINE_RATE_LIMIT_WINDOW, RANKENGINE_DISABLE_RATE_LIMIT
type HTTPConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - RANKENGINE_LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - RANKENGINE_LOG_FORMAT: json, console (default: json)
//   - RANKENGINE_LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// RedisConfig holds the shared similarity cache settings. Redis is
// optional; when disabled every cache lookup stays in process.
//
// Environment Variables:
//   - RANKENGINE_REDIS_ENABLED, RANKENGINE_REDIS_ADDR, RANKENGINE_REDIS_PASSWORD
//   - RANKENGINE_REDIS_DB, RANKENGINE_REDIS_DIAL_TIMEOUT
type RedisConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Addr        string        `koanf:"addr" validate:"omitempty,hostname_port"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db" validate:"gte=0,lte=15"`
	DialTimeout time.Duration `koanf:"dial_timeout" validate:"gte=0"`
}

// Store returns the settings for cache.NewRedisStore.
func (r *RedisConfig) Store() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:        r.Addr,
		Password:    r.Password,
		DB:          r.DB,
		DialTimeout: r.DialTimeout,
	}
}

// TrainingConfig holds the background matrix factorization schedule.
//
// Environment Variables:
//   - RANKENGINE_TRAIN_INTERVAL: time between runs, 0 disables (default: 1h)
//   - RANKENGINE_TRAIN_ON_STARTUP: train once when the service starts (default: true)
//   - RANKENGINE_TRAIN_MIN_INTERACTIONS: skip runs below this log size (default: 10)
type TrainingConfig struct {
	Interval        time.Duration `koanf:"interval" validate:"gte=0"`
	OnStartup       bool          `koanf:"on_startup"`
	MinInteractions int           `koanf:"min_interactions" validate:"gte=0"`
}

// Load reads configuration from the given YAML file, or from the first
// default location when path is empty. See LoadWithKoanf.
func Load(path string) (*Config, error) {
	return LoadWithKoanf(path)
}
