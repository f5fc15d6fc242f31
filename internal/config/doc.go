// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package config provides centralized configuration management for rankengine.

Configuration is assembled by Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (structs provider)
 2. An optional YAML file: the path passed to Load, else CONFIG_PATH, else
    the first of DefaultConfigPaths that exists
 3. RANKENGINE_* environment variables (env provider with an explicit
    mapping table; unmapped variables are ignored)

# Configuration Structure

  - HTTPConfig: listen address, timeouts, CORS origins, rate limits
  - LoggingConfig: zerolog level, format and caller annotation
  - journal.Config: BadgerDB ingestion journal
  - RedisConfig: optional shared similarity cache
  - recommend.Config: hybrid weights, k limits and algorithm parameters
  - TrainingConfig: background matrix factorization schedule

# Example YAML

	http:
	  addr: ":8080"
	  cors_origins: ["https://shop.example.com"]
	logging:
	  level: debug
	  format: console
	journal:
	  path: /var/lib/rankengine/journal
	recommend:
	  weights:
	    collaborative: 0.5
	    content: 0.3
	    popularity: 0.1
	    trending: 0.1
	  limits:
	    default_k: 20
	training:
	  interval: 30m

# Environment Variables

A few commonly used overrides:

  - RANKENGINE_HTTP_ADDR: listen address (default: :8080)
  - RANKENGINE_LOG_LEVEL, RANKENGINE_LOG_FORMAT, RANKENGINE_LOG_CALLER
  - RANKENGINE_JOURNAL_PATH, RANKENGINE_JOURNAL_IN_MEMORY
  - RANKENGINE_REDIS_ENABLED, RANKENGINE_REDIS_ADDR
  - RANKENGINE_WEIGHT_COLLABORATIVE, RANKENGINE_WEIGHT_CONTENT,
    RANKENGINE_WEIGHT_POPULARITY, RANKENGINE_WEIGHT_TRENDING
  - RANKENGINE_DEFAULT_K, RANKENGINE_MAX_K
  - RANKENGINE_TRAIN_INTERVAL, RANKENGINE_TRAIN_ON_STARTUP

The full table lives in envMappings.

# Validation

Load validates the result. Struct tags are checked through
internal/validation (go-playground/validator), then each section's own
rules run: rate limit bounds, CORS origin shape, Redis address when enabled,
journal.Config.Validate and recommend.Config.Validate.

# Thread Safety

A loaded Config is never mutated by this package and may be shared.
*/
package config
