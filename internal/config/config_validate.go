// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/rankengine/internal/validation"
)

// validLogLevels contains valid log level values
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats contains valid log format values
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that the configuration is complete and consistent.
// Struct tags are checked first, then the cross-field rules of each section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	if err := c.validateHTTP(); err != nil {
		return err
	}

	if err := c.validateRedis(); err != nil {
		return err
	}

	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	return c.validateLogging()
}

// validateHTTP validates rate limiting and CORS settings
func (c *Config) validateHTTP() error {
	if !c.HTTP.RateLimitDisabled {
		if c.HTTP.RateLimitRequests < 1 || c.HTTP.RateLimitRequests > 100000 {
			return fmt.Errorf("RANKENGINE_RATE_LIMIT_REQUESTS must be between 1 and 100000, got %d", c.HTTP.RateLimitRequests)
		}
		if c.HTTP.RateLimitWindow <= 0 {
			return fmt.Errorf("RANKENGINE_RATE_LIMIT_WINDOW must be positive, got %v", c.HTTP.RateLimitWindow)
		}
	}
	for _, origin := range c.HTTP.CORSOrigins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("RANKENGINE_CORS_ORIGINS entry %q must be * or start with http:// or https://", origin)
		}
	}
	return nil
}

// validateRedis validates the shared cache settings (only if enabled)
func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("RANKENGINE_REDIS_ADDR is required when RANKENGINE_REDIS_ENABLED=true")
	}
	return nil
}

// validateLogging validates the logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("RANKENGINE_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("RANKENGINE_LOG_FORMAT must be one of: json, console")
	}
	return nil
}
