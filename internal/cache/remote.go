// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rankengine/internal/metrics"
)

// ErrMiss is returned by Remote.Get when the key is absent.
var ErrMiss = errors.New("cache: miss")

// Remote is a shared byte store used as a second cache level. Incr atomically
// increments the counter at key and returns the new value; Memo uses it to
// reserve a private namespace.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisConfig holds connection settings for RedisStore.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// RedisStore is a Remote backed by Redis. Every call goes through a circuit
// breaker so that an unavailable Redis costs one fast rejection per lookup
// instead of a network timeout.
type RedisStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	name   string
	logger zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) { //nolint:gocritic // zerolog.Logger is passed by value by convention
	if cfg.Addr == "" {
		return nil, errors.New("redis: address is required")
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dial,
		ReadTimeout:  remoteTimeout,
		WriteTimeout: remoteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // connection never became usable
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	s := &RedisStore{
		client: client,
		name:   "redis-similarity",
		logger: logger.With().Str("component", "redis-cache").Logger(),
	}
	s.cb = newBreaker(s.name, s.logger)
	return s, nil
}

// newBreaker opens after 60% failures over at least 10 requests in a minute
// and probes again after 30 seconds. A Redis miss is not a failure.
func newBreaker(name string, logger zerolog.Logger) *gobreaker.CircuitBreaker[[]byte] { //nolint:gocritic // zerolog.Logger is passed by value by convention
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
}

func (s *RedisStore) execute(fn func() ([]byte, error)) ([]byte, error) {
	b, err := s.cb.Execute(fn)
	switch {
	case err == nil, errors.Is(err, redis.Nil):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
	}
	return b, err
}

// Get implements Remote.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.execute(func() ([]byte, error) {
		return s.client.Get(ctx, key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

// Set implements Remote.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.execute(func() ([]byte, error) {
		return nil, s.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// Delete implements Remote.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	_, err := s.execute(func() ([]byte, error) {
		return nil, s.client.Del(ctx, key).Err()
	})
	return err
}

// Incr implements Remote.
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	_, err := s.execute(func() ([]byte, error) {
		var err error
		n, err = s.client.Incr(ctx, key).Result()
		return nil, err
	})
	return n, err
}

// State returns the breaker state as a string.
func (s *RedisStore) State() string {
	return stateToString(s.cb.State())
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
