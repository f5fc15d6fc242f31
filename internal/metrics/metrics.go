// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Recommendation requests, latency and result sizes
// - Interaction ingestion
// - Strategy failures
// - Similarity and profile caches
// - Matrix factorization training
// - Interaction journal
// - HTTP API and circuit breakers

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"strategy", "outcome"}, // outcome: "ok", "empty", "error", "fallback"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankengine_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"strategy"},
	)

	RecommendResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankengine_recommend_result_size",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"strategy"},
	)

	StrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_strategy_failures_total",
			Help: "Total number of strategy runs that failed or panicked and were degraded to empty results",
		},
		[]string{"strategy"},
	)

	// Ingestion Metrics
	InteractionsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_interactions_ingested_total",
			Help: "Total number of interactions ingested",
		},
		[]string{"type"},
	)

	EntitiesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_entities_ingested_total",
			Help: "Total number of users and products ingested",
		},
		[]string{"kind"}, // "user", "product"
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rankengine_graph_edges",
			Help: "Current number of user-product edges in the interaction graph",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "user_similarity", "item_similarity", "profile"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_cache_invalidations_total",
			Help: "Total number of cache entries dropped by invalidation",
		},
		[]string{"cache"},
	)

	CacheRemoteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_cache_remote_errors_total",
			Help: "Total number of second-level cache errors that degraded to local computation",
		},
		[]string{"cache", "operation"},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_training_runs_total",
			Help: "Total number of matrix factorization training runs",
		},
		[]string{"result"}, // "success", "error", "skipped"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankengine_training_duration_seconds",
			Help:    "Duration of matrix factorization training runs",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rankengine_training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Journal Metrics
	JournalAppends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rankengine_journal_appends_total",
			Help: "Total number of interactions appended to the journal",
		},
	)

	JournalErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_journal_errors_total",
			Help: "Total number of journal errors",
		},
		[]string{"operation"}, // "append", "replay", "gc"
	)

	JournalReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rankengine_journal_replayed_total",
			Help: "Total number of journal records replayed at start-up",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankengine_http_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rankengine_http_requests_in_flight",
			Help: "Current number of HTTP API requests being served",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rankengine_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankengine_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordRecommendation records one recommendation request.
func RecordRecommendation(strategy, outcome string, duration time.Duration, results int) {
	RecommendRequests.WithLabelValues(strategy, outcome).Inc()
	RecommendDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	RecommendResultSize.WithLabelValues(strategy).Observe(float64(results))
}

// RecordStrategyFailure counts a degraded strategy run.
func RecordStrategyFailure(strategy string) {
	StrategyFailures.WithLabelValues(strategy).Inc()
}

// RecordInteraction counts an ingested interaction by its type name.
func RecordInteraction(interactionType string) {
	InteractionsIngested.WithLabelValues(interactionType).Inc()
}

// RecordEntity counts an ingested user or product.
func RecordEntity(kind string) {
	EntitiesIngested.WithLabelValues(kind).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheInvalidation counts entries dropped from a cache.
func RecordCacheInvalidation(cache string, n int) {
	if n > 0 {
		CacheInvalidations.WithLabelValues(cache).Add(float64(n))
	}
}

// RecordCacheRemoteError counts a failed second-level cache operation.
func RecordCacheRemoteError(cache, operation string) {
	CacheRemoteErrors.WithLabelValues(cache, operation).Inc()
}

// RecordTraining records a matrix factorization training attempt.
func RecordTraining(duration time.Duration, err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("error").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
	TrainingDuration.Observe(duration.Seconds())
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordTrainingSkipped counts a training tick that found a run in progress.
func RecordTrainingSkipped() {
	TrainingRuns.WithLabelValues("skipped").Inc()
}

// RecordJournalAppend records a journal append.
func RecordJournalAppend(err error) {
	if err != nil {
		JournalErrors.WithLabelValues("append").Inc()
		return
	}
	JournalAppends.Inc()
}

// RecordJournalError counts a journal failure outside of appends.
func RecordJournalError(operation string) {
	JournalErrors.WithLabelValues(operation).Inc()
}

// RecordAPIRequest records an HTTP API request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
