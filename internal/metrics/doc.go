// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package metrics provides Prometheus metrics for the recommendation engine.

Collectors are registered with the default registry through promauto and
exposed by the API at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation:
  - rankengine_recommend_requests_total{strategy, outcome}
  - rankengine_recommend_duration_seconds{strategy}
  - rankengine_recommend_result_size{strategy}
  - rankengine_strategy_failures_total{strategy}

Ingestion:
  - rankengine_interactions_ingested_total{type}
  - rankengine_entities_ingested_total{kind}
  - rankengine_graph_edges

Caches:
  - rankengine_cache_hits_total{cache}, rankengine_cache_misses_total{cache}
  - rankengine_cache_invalidations_total{cache}
  - rankengine_cache_remote_errors_total{cache, operation}

Training:
  - rankengine_training_runs_total{result}
  - rankengine_training_duration_seconds
  - rankengine_training_last_success_timestamp

Journal:
  - rankengine_journal_appends_total
  - rankengine_journal_errors_total{operation}
  - rankengine_journal_replayed_total

HTTP and circuit breakers:
  - rankengine_http_requests_total{method, route, status}
  - rankengine_http_request_duration_seconds{method, route}
  - rankengine_http_requests_in_flight
  - rankengine_circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - rankengine_circuit_breaker_requests_total{name, result}
  - rankengine_circuit_breaker_state_transitions_total{name, from_state, to_state}

# Example Queries

	# Share of requests served by the content fallback
	sum(rate(rankengine_recommend_requests_total{outcome="fallback"}[5m]))
	  / sum(rate(rankengine_recommend_requests_total[5m]))

	# Similarity cache hit rate
	rate(rankengine_cache_hits_total{cache="user_similarity"}[5m])
	  / (rate(rankengine_cache_hits_total{cache="user_similarity"}[5m])
	   + rate(rankengine_cache_misses_total{cache="user_similarity"}[5m]))
*/
package metrics
