// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package middleware holds the HTTP middleware rankengine adds on top of the
chi and go-chi ecosystem:

  - RequestID: X-Request-ID propagation into logging.Ctx
  - PrometheusMetrics: request counters and latency histograms labeled by
    chi route pattern

Recovery, CORS, rate limiting, timeouts and compression come from chi,
go-chi/cors and go-chi/httprate; see internal/api for the full stack.
*/
package middleware
