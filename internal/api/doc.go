// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package api serves the recommendation engine over HTTP with chi.

# Routes

	POST /api/v1/users                              ingest a user
	GET  /api/v1/users/{id}                         look up a user
	GET  /api/v1/users/{id}/recommendations         recommend (?k=&strategy=&filter=&diversify=&exclude=)
	GET  /api/v1/users/{id}/peers                   most similar users by behavior and recency (?k=)
	POST /api/v1/products                           ingest a product
	GET  /api/v1/products/{id}                      look up a product
	GET  /api/v1/products/popular                   most popular (?k=)
	POST /api/v1/interactions                       ingest one interaction
	POST /api/v1/interactions/batch                 ingest interactions in order
	GET  /api/v1/categories/{category}/trending     trending in a category (?k=)
	GET  /api/v1/graph/communities                  user groups linked through shared products
	GET  /api/v1/graph/users/{id}                   graph neighborhood of a user
	GET  /api/v1/graph/users/{id}/path/{product}    shortest user-product path
	GET  /api/v1/weights                            current hybrid weights
	PUT  /api/v1/weights                            replace hybrid weights
	GET  /api/v1/stats                              engine statistics
	POST /api/v1/admin/train                        start training (?wait=true blocks)
	POST /api/v1/admin/cache/clear                  drop similarity and profile caches
	GET  /healthz                                   liveness
	GET  /metrics                                   Prometheus

# Middleware

Every route gets request IDs, panic recovery, CORS (go-chi/cors) and
Prometheus instrumentation. /api/v1 additionally gets a per-IP rate limit
(go-chi/httprate) and a request timeout.

# Responses

Bodies are encoded with goccy/go-json. Success:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}

Failure:

	{"success": false, "error": {"code": "BAD_REQUEST", "message": "...", "details": {...}}}

Invalid input maps to 400, unknown entities to 404, a training run already
in progress to 409, an expired request deadline to 503 and anything else
to 500.
*/
package api
