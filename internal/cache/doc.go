// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package cache provides the concurrent get-or-compute caches used for
similarity scores and user profiles.

# Memo

Memo is a sharded map keyed by any comparable type with a unique String
form. Misses are computed once per key even under concurrent callers:

	sims := cache.NewMemo[cache.Pair, float64]("user_similarity")
	s, err := sims.GetOrCompute(ctx, cache.PairOf(u1, u2), func() (float64, error) {
	    return similarity.Cosine(v1, v2), nil
	})

Pair keys are unordered, so a score computed for (a, b) is also returned
for (b, a). Invalidation is explicit:

	sims.InvalidateFunc(func(p cache.Pair) bool { return p.Touches(userID) })

# Second level

A Remote, typically RedisStore, can back a Memo. Values are encoded as JSON.
The remote level is advisory: a miss, an error or an open circuit breaker
all fall back to computing the value in process.

Each Memo reserves its own key namespace from the store's shared counter when
it is created, so processes sharing a Redis, or one process before and after
a restart, never read each other's values.
*/
package cache
