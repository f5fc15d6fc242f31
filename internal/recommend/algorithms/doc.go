// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package algorithms implements the scoring strategies combined by the
// hybrid engine.
//
// # Strategies
//
// Collaborative filtering:
//   - UserBased: peers found through the interaction graph, weighted by
//     cosine similarity of their interaction vectors
//   - ItemBased: products whose interaction vectors resemble the user's
//     history, weighted by the user's edge weights
//   - MatrixFactorization: SGD-trained latent factors (gonum matrices)
//
// Content-based filtering:
//   - ContentBased: per-user attribute profile (category, brand, price
//     bucket, tags), plus trending-in-preferred-categories and
//     similar-product expansion
//   - TrendingInCategory: engagement ranking within one category
//
// Baseline:
//   - Popularity: graph degree ordering with engagement scores
//
// # Data Access
//
// Strategies read a *catalog.Catalog directly. The catalog is not safe for
// concurrent mutation, so callers must hold the owning engine's read lock
// for the duration of a call. Similarity pairs and content profiles are
// memoized in internal/cache; the engine invalidates the affected entries
// on ingestion.
//
// # Results
//
// Every strategy returns at most k recommendations, best first, ties by
// ascending product id, each carrying its algorithm tag, raw score
// components and structured reasons. Unknown users yield empty results,
// never errors. SafeRecommend turns strategy failures into empty results.
//
// # Thread Safety
//
// Strategies hold no per-request state and may be called concurrently.
// MatrixFactorization.Train is serialized with TryLock and publishes the
// trained model atomically.
package algorithms
