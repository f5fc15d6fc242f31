// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package recommend implements the hybrid product recommendation engine.
//
// # Architecture
//
// The Engine owns a catalog (users, products, the append-only interaction
// log and the bipartite interaction graph) and the strategies that score
// against it:
//
//   - Collaborative Filtering: user-based, item-based, matrix factorization
//   - Content-Based Filtering: per-user attribute profiles, similar products
//   - Popularity and category trending baselines
//   - Graph neighbors: Jaccard-weighted two-hop peers
//
// The Hybrid combiner runs the collaborative, content, popularity and
// trending signals concurrently and fuses them with weights:
//
//	score(p) = sum_s w_s * score_s(p) / sum_s w_s   (over signals returning p)
//
// # Routing
//
// Recommend with StrategyAuto picks a path from the user's interaction
// count:
//
//   - 0 interactions: popularity
//   - 1 to 4: content-based
//   - 5 or more: hybrid, falling back to content when it yields nothing
//
// Results can be filtered with a CEL expression and diversified with the
// configured re-ranker (category and brand caps, or MMR).
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger,
//	    recommend.WithJournal(j))
//
//	_ = engine.AddProduct(ctx, product)
//	_ = engine.IngestInteraction(ctx, models.Interaction{
//	    UserID: 1, ProductID: 42, Type: models.InteractionPurchase,
//	})
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: 1,
//	    K:      10,
//	    Filter: "product.price < 100.0",
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Ingestion takes an exclusive lock;
// scoring shares a read lock for the whole request, so a request never sees
// a half-applied interaction. Matrix factorization trains on a snapshot
// outside the lock and swaps the finished model in atomically.
//
// # Errors
//
// Invalid input wraps ErrInvalidArgument; lookups of unknown entities wrap
// ErrNotFound. Scoring never fails because of one strategy: failures and
// panics are logged, counted and turned into empty signals.
package recommend
