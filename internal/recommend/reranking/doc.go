// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package reranking post-processes scored recommendation lists.
//
// Rerankers run after a strategy has produced a relevance-ordered candidate
// list, usually over-fetched, and choose the final k entries:
//
//	Strategy -> Candidates (3k) -> Filter -> Reranker -> Final (k)
//
// # Rerankers
//
// CategoryCaps (the default diversifier) walks the candidates in score order
// and admits an item while fewer than max(1, k/3) admitted items share its
// category and fewer than max(1, k/2) share its brand. A product without a
// category or brand is never limited by that attribute. Remaining slots are
// backfilled with the best leftovers. Admitted items carry a
// diverse_selection reason.
//
// MMR applies Maximal Marginal Relevance over product attributes:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// where sim is the Jaccard similarity of the category, brand and tag sets.
//
// # Filters
//
// Filter compiles a CEL expression once and evaluates it per candidate.
// Expressions see three variables:
//
//	product    map with id, name, category, brand, price, rating,
//	           review_count, tags, attributes, in_stock, view_count,
//	           purchase_count
//	score      the candidate score
//	algorithm  the algorithm tag
//
// Example:
//
//	product.price < 100.0 && product.in_stock
//	"wireless" in product.tags && score > 0.2
//
// An expression that fails at evaluation time, for example by reading a
// missing attribute key, rejects the candidate.
//
// # Thread Safety
//
// Rerankers and compiled filters are immutable and safe for concurrent use.
package reranking
