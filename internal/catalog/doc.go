// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package catalog owns the mutable state every recommender reads: the user and
product stores, the append-only interaction log and the interaction graph.

A Catalog is not safe for concurrent use. The recommendation engine wraps it
in a sync.RWMutex: ingestion takes the write lock, scoring takes the read
lock. Read accessors return the stored pointers; callers holding only the
read lock must treat them as immutable.

Ingestion applies an interaction in one step:

  - the log gets the interaction appended and indexed by user and product
  - the user's viewed, purchased or wishlist set (or running rating) changes
  - the product's view, purchase or wishlist counter is incremented
  - the graph edge weight is set to the interaction weight

The graph keeps the latest weight per (user, product) pair while vectors
built from the log sum every interaction on the pair. Both views are kept on
purpose; collaborative scoring reads the graph for peer weights and the log
for similarity.
*/
package catalog
