// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package models defines the catalog entities shared by every layer of the
// recommendation engine: users, products, interactions and the ranked
// recommendations produced for them.
//
// Entities carry both JSON tags (HTTP API and journal encoding) and
// validate tags consumed by internal/validation at ingestion time.
//
// # Interaction Weights
//
// Every interaction type maps to a fixed weight used by the graph and the
// similarity vectors:
//
//	VIEW      1
//	WISHLIST  2
//	CART_ADD  3
//	PURCHASE  5
//	RATING    the rating value
//	others    1
//
// # Ordering
//
// Recommendations order by descending score. Equal scores order by
// ascending product id so that results are reproducible across runs; see
// Less.
package models
