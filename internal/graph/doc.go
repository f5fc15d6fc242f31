// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package graph implements the weighted bipartite user-product interaction
// graph and the traversal algorithms the recommenders build on.
//
// User and product identifiers overlap as plain integers, so every node is
// addressed by a tagged NodeID (kind plus id) and stored in one arena map.
//
// Edge weights follow overwrite semantics: the most recent AddInteraction
// for a pair wins. Similarity vectors built from the interaction log sum
// weights instead (see internal/similarity). Both behaviors are relied on
// by the scorers.
//
// Query methods never fail on unknown ids; they return empty or zero values.
// Ordering is deterministic: neighbor iteration and rankings break ties by
// ascending id.
package graph
