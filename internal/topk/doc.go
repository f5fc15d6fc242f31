// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package topk provides a bounded selector that keeps the best k of a stream
of scored entries.

Every recommender funnels its candidates through a Selector so that the
memory used per request is proportional to the number of results asked for,
not to the catalog size:

	sel := topk.New[*models.Recommendation](10)
	for _, rec := range candidates {
		sel.Offer(rec)
	}
	best := sel.TopK() // descending score, ties by ascending product id

A key is admitted at most once. When the selector is full a candidate
replaces the current minimum only if it ranks strictly above it, where an
equal score with a smaller key counts as ranking above. The final content is
therefore independent of offer order.
*/
package topk
