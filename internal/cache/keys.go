// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package cache

import "strconv"

// Key is the constraint for Memo keys. String must be unique per key; it
// names the singleflight call and the second-level cache entry.
type Key interface {
	comparable
	String() string
}

// ID keys a cache by a single entity id.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Pair is an unordered pair of entity ids. Build it with PairOf so that
// (a, b) and (b, a) map to the same entry.
type Pair struct {
	Lo, Hi int64
}

// PairOf returns the normalized pair for a and b.
func PairOf(a, b int64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

func (p Pair) String() string {
	return strconv.FormatInt(p.Lo, 10) + ":" + strconv.FormatInt(p.Hi, 10)
}

// Touches reports whether id is either side of the pair.
func (p Pair) Touches(id int64) bool {
	return p.Lo == id || p.Hi == id
}
