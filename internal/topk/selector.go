// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package topk

import (
	"slices"
)

// Entry is anything that can be ranked by a Selector.
type Entry interface {
	// Key identifies the entry; a Selector holds each key at most once.
	Key() int64
	// Value is the score; higher is better.
	Value() float64
}

// slot is a heap element with its position, used for O(log k) removal.
type slot[T Entry] struct {
	entry T
	index int
}

// Selector keeps the best k entries seen so far.
//
// It is a min-heap on score (ties: larger key is worse) with a parallel
// key map, so the current worst entry is available in O(1) and admission
// or eviction costs O(log k). Memory stays O(k) regardless of how many
// candidates are offered.
//
// A Selector is a per-request value and is not safe for concurrent use.
type Selector[T Entry] struct {
	heap  []*slot[T]
	byKey map[int64]*slot[T]
	k     int
}

// New returns a selector with capacity k. A capacity of zero or less admits
// nothing.
func New[T Entry](k int) *Selector[T] {
	if k < 0 {
		k = 0
	}
	return &Selector[T]{
		heap:  make([]*slot[T], 0, k),
		byKey: make(map[int64]*slot[T], k),
		k:     k,
	}
}

// worse reports whether a ranks below b: lower score, or equal score with a
// larger key.
func worse[T Entry](a, b T) bool {
	if a.Value() != b.Value() {
		return a.Value() < b.Value()
	}
	return a.Key() > b.Key()
}

// Offer tries to admit e and reports whether it was admitted.
//
// Entries whose key is already held are rejected. Below capacity every new
// key is admitted. At capacity e is admitted only if it ranks above the
// current minimum, which is evicted first. Ranking uses the same order as
// TopK: a strictly greater score wins, and on an equal score the smaller key
// wins. An equal-score entry with a smaller key therefore evicts the minimum,
// which keeps the admitted set independent of offer order.
func (s *Selector[T]) Offer(e T) bool {
	if s.k == 0 {
		return false
	}
	if _, dup := s.byKey[e.Key()]; dup {
		return false
	}

	if len(s.heap) >= s.k {
		if !worse(s.heap[0].entry, e) {
			return false
		}
		s.removeAt(0)
	}

	sl := &slot[T]{entry: e, index: len(s.heap)}
	s.heap = append(s.heap, sl)
	s.byKey[e.Key()] = sl
	s.bubbleUp(sl.index)
	return true
}

// OfferAll offers every entry in order.
func (s *Selector[T]) OfferAll(entries []T) {
	for _, e := range entries {
		s.Offer(e)
	}
}

// Merge re-offers every entry held by other.
func (s *Selector[T]) Merge(other *Selector[T]) {
	if other == nil {
		return
	}
	for _, sl := range other.heap {
		s.Offer(sl.entry)
	}
}

// TopK returns the admitted entries, best first. Equal scores order by
// ascending key.
func (s *Selector[T]) TopK() []T {
	out := make([]T, len(s.heap))
	for i, sl := range s.heap {
		out[i] = sl.entry
	}
	slices.SortFunc(out, func(a, b T) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		default:
			return 0
		}
	})
	return out
}

// PeekMin returns the current worst entry.
func (s *Selector[T]) PeekMin() (T, bool) {
	if len(s.heap) == 0 {
		var zero T
		return zero, false
	}
	return s.heap[0].entry, true
}

// MinScore is the score of the worst admitted entry, or 0 when empty.
func (s *Selector[T]) MinScore() float64 {
	if len(s.heap) == 0 {
		return 0
	}
	return s.heap[0].entry.Value()
}

// MaxScore is the best admitted score, or 0 when empty.
func (s *Selector[T]) MaxScore() float64 {
	if len(s.heap) == 0 {
		return 0
	}
	best := s.heap[0].entry.Value()
	for _, sl := range s.heap[1:] {
		best = max(best, sl.entry.Value())
	}
	return best
}

// AverageScore is the mean admitted score, or 0 when empty.
func (s *Selector[T]) AverageScore() float64 {
	if len(s.heap) == 0 {
		return 0
	}
	var sum float64
	for _, sl := range s.heap {
		sum += sl.entry.Value()
	}
	return sum / float64(len(s.heap))
}

// Contains reports whether key is held.
func (s *Selector[T]) Contains(key int64) bool {
	_, ok := s.byKey[key]
	return ok
}

// Keys returns the held keys in ascending order.
func (s *Selector[T]) Keys() []int64 {
	keys := make([]int64, 0, len(s.byKey))
	for k := range s.byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of admitted entries.
func (s *Selector[T]) Len() int { return len(s.heap) }

// Cap returns the capacity.
func (s *Selector[T]) Cap() int { return s.k }

// IsFull reports whether Len has reached capacity.
func (s *Selector[T]) IsFull() bool { return len(s.heap) >= s.k }

// Clear drops every entry, keeping the capacity.
func (s *Selector[T]) Clear() {
	s.heap = s.heap[:0]
	s.byKey = make(map[int64]*slot[T], s.k)
}

// Heap maintenance. Index 0 holds the worst entry.

func (s *Selector[T]) removeAt(i int) {
	n := len(s.heap) - 1
	sl := s.heap[i]
	delete(s.byKey, sl.entry.Key())

	if i == n {
		s.heap = s.heap[:n]
		return
	}

	s.heap[i] = s.heap[n]
	s.heap[i].index = i
	s.heap = s.heap[:n]
	if !s.bubbleUp(i) {
		s.bubbleDown(i)
	}
}

func (s *Selector[T]) bubbleUp(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(s.heap[i].entry, s.heap[parent].entry) {
			break
		}
		s.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

func (s *Selector[T]) bubbleDown(i int) {
	n := len(s.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && worse(s.heap[left].entry, s.heap[smallest].entry) {
			smallest = left
		}
		if right < n && worse(s.heap[right].entry, s.heap[smallest].entry) {
			smallest = right
		}
		if smallest == i {
			return
		}
		s.swap(i, smallest)
		i = smallest
	}
}

func (s *Selector[T]) swap(i, j int) {
	s.heap[i], s.heap[j] = s.heap[j], s.heap[i]
	s.heap[i].index = i
	s.heap[j].index = j
}
