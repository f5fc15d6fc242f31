// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package reranking

import (
	"context"
	"testing"
)

func TestNewMMR(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewMMR(lookupOf(), tt.lambda)
			if m.Lambda() != tt.wantLambda {
				t.Errorf("lambda = %f, want %f", m.Lambda(), tt.wantLambda)
			}
			if m.Name() != NameMMR {
				t.Errorf("Name() = %q, want %q", m.Name(), NameMMR)
			}
		})
	}
}

func TestMMRRerank(t *testing.T) {
	t.Parallel()

	lookup := lookupOf(
		product(1, "Electronics", "Acme", "wireless"),
		product(2, "Electronics", "Acme", "wireless"),
		product(3, "Books", "Pub", "fiction"),
	)

	tests := []struct {
		name   string
		lambda float64
		k      int
		want   []int64
	}{
		{"pure relevance keeps order", 1.0, 2, []int64{1, 2}},
		{"balanced demotes the duplicate", 0.5, 3, []int64{1, 3, 2}},
		{"k larger than candidates", 0.5, 10, []int64{1, 3, 2}},
		{"unknown products are not penalized", 0.5, 2, []int64{1, 2}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := lookup
			if i == 3 {
				l = lookupOf()
			}
			got := NewMMR(l, tt.lambda).Rerank(context.Background(), ranked(1, 2, 3), tt.k)
			assertIDs(t, got, tt.want)
		})
	}
}

func TestMMREmpty(t *testing.T) {
	t.Parallel()

	m := NewMMR(lookupOf(), 0.5)
	if got := m.Rerank(context.Background(), nil, 5); got != nil {
		t.Errorf("Rerank(nil) = %v, want nil", got)
	}
	if got := m.Rerank(context.Background(), ranked(1), 0); got != nil {
		t.Errorf("Rerank(k=0) = %v, want nil", got)
	}
}
