// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package graph

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestKHopNeighbors(t *testing.T) {
	t.Parallel()

	g := buildGraph(map[int64][]int64{
		1: {10},
		2: {10, 11},
	})

	tests := []struct {
		name string
		k    int
		want []NodeID
	}{
		{"zero hops", 0, nil},
		{"products", 1, []NodeID{ProductNode(10)}},
		{"co-users", 2, []NodeID{ProductNode(10), UserNode(2)}},
		{"second products", 3, []NodeID{ProductNode(10), UserNode(2), ProductNode(11)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := g.KHopNeighbors(UserNode(1), tt.k)
			if !slices.Equal(got, tt.want) {
				t.Errorf("KHopNeighbors(k=%d) = %v, want %v", tt.k, got, tt.want)
			}
		})
	}
}

func TestShortestPath(t *testing.T) {
	t.Parallel()

	g := buildGraph(map[int64][]int64{
		1: {10},
		2: {10, 11},
		3: {99},
	})

	got := g.ShortestPath(1, 11)
	want := []NodeID{UserNode(1), ProductNode(10), UserNode(2), ProductNode(11)}
	if !slices.Equal(got, want) {
		t.Errorf("ShortestPath(1, 11) = %v, want %v", got, want)
	}

	if got := g.ShortestPath(1, 10); len(got) != 2 {
		t.Errorf("direct path length = %d, want 2", len(got))
	}
	if g.ShortestPath(1, 99) != nil {
		t.Error("unreachable product should give nil path")
	}
	if g.ShortestPath(1, 12345) != nil {
		t.Error("unknown product should give nil path")
	}
}

func TestConnectedComponents(t *testing.T) {
	t.Parallel()

	g := buildGraph(map[int64][]int64{
		1: {10},
		2: {10},
		3: {20},
		4: {20, 21},
	})
	g.AddUser(9)

	got := g.ConnectedComponents()
	want := [][]int64{{1, 2}, {3, 4}, {9}}
	if len(got) != len(want) {
		t.Fatalf("components = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClusteringCoefficient(t *testing.T) {
	t.Parallel()

	// User 1 neighbors: 2 (via 10), 3 (via 11), 4 (via 11).
	// Pairs: (2,3) share nothing, (2,4) share 12, (3,4) share 11.
	g := buildGraph(map[int64][]int64{
		1: {10, 11},
		2: {10, 12},
		3: {11},
		4: {11, 12},
	})
	got := g.ClusteringCoefficient(1)
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("ClusteringCoefficient(1) = %v, want 2/3", got)
	}
	if g.ClusteringCoefficient(3) != 0 {
		t.Error("single-product user should have coefficient 0")
	}
}

func TestInfluentialUsers(t *testing.T) {
	t.Parallel()

	g := buildGraph(map[int64][]int64{
		1: {10, 11, 12},
		2: {10},
		3: {11},
	})
	got := g.InfluentialUsers(1)
	if !slices.Equal(got, []int64{1}) {
		t.Errorf("InfluentialUsers(1) = %v, want [1]", got)
	}
}

func TestRandomWalkDeterministic(t *testing.T) {
	t.Parallel()

	g := buildGraph(map[int64][]int64{
		1: {10, 11},
		2: {11, 12},
	})

	a := g.RandomWalk(1, 5, 20, rand.New(rand.NewPCG(42, 42)))
	b := g.RandomWalk(1, 5, 20, rand.New(rand.NewPCG(42, 42)))

	var total float64
	for p, v := range a {
		total += v
		if b[p] != v {
			t.Errorf("walk not reproducible for product %d: %v vs %v", p, v, b[p])
		}
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("frequencies sum to %v, want 1", total)
	}
	if len(g.RandomWalk(99, 5, 5, rand.New(rand.NewPCG(1, 1)))) != 0 {
		t.Error("unknown user should produce no visits")
	}
}
