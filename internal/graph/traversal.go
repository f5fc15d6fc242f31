// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package graph

import (
	"cmp"
	"math/rand/v2"
	"slices"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// KHopNeighbors returns every node within k hops of start across the
// bipartite graph, excluding start. Products of a user are 1 hop away,
// co-interacting users 2 hops. The result is ordered by hop distance, then
// kind, then id.
func (g *Graph) KHopNeighbors(start NodeID, k int) []NodeID {
	if k <= 0 || !g.HasNode(start) {
		return nil
	}

	dist := map[NodeID]int{start: 0}
	frontier := []NodeID{start}
	var out []NodeID

	for hop := 1; hop <= k && len(frontier) > 0; hop++ {
		var next []NodeID
		for _, cur := range frontier {
			for _, nb := range g.Neighbors(cur) {
				id := NodeID{Kind: cur.Kind.Other(), ID: nb}
				if _, seen := dist[id]; seen {
					continue
				}
				dist[id] = hop
				next = append(next, id)
			}
		}
		slices.SortFunc(next, compareNodeIDs)
		out = append(out, next...)
		frontier = next
	}
	return out
}

func compareNodeIDs(a, b NodeID) int {
	if a.Kind != b.Kind {
		return cmp.Compare(a.Kind, b.Kind)
	}
	return cmp.Compare(a.ID, b.ID)
}

// ShortestPath returns the node sequence of a shortest path from a user to a
// product, inclusive of both ends. It returns nil when either node is
// unknown or the product is unreachable.
func (g *Graph) ShortestPath(user, product int64) []NodeID {
	start, target := UserNode(user), ProductNode(product)
	if !g.HasNode(start) || !g.HasNode(target) {
		return nil
	}

	parent := map[NodeID]NodeID{}
	visited := map[NodeID]struct{}{start: {}}
	queue := []NodeID{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return reconstructPath(parent, start, target)
		}
		for _, nb := range g.Neighbors(cur) {
			id := NodeID{Kind: cur.Kind.Other(), ID: nb}
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			parent[id] = cur
			queue = append(queue, id)
		}
	}
	return nil
}

func reconstructPath(parent map[NodeID]NodeID, start, end NodeID) []NodeID {
	path := []NodeID{end}
	for cur := end; cur != start; {
		cur = parent[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// ConnectedComponents groups users that are linked through shared products.
// Each component is sorted ascending; components are ordered by their
// smallest user id. Users without interactions form singleton components.
func (g *Graph) ConnectedComponents() [][]int64 {
	// Dense ids keep user and product identifiers apart inside gonum.
	index := make(map[NodeID]int64, len(g.nodes))
	reverse := make(map[int64]NodeID, len(g.nodes))
	ug := simple.NewUndirectedGraph()

	nodeFor := func(id NodeID) gonumgraph.Node {
		if dense, ok := index[id]; ok {
			return ug.Node(dense)
		}
		n := ug.NewNode()
		ug.AddNode(n)
		index[id] = n.ID()
		reverse[n.ID()] = id
		return n
	}

	for _, u := range g.Users() {
		un := nodeFor(UserNode(u))
		for _, p := range g.UserProducts(u) {
			pn := nodeFor(ProductNode(p))
			ug.SetEdge(ug.NewEdge(un, pn))
		}
	}

	var components [][]int64
	for _, cc := range topo.ConnectedComponents(ug) {
		var users []int64
		for _, n := range cc {
			if id := reverse[n.ID()]; id.Kind == KindUser {
				users = append(users, id.ID)
			}
		}
		if len(users) == 0 {
			continue
		}
		slices.Sort(users)
		components = append(components, users)
	}
	slices.SortFunc(components, func(a, b []int64) int {
		return cmp.Compare(a[0], b[0])
	})
	return components
}

// ClusteringCoefficient is the fraction of pairs among a user's
// co-interaction neighbors that themselves share at least one product.
// Users with fewer than two products or two neighbors score 0.
func (g *Graph) ClusteringCoefficient(user int64) float64 {
	products := g.UserProducts(user)
	if len(products) < 2 {
		return 0
	}

	neighborSet := make(map[int64]struct{})
	for _, p := range products {
		for _, u := range g.ProductUsers(p) {
			if u != user {
				neighborSet[u] = struct{}{}
			}
		}
	}
	if len(neighborSet) < 2 {
		return 0
	}

	neighbors := make([]int64, 0, len(neighborSet))
	for u := range neighborSet {
		neighbors = append(neighbors, u)
	}

	triangles := 0
	for i := 0; i < len(neighbors); i++ {
		a := g.nodes[UserNode(neighbors[i])]
		for j := i + 1; j < len(neighbors); j++ {
			b := g.nodes[UserNode(neighbors[j])]
			if sharesNeighbor(a, b) {
				triangles++
			}
		}
	}
	possible := len(neighbors) * (len(neighbors) - 1) / 2
	return float64(triangles) / float64(possible)
}

func sharesNeighbor(a, b *Node) bool {
	small, large := a.neighbors, b.neighbors
	if len(small) > len(large) {
		small, large = large, small
	}
	for id := range small {
		if _, ok := large[id]; ok {
			return true
		}
	}
	return false
}

// InfluentialUsers ranks users by degree * (1 + clustering coefficient).
func (g *Graph) InfluentialUsers(k int) []int64 {
	return g.topByDegree(KindUser, k, func(id NodeID) float64 {
		return float64(g.Degree(id)) * (1 + g.ClusteringCoefficient(id.ID))
	})
}

// RandomWalk performs numWalks walks of up to walkLength steps starting at
// user, alternating to a random product and then a random user of that
// product. It returns product visit frequencies normalized to sum to 1.
// The caller supplies rng so walks are reproducible.
func (g *Graph) RandomWalk(user int64, walkLength, numWalks int, rng *rand.Rand) map[int64]float64 {
	visits := make(map[int64]float64)
	if !g.HasNode(UserNode(user)) || rng == nil {
		return visits
	}

	for w := 0; w < numWalks; w++ {
		cur := user
		for step := 0; step < walkLength; step++ {
			products := g.UserProducts(cur)
			if len(products) == 0 {
				break
			}
			p := products[rng.IntN(len(products))]
			visits[p]++

			users := g.ProductUsers(p)
			if len(users) == 0 {
				break
			}
			cur = users[rng.IntN(len(users))]
		}
	}

	var total float64
	for _, v := range visits {
		total += v
	}
	if total > 0 {
		for k, v := range visits {
			visits[k] = v / total
		}
	}
	return visits
}
