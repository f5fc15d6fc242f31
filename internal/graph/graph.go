// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package graph

import (
	"cmp"
	"slices"
)

// Graph is a weighted bipartite user-product graph.
//
// All nodes live in a single arena keyed by NodeID. The weight of an edge is
// stored once per (user, product) pair, so reads from either side agree.
// Repeated AddInteraction calls on the same pair overwrite the weight.
//
// Graph is not safe for concurrent mutation; the owning catalog serializes
// writers.
type Graph struct {
	nodes    map[NodeID]*Node
	weights  map[edgeKey]float64
	users    int
	products int
	edges    int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[NodeID]*Node),
		weights: make(map[edgeKey]float64),
	}
}

// Stats is a point-in-time summary of the graph.
type Stats struct {
	Users    int     `json:"users"`
	Products int     `json:"products"`
	Edges    int     `json:"edges"`
	Density  float64 `json:"density"`
}

// AddUser creates a user node. Repeated calls are no-ops.
func (g *Graph) AddUser(id int64) {
	g.ensure(UserNode(id))
}

// AddProduct creates a product node. Repeated calls are no-ops.
func (g *Graph) AddProduct(id int64) {
	g.ensure(ProductNode(id))
}

func (g *Graph) ensure(id NodeID) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := newNode(id)
	g.nodes[id] = n
	if id.Kind == KindUser {
		g.users++
	} else {
		g.products++
	}
	return n
}

// AddInteraction upserts both nodes and sets the edge weight.
// The edge counter grows only when the pair is new.
func (g *Graph) AddInteraction(user, product int64, weight float64) {
	u := g.ensure(UserNode(user))
	p := g.ensure(ProductNode(product))

	key := edgeKey{user: user, product: product}
	if _, exists := g.weights[key]; !exists {
		g.edges++
	}
	u.neighbors[product] = struct{}{}
	p.neighbors[user] = struct{}{}
	g.weights[key] = weight
}

// UpdateWeight changes the weight of an existing edge. It returns false
// when the edge does not exist.
func (g *Graph) UpdateWeight(user, product int64, weight float64) bool {
	key := edgeKey{user: user, product: product}
	if _, ok := g.weights[key]; !ok {
		return false
	}
	g.weights[key] = weight
	return true
}

// HasEdge reports whether the user interacted with the product.
func (g *Graph) HasEdge(user, product int64) bool {
	_, ok := g.weights[edgeKey{user: user, product: product}]
	return ok
}

// Weight returns the edge weight, or 0 when the edge does not exist.
func (g *Graph) Weight(user, product int64) float64 {
	return g.weights[edgeKey{user: user, product: product}]
}

// Node returns the arena entry for id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Degree returns the neighbor count of id, 0 when unknown.
func (g *Graph) Degree(id NodeID) int {
	if n, ok := g.nodes[id]; ok {
		return n.Degree()
	}
	return 0
}

// Neighbors returns the adjacent ids of the opposite kind in ascending order.
func (g *Graph) Neighbors(id NodeID) []int64 {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return n.sortedNeighbors()
}

// NeighborSet returns a copy of the adjacency set of id.
func (g *Graph) NeighborSet(id NodeID) map[int64]struct{} {
	n, ok := g.nodes[id]
	if !ok {
		return map[int64]struct{}{}
	}
	out := make(map[int64]struct{}, len(n.neighbors))
	for k := range n.neighbors {
		out[k] = struct{}{}
	}
	return out
}

// UserProducts returns the products a user interacted with.
func (g *Graph) UserProducts(user int64) []int64 {
	return g.Neighbors(UserNode(user))
}

// ProductUsers returns the users who interacted with a product.
func (g *Graph) ProductUsers(product int64) []int64 {
	return g.Neighbors(ProductNode(product))
}

// FindSimilarUsers runs a breadth-first expansion user -> product -> user.
// Users reached within maxDepth user hops are returned in discovery order,
// excluding the start user. Neighbors are visited in ascending id order.
func (g *Graph) FindSimilarUsers(user int64, maxDepth int) []int64 {
	start := UserNode(user)
	if !g.HasNode(start) || maxDepth <= 0 {
		return nil
	}

	type entry struct {
		id    int64
		depth int
	}

	var found []int64
	visited := map[int64]struct{}{user: {}}
	queue := []entry{{id: user}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, product := range g.UserProducts(cur.id) {
			for _, other := range g.ProductUsers(product) {
				if _, seen := visited[other]; seen {
					continue
				}
				visited[other] = struct{}{}
				found = append(found, other)
				queue = append(queue, entry{id: other, depth: cur.depth + 1})
			}
		}
	}
	return found
}

// ExploreNeighborhood returns every user reachable from user through shared
// products, excluding user itself. The traversal is depth-first with an
// explicit stack.
func (g *Graph) ExploreNeighborhood(user int64) []int64 {
	if !g.HasNode(UserNode(user)) {
		return nil
	}

	var out []int64
	visited := map[int64]struct{}{user: {}}
	stack := []int64{user}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur != user {
			out = append(out, cur)
		}
		products := g.UserProducts(cur)
		for i := len(products) - 1; i >= 0; i-- {
			users := g.ProductUsers(products[i])
			for j := len(users) - 1; j >= 0; j-- {
				if _, seen := visited[users[j]]; seen {
					continue
				}
				visited[users[j]] = struct{}{}
				stack = append(stack, users[j])
			}
		}
	}
	return out
}

// GraphSimilarity returns the Jaccard similarity of two users' product sets.
// Unknown users score 0.
func (g *Graph) GraphSimilarity(u1, u2 int64) float64 {
	a, okA := g.nodes[UserNode(u1)]
	b, okB := g.nodes[UserNode(u2)]
	if !okA || !okB {
		return 0
	}
	return jaccard(a.neighbors, b.neighbors)
}

func jaccard(a, b map[int64]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for id := range small {
		if _, ok := large[id]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// MostPopular returns up to k products ordered by degree, ties by ascending id.
func (g *Graph) MostPopular(k int) []int64 {
	return g.topByDegree(KindProduct, k, g.degreeOf)
}

// MostActive returns up to k users ordered by degree, ties by ascending id.
func (g *Graph) MostActive(k int) []int64 {
	return g.topByDegree(KindUser, k, g.degreeOf)
}

func (g *Graph) degreeOf(id NodeID) float64 {
	return float64(g.Degree(id))
}

// topByDegree ranks nodes of one kind by score descending, ties ascending id.
func (g *Graph) topByDegree(kind Kind, k int, score func(NodeID) float64) []int64 {
	if k <= 0 {
		return nil
	}
	type scored struct {
		id    int64
		score float64
	}
	all := make([]scored, 0, len(g.nodes))
	for id := range g.nodes {
		if id.Kind == kind {
			all = append(all, scored{id: id.ID, score: score(id)})
		}
	}
	slices.SortFunc(all, func(a, b scored) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.id, b.id)
	})
	if len(all) > k {
		all = all[:k]
	}
	out := make([]int64, len(all))
	for i, s := range all {
		out[i] = s.id
	}
	return out
}

// Density is edges / (users * products), or 0 for an empty graph.
func (g *Graph) Density() float64 {
	possible := g.users * g.products
	if possible == 0 {
		return 0
	}
	return float64(g.edges) / float64(possible)
}

// Users returns all user ids in ascending order.
func (g *Graph) Users() []int64 { return g.idsOf(KindUser) }

// Products returns all product ids in ascending order.
func (g *Graph) Products() []int64 { return g.idsOf(KindProduct) }

func (g *Graph) idsOf(kind Kind) []int64 {
	out := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		if id.Kind == kind {
			out = append(out, id.ID)
		}
	}
	slices.Sort(out)
	return out
}

// NumUsers returns the user node count.
func (g *Graph) NumUsers() int { return g.users }

// NumProducts returns the product node count.
func (g *Graph) NumProducts() int { return g.products }

// NumEdges returns the number of distinct user-product pairs.
func (g *Graph) NumEdges() int { return g.edges }

// Stats returns counts and density.
func (g *Graph) Stats() Stats {
	return Stats{
		Users:    g.users,
		Products: g.products,
		Edges:    g.edges,
		Density:  g.Density(),
	}
}
