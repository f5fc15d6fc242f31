// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package graph

import (
	"fmt"
	"slices"
)

// Kind distinguishes the two sides of the bipartite graph.
type Kind uint8

const (
	// KindUser marks user nodes.
	KindUser Kind = iota + 1
	// KindProduct marks product nodes.
	KindProduct
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindProduct:
		return "product"
	default:
		return "unknown"
	}
}

// Other returns the opposite side of the graph.
func (k Kind) Other() Kind {
	if k == KindUser {
		return KindProduct
	}
	return KindUser
}

// NodeID is a tagged identifier. User 7 and product 7 are distinct nodes.
type NodeID struct {
	Kind Kind
	ID   int64
}

// UserNode returns the NodeID of a user.
func UserNode(id int64) NodeID { return NodeID{Kind: KindUser, ID: id} }

// ProductNode returns the NodeID of a product.
func ProductNode(id int64) NodeID { return NodeID{Kind: KindProduct, ID: id} }

// String formats the id as kind:id.
func (n NodeID) String() string {
	return fmt.Sprintf("%s:%d", n.Kind, n.ID)
}

// Node is an arena entry.
type Node struct {
	id        NodeID
	neighbors map[int64]struct{}
	weight    float64
}

func newNode(id NodeID) *Node {
	return &Node{
		id:        id,
		neighbors: make(map[int64]struct{}),
		weight:    1.0,
	}
}

// ID returns the tagged node id.
func (n *Node) ID() NodeID { return n.id }

// Weight returns the scalar node weight (default 1.0).
func (n *Node) Weight() float64 { return n.weight }

// Degree returns the number of neighbors.
func (n *Node) Degree() int { return len(n.neighbors) }

// HasNeighbor reports whether id (of the opposite kind) is adjacent.
func (n *Node) HasNeighbor(id int64) bool {
	_, ok := n.neighbors[id]
	return ok
}

// sortedNeighbors returns neighbor ids in ascending order.
func (n *Node) sortedNeighbors() []int64 {
	out := make([]int64, 0, len(n.neighbors))
	for id := range n.neighbors {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// edgeKey identifies a user-product pair. The user side always comes first.
type edgeKey struct {
	user    int64
	product int64
}
