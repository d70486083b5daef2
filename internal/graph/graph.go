package graph

import "fmt"

// Graph is a directed multigraph keyed by node ID. Parallel edges between
// the same pair of nodes and self-loops are both allowed. Nodes remember
// their insertion order, which every traversal uses to stay deterministic.
type Graph struct {
	order []string
	nodes map[string]*node
}

// node is a single vertex with insertion-ordered adjacency. Edge slices may
// contain the same neighbor more than once when parallel edges exist.
type node struct {
	id    string
	index int
	succ  []string
	pred  []string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id, index: len(g.order)}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from fromID to toID. Self-loops and
// parallel edges are permitted. An error is returned if either endpoint
// has not been added to the graph.
func (g *Graph) AddEdge(fromID, toID string) error {
	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	from.succ = append(from.succ, toID)
	to.pred = append(to.pred, fromID)
	return nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// HasNode reports whether the graph contains a node with the given ID.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Successors returns the distinct successors of id in first-edge order.
func (g *Graph) Successors(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return dedup(n.succ)
}

// Predecessors returns the distinct predecessors of id in first-edge order.
func (g *Graph) Predecessors(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return dedup(n.pred)
}

// Descendants returns the set of nodes reachable from id, excluding id
// itself unless it lies on a cycle through itself.
func (g *Graph) Descendants(id string) map[string]bool {
	return g.reach(id, func(n string) []string { return g.Successors(n) })
}

// Ancestors returns the set of nodes that can reach id, excluding id
// itself unless it lies on a cycle through itself.
func (g *Graph) Ancestors(id string) map[string]bool {
	return g.reach(id, func(n string) []string { return g.Predecessors(n) })
}

// reach walks the graph from id with an explicit stack, following the
// neighbor function, and returns every node encountered.
func (g *Graph) reach(id string, neighbors func(string) []string) map[string]bool {
	seen := make(map[string]bool)
	if _, ok := g.nodes[id]; !ok {
		return seen
	}
	stack := neighbors(id)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, neighbors(n)...)
	}
	return seen
}

// dedup removes repeated IDs, keeping first-occurrence order.
func dedup(ids []string) []string {
	if len(ids) < 2 {
		return append([]string(nil), ids...)
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
