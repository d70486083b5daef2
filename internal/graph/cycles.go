package graph

import "fmt"

// SimpleCycles enumerates every simple cycle in the graph. A simple cycle is
// a sequence of distinct nodes with an edge path returning to the first;
// self-loops are reported as length-1 cycles. Each cycle is reported exactly
// once, rooted at its lowest-insertion-index member, so the result is stable
// for a given construction order. Parallel edges do not produce duplicates.
func (g *Graph) SimpleCycles() [][]string {
	var cycles [][]string

	for _, startID := range g.order {
		start := g.nodes[startID]
		onPath := map[string]bool{startID: true}
		path := []string{startID}

		// DFS restricted to nodes inserted at or after the start node, so
		// every cycle is discovered only from its minimum-index member.
		var walk func(v string)
		walk = func(v string) {
			for _, w := range g.Successors(v) {
				if w == startID {
					cycles = append(cycles, append([]string(nil), path...))
					continue
				}
				if onPath[w] || g.nodes[w].index < start.index {
					continue
				}
				onPath[w] = true
				path = append(path, w)
				walk(w)
				path = path[:len(path)-1]
				delete(onPath, w)
			}
		}
		walk(startID)
	}
	return cycles
}

// TopoSort returns a topological ordering of the induced subgraph on the
// given subset of node IDs. Only edges with both endpoints in the subset are
// considered. Ties are broken by insertion order, making the result
// deterministic. An error is returned if a subset node does not exist or if
// the induced subgraph contains a cycle.
func (g *Graph) TopoSort(subset []string) ([]string, error) {
	sub := make(map[string]bool, len(subset))
	for _, id := range subset {
		if _, ok := g.nodes[id]; !ok {
			return nil, fmt.Errorf("node not found: %s", id)
		}
		sub[id] = true
	}

	// Kahn's algorithm over the induced subgraph. A self-loop keeps its own
	// indegree above zero and is reported as a cycle.
	indegree := make(map[string]int, len(sub))
	var members []string
	for _, id := range g.order {
		if !sub[id] {
			continue
		}
		members = append(members, id)
		for _, p := range g.Predecessors(id) {
			if sub[p] {
				indegree[id]++
			}
		}
	}

	sorted := make([]string, 0, len(members))
	done := make(map[string]bool, len(members))
	for len(sorted) < len(members) {
		progressed := false
		for _, id := range members {
			if done[id] || indegree[id] != 0 {
				continue
			}
			done[id] = true
			sorted = append(sorted, id)
			for _, s := range g.Successors(id) {
				if sub[s] && s != id {
					indegree[s]--
				}
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("cycle detected within subgraph of %d nodes", len(members))
		}
	}
	return sorted, nil
}
