package graph

import (
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Index is a flat arena over a strategy: nodes addressed by id plus in/out
// adjacency lists built from the edges. Edges whose endpoints are missing,
// self-loops and repeated ordered pairs are left out of the adjacency so that
// traversals stay well defined on invalid input. The validator reports them.
type Index struct {
	strategy *Strategy
	nodes    map[string]int
	order    []string
	out      map[string][]string
	in       map[string][]string
	edges    map[[2]string]Edge
}

// NewIndex builds an index over s. s is only read.
func NewIndex(s *Strategy) *Index {
	idx := &Index{
		strategy: s,
		nodes:    make(map[string]int, len(s.Nodes)),
		order:    make([]string, 0, len(s.Nodes)),
		out:      make(map[string][]string, len(s.Nodes)),
		in:       make(map[string][]string, len(s.Nodes)),
		edges:    make(map[[2]string]Edge, len(s.Edges)),
	}

	for i, n := range s.Nodes {
		if _, dup := idx.nodes[n.ID]; dup {
			continue
		}

		idx.nodes[n.ID] = i
		idx.order = append(idx.order, n.ID)
	}

	for _, e := range s.Edges {
		if !idx.Has(e.Source) || !idx.Has(e.Target) || e.Source == e.Target {
			continue
		}

		key := [2]string{e.Source, e.Target}
		if _, dup := idx.edges[key]; dup {
			continue
		}

		idx.edges[key] = e
		idx.out[e.Source] = append(idx.out[e.Source], e.Target)
		idx.in[e.Target] = append(idx.in[e.Target], e.Source)
	}

	return idx
}

// Strategy returns the indexed strategy.
func (g *Index) Strategy() *Strategy {
	return g.strategy
}

// Has reports whether a node with id exists.
func (g *Index) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with id.
func (g *Index) Node(id string) (Node, bool) {
	i, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}

	return g.strategy.Nodes[i], true
}

// NodeIDs returns node ids in declaration order.
func (g *Index) NodeIDs() []string {
	return g.order
}

// Inputs returns the sources of edges ending at id, in edge order.
func (g *Index) Inputs(id string) []string {
	return g.in[id]
}

// Outputs returns the targets of edges starting at id, in edge order.
func (g *Index) Outputs(id string) []string {
	return g.out[id]
}

// Edge returns the edge from source to target.
func (g *Index) Edge(source, target string) (Edge, bool) {
	e, ok := g.edges[[2]string{source, target}]
	return e, ok
}

// NodesByCategory returns nodes of category c in declaration order.
func (g *Index) NodesByCategory(c Category) []Node {
	var nodes []Node

	for _, id := range g.order {
		n, _ := g.Node(id)
		if n.Category == c {
			nodes = append(nodes, n)
		}
	}

	return nodes
}

// Reachable returns every node reachable from roots by breadth-first search,
// roots included.
func (g *Index) Reachable(roots []string) map[string]bool {
	seen := make(map[string]bool, len(g.order))
	queue := make([]string, 0, len(roots))

	for _, r := range roots {
		if g.Has(r) && !seen[r] {
			seen[r] = true
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range g.out[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	return seen
}

// Ancestors returns every node with a path to id, id excluded.
func (g *Index) Ancestors(id string) map[string]bool {
	seen := map[string]bool{}
	stack := append([]string{}, g.in[id]...)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[cur] {
			continue
		}

		seen[cur] = true
		stack = append(stack, g.in[cur]...)
	}

	return seen
}

// TopologicalOrder returns node ids so that every edge goes from an earlier to
// a later node. Ties keep declaration order. A cycle yields an error.
func (g *Index) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		indegree[id] = len(g.in[id])
	}

	ready := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		sorted = append(sorted, cur)

		for _, next := range g.out[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(sorted) != len(g.order) {
		return nil, errors.New(errors.ErrCodeStrategyInvalid, "strategy graph contains a cycle")
	}

	return sorted, nil
}
