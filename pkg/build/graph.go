package build

import (
	"sort"

	"github.com/sirupsen/logrus"
	"jodin.dev/jodinc/internal/utils"
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/jerr"
)

var log = logrus.WithField("component", "build")

// Graph is the dependency graph over a set of CompilationNodes: an edge
// from A to B means A imports something only B exposes, so B must be
// compiled (or already reused from a prior run) before A's own
// resolution can succeed. Edges come from matching each node's Incoming
// import requests against every other node's Outgoing surface.
type Graph struct {
	Nodes []*CompilationNode
	edges map[string][]string // path -> paths it depends on
}

// GraphBuilder accumulates CompilationNodes before Build wires them into
// a Graph and checks the result for cycles.
type GraphBuilder struct {
	nodes []*CompilationNode
	index utils.OrderedMap[string, int]
}

// NewGraphBuilder returns an empty GraphBuilder.
func NewGraphBuilder() *GraphBuilder {
	idx := utils.NewOrderedMap[string, int]()
	return &GraphBuilder{index: idx}
}

// AddFile computes tree's CompilationNode and adds it to the graph under
// construction.
func (b *GraphBuilder) AddFile(path string, tree *ast.Node) error {
	node, err := BuildNode(path, tree)
	if err != nil {
		return err
	}
	b.index.Set(path, len(b.nodes))
	b.nodes = append(b.nodes, node)
	return nil
}

// Build wires the accumulated nodes' Incoming requests against every
// other node's Outgoing surface and returns the resulting Graph, or
// ErrCyclicalDependency if the dependencies it found form a cycle.
func (b *GraphBuilder) Build() (*Graph, error) {
	edges := make(map[string][]string, len(b.nodes))
	for _, node := range b.nodes {
		var deps []string
		for _, req := range node.Incoming {
			for _, other := range b.nodes {
				if other.Path == node.Path {
					continue
				}
				if satisfies(req, other.Outgoing) {
					deps = append(deps, other.Path)
					break
				}
			}
		}
		edges[node.Path] = deps
	}

	g := &Graph{Nodes: b.nodes, edges: edges}
	if cycle, found := g.findCycle(); found {
		return nil, jerr.ErrCyclicalDependency.New(cycle)
	}
	return g, nil
}

// Dependencies returns the paths path directly depends on.
func (g *Graph) Dependencies(path string) []string {
	return g.edges[path]
}

// findCycle runs a three-color DFS over the graph and returns one path
// on a cycle, if any exists.
func (g *Graph) findCycle() (string, bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.Nodes))
	var cycled string
	var visit func(path string) bool
	visit = func(path string) bool {
		color[path] = gray
		for _, dep := range g.edges[path] {
			switch color[dep] {
			case gray:
				cycled = dep
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[path] = black
		return false
	}

	for _, node := range g.Nodes {
		if color[node.Path] == white {
			if visit(node.Path) {
				return cycled, true
			}
		}
	}
	return "", false
}

// TopologicalOrder returns the graph's nodes ordered so every node comes
// after everything it depends on (Kahn's algorithm). Ties among nodes
// that become ready in the same round are broken by path, so a given
// graph always compiles in the same order.
func (g *Graph) TopologicalOrder() []*CompilationNode {
	byPath := make(map[string]*CompilationNode, len(g.Nodes))
	indegree := make(map[string]int, len(g.Nodes))
	dependents := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		byPath[n.Path] = n
		indegree[n.Path] = len(g.edges[n.Path])
	}
	for path, deps := range g.edges {
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], path)
		}
	}

	var ready []string
	for path, deg := range indegree {
		if deg == 0 {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	order := make([]*CompilationNode, 0, len(g.Nodes))
	for len(ready) > 0 {
		path := ready[0]
		ready = ready[1:]
		order = append(order, byPath[path])

		next := append([]string(nil), dependents[path]...)
		sort.Strings(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Strings(ready)
	}
	return order
}
