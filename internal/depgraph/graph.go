// Package depgraph holds the dependency adjacency structure and the bounded
// traversal engine that answers "what relates to X" questions.
package depgraph

import (
	"fmt"

	"depscope/internal/element"
)

// Graph is the adjacency structure built once from an edge list. It keeps a
// forward and a reverse map per edge kind so calls, imports and depends_on
// can be queried independently, plus kind-merged maps for path finding.
// Adjacency lists preserve the insertion order of the original edge list.
type Graph struct {
	store *element.Store

	forward map[element.EdgeKind]map[string][]string
	reverse map[element.EdgeKind]map[string][]string

	outAll map[string][]string
	inAll  map[string][]string

	edges []element.Edge // surviving edges, input order
}

// Build constructs the graph from scanner edges. Edges referencing elements
// absent from the store are dropped with a warning rather than failing the
// load.
func Build(store *element.Store, edges []element.Edge) (*Graph, []string) {
	g := &Graph{
		store:   store,
		forward: make(map[element.EdgeKind]map[string][]string),
		reverse: make(map[element.EdgeKind]map[string][]string),
		outAll:  make(map[string][]string),
		inAll:   make(map[string][]string),
	}
	for _, k := range element.Kinds() {
		g.forward[k] = make(map[string][]string)
		g.reverse[k] = make(map[string][]string)
	}

	var warnings []string
	for _, e := range edges {
		if !e.Kind.Valid() {
			warnings = append(warnings, fmt.Sprintf("edge %s->%s: unknown kind %q, dropped", e.From, e.To, e.Kind))
			continue
		}
		if store.Get(e.From) == nil {
			warnings = append(warnings, fmt.Sprintf("edge %s->%s: unknown source element, dropped", e.From, e.To))
			continue
		}
		if store.Get(e.To) == nil {
			warnings = append(warnings, fmt.Sprintf("edge %s->%s: unknown target element, dropped", e.From, e.To))
			continue
		}
		g.forward[e.Kind][e.From] = append(g.forward[e.Kind][e.From], e.To)
		g.reverse[e.Kind][e.To] = append(g.reverse[e.Kind][e.To], e.From)
		g.outAll[e.From] = append(g.outAll[e.From], e.To)
		g.inAll[e.To] = append(g.inAll[e.To], e.From)
		g.edges = append(g.edges, e)
	}
	return g, warnings
}

// Store returns the element store the graph was validated against.
func (g *Graph) Store() *element.Store {
	return g.store
}

// Edges returns the surviving edges in their original order.
func (g *Graph) Edges() []element.Edge {
	out := make([]element.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns the forward adjacency of id for one kind.
func (g *Graph) Neighbors(kind element.EdgeKind, id string) []string {
	return g.forward[kind][id]
}

// Dependents returns the reverse adjacency of id for one kind.
func (g *Graph) Dependents(kind element.EdgeKind, id string) []string {
	return g.reverse[kind][id]
}
