package depgraph

import (
	"context"
	"fmt"

	"depscope/internal/element"
	"depscope/internal/match"
)

// QueryType selects one of the six relationship queries.
type QueryType string

const (
	QueryCalls       QueryType = "calls"
	QueryImports     QueryType = "imports"
	QueryDependsOn   QueryType = "depends-on"
	QueryCallsMe     QueryType = "calls-me"
	QueryImportsMe   QueryType = "imports-me"
	QueryDependsOnMe QueryType = "depends-on-me"
)

// DefaultMaxDepth bounds traversals when the caller does not say otherwise.
const DefaultMaxDepth = 3

// suggestionLimit caps the "did you mean" list on lookup failures.
const suggestionLimit = 5

// ParseQueryType validates a caller-supplied query type string.
func ParseQueryType(s string) (QueryType, error) {
	switch qt := QueryType(s); qt {
	case QueryCalls, QueryImports, QueryDependsOn,
		QueryCallsMe, QueryImportsMe, QueryDependsOnMe:
		return qt, nil
	}
	return "", &InvalidQueryError{Query: s, Reason: "unknown query type"}
}

func (q QueryType) kind() element.EdgeKind {
	switch q {
	case QueryCalls, QueryCallsMe:
		return element.EdgeCalls
	case QueryImports, QueryImportsMe:
		return element.EdgeImports
	default:
		return element.EdgeDependsOn
	}
}

func (q QueryType) reversed() bool {
	switch q {
	case QueryCallsMe, QueryImportsMe, QueryDependsOnMe:
		return true
	}
	return false
}

// Item is one reachable element tagged with its BFS distance from the target.
type Item struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Type  element.Type `json:"type"`
	File  string       `json:"file"`
	Line  int          `json:"line"`
	Depth int          `json:"depth"`
}

// Result is the answer to a relationship query. Truncated is set when the
// traversal stopped early because the caller's context expired; the partial
// results are still valid.
type Result struct {
	Target    string    `json:"target"`
	QueryType QueryType `json:"query_type"`
	Results   []Item    `json:"results"`
	Truncated bool      `json:"truncated"`
}

// Engine runs bounded traversals against one graph. It is stateless between
// calls: every query allocates its own visited set and result buffer, so any
// number of queries may run concurrently on the same snapshot.
type Engine struct {
	g *Graph
}

// NewEngine wraps a built graph.
func NewEngine(g *Graph) *Engine {
	return &Engine{g: g}
}

// Resolve maps a caller-supplied target (element id, or a name that is unique
// in the index) onto an element. A failed lookup carries edit-distance ranked
// near-matches.
func (e *Engine) Resolve(target string) (*element.CodeElement, error) {
	if el := e.g.store.Get(target); el != nil {
		return el, nil
	}
	if byName := e.g.store.FindByName(target); len(byName) == 1 {
		return byName[0], nil
	} else if len(byName) > 1 {
		// Ambiguous name: report the candidate ids so the caller can pick.
		ids := make([]string, 0, len(byName))
		for _, el := range byName {
			ids = append(ids, el.ID)
		}
		if len(ids) > suggestionLimit {
			ids = ids[:suggestionLimit]
		}
		return nil, &element.NotFoundError{Target: target, Suggestions: ids}
	}

	names := make([]string, 0, e.g.store.Len())
	for _, el := range e.g.store.All() {
		names = append(names, el.Name)
	}
	return nil, &element.NotFoundError{
		Target:      target,
		Suggestions: match.RankNearest(target, names, suggestionLimit),
	}
}

// Query runs a layer-by-layer BFS from target up to maxDepth. Depth 0 returns
// an empty relation set; depth N returns nodes at BFS distance <= N. Each
// node is visited at most once per call, so cycles terminate and produce no
// duplicates. Cancellation is cooperative: the context is checked between BFS
// layers, and an expired context yields a truncated partial result instead of
// an error.
func (e *Engine) Query(ctx context.Context, target string, qt QueryType, maxDepth int) (*Result, error) {
	if _, err := ParseQueryType(string(qt)); err != nil {
		return nil, err
	}
	if maxDepth < 0 {
		return nil, &InvalidQueryError{Query: string(qt), Reason: fmt.Sprintf("max_depth %d out of range", maxDepth)}
	}

	root, err := e.Resolve(target)
	if err != nil {
		return nil, err
	}

	res := &Result{Target: root.ID, QueryType: qt, Results: []Item{}}

	adj := e.g.forward[qt.kind()]
	if qt.reversed() {
		adj = e.g.reverse[qt.kind()]
	}

	visited := map[string]bool{root.ID: true}
	frontier := []string{root.ID}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		if ctx.Err() != nil {
			res.Truncated = true
			return res, nil
		}
		var next []string
		for _, id := range frontier {
			for _, nb := range adj[id] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				res.Results = append(res.Results, e.item(nb, depth))
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return res, nil
}

// ShortestPath returns the first-found shortest path between two elements
// over all edge kinds, endpoints included. Ties are broken by the insertion
// order of the original edge list. A nil slice means no path exists.
func (e *Engine) ShortestPath(ctx context.Context, target, other string) ([]Item, error) {
	from, err := e.Resolve(target)
	if err != nil {
		return nil, err
	}
	to, err := e.Resolve(other)
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return []Item{e.item(from.ID, 0)}, nil
	}

	parent := map[string]string{from.ID: ""}
	frontier := []string{from.ID}
	for len(frontier) > 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var next []string
		for _, id := range frontier {
			for _, nb := range e.g.outAll[id] {
				if _, seen := parent[nb]; seen {
					continue
				}
				parent[nb] = id
				if nb == to.ID {
					return e.assemblePath(parent, to.ID), nil
				}
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return nil, nil
}

// AllPaths enumerates every simple path from target to other whose length
// does not exceed maxDepth edges. A path revisiting a node already on the
// current path is pruned rather than explored, since call graphs are not
// guaranteed acyclic.
func (e *Engine) AllPaths(ctx context.Context, target, other string, maxDepth int) ([][]Item, error) {
	if maxDepth < 0 {
		return nil, &InvalidQueryError{Query: "all-paths", Reason: fmt.Sprintf("max_depth %d out of range", maxDepth)}
	}
	from, err := e.Resolve(target)
	if err != nil {
		return nil, err
	}
	to, err := e.Resolve(other)
	if err != nil {
		return nil, err
	}

	var paths [][]Item
	onPath := map[string]bool{from.ID: true}
	stack := []Item{e.item(from.ID, 0)}

	var walk func(id string, depth int) error
	walk = func(id string, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if id == to.ID {
			path := make([]Item, len(stack))
			copy(path, stack)
			paths = append(paths, path)
			return nil
		}
		if depth == maxDepth {
			return nil
		}
		for _, nb := range e.g.outAll[id] {
			if onPath[nb] {
				continue
			}
			onPath[nb] = true
			stack = append(stack, e.item(nb, depth+1))
			if err := walk(nb, depth+1); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
			onPath[nb] = false
		}
		return nil
	}
	if err := walk(from.ID, 0); err != nil {
		return nil, err
	}
	return paths, nil
}

func (e *Engine) assemblePath(parent map[string]string, end string) []Item {
	var ids []string
	for id := end; id != ""; id = parent[id] {
		ids = append(ids, id)
	}
	path := make([]Item, len(ids))
	for i := range ids {
		path[i] = e.item(ids[len(ids)-1-i], i)
	}
	return path
}

func (e *Engine) item(id string, depth int) Item {
	el := e.g.store.Get(id)
	return Item{
		ID:    el.ID,
		Name:  el.Name,
		Type:  el.Type,
		File:  el.File,
		Line:  el.Line,
		Depth: depth,
	}
}
