// Package impact classifies the blast radius of a prospective change by
// walking the dependency graph in reverse.
package impact

import (
	"context"
	"sort"

	"depscope/internal/depgraph"
)

// Operation is the kind of change being assessed. It frames the result but
// does not alter the traversal or the thresholds, so results stay comparable
// across runs.
type Operation string

const (
	OperationModify   Operation = "modify"
	OperationDelete   Operation = "delete"
	OperationRefactor Operation = "refactor"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OperationModify, OperationDelete, OperationRefactor:
		return true
	}
	return false
}

// RiskLevel is the coarse classification of affected-element count.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Result describes the dependents of an element and the derived risk.
type Result struct {
	Element              depgraph.Item   `json:"element"`
	Operation            Operation       `json:"operation"`
	DirectDependents     []depgraph.Item `json:"direct_dependents"`
	TransitiveDependents []depgraph.Item `json:"transitive_dependents"`
	RiskLevel            RiskLevel       `json:"risk_level"`
	EstimatedAffected    int             `json:"estimated_affected"`
	Truncated            bool            `json:"truncated"`
}

// Analyzer wraps the query engine's reverse traversal.
type Analyzer struct {
	engine *depgraph.Engine
}

// NewAnalyzer creates an analyzer over one snapshot's engine.
func NewAnalyzer(e *depgraph.Engine) *Analyzer {
	return &Analyzer{engine: e}
}

// reverseQueries are the traversals merged into one dependent set. depends_on
// may subsume calls and imports, but scanners are not required to emit it, so
// all three reverse relations are gathered.
var reverseQueries = []depgraph.QueryType{
	depgraph.QueryCallsMe,
	depgraph.QueryImportsMe,
	depgraph.QueryDependsOnMe,
}

// Analyze gathers every element that depends on target within maxDepth hops,
// deduplicated at the shallowest depth it was seen, and classifies the risk
// of performing op on the target.
func (a *Analyzer) Analyze(ctx context.Context, target string, op Operation, maxDepth int) (*Result, error) {
	if maxDepth <= 0 {
		maxDepth = depgraph.DefaultMaxDepth
	}

	root, err := a.engine.Resolve(target)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]depgraph.Item)
	truncated := false
	for _, qt := range reverseQueries {
		res, err := a.engine.Query(ctx, root.ID, qt, maxDepth)
		if err != nil {
			return nil, err
		}
		truncated = truncated || res.Truncated
		for _, it := range res.Results {
			if prev, ok := byID[it.ID]; !ok || it.Depth < prev.Depth {
				byID[it.ID] = it
			}
		}
	}

	items := make([]depgraph.Item, 0, len(byID))
	for _, it := range byID {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Depth != items[j].Depth {
			return items[i].Depth < items[j].Depth
		}
		return items[i].ID < items[j].ID
	})

	direct := make([]depgraph.Item, 0, len(items))
	transitive := make([]depgraph.Item, 0)
	for _, it := range items {
		if it.Depth == 1 {
			direct = append(direct, it)
		} else {
			transitive = append(transitive, it)
		}
	}

	return &Result{
		Element:              itemOf(root.ID, a.engine),
		Operation:            op,
		DirectDependents:     direct,
		TransitiveDependents: transitive,
		RiskLevel:            Classify(len(items)),
		EstimatedAffected:    len(items),
		Truncated:            truncated,
	}, nil
}

// Classify maps a distinct affected-element count onto a risk level. The
// thresholds are deliberately not configurable per call.
func Classify(affected int) RiskLevel {
	switch {
	case affected < 5:
		return RiskLow
	case affected < 15:
		return RiskMedium
	case affected < 40:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func itemOf(id string, e *depgraph.Engine) depgraph.Item {
	el, _ := e.Resolve(id)
	return depgraph.Item{ID: el.ID, Name: el.Name, Type: el.Type, File: el.File, Line: el.Line}
}
