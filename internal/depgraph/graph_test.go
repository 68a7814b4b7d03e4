package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/element"
)

func testStore(t *testing.T, names ...string) *element.Store {
	t.Helper()
	elements := make([]element.CodeElement, 0, len(names))
	for i, name := range names {
		elements = append(elements, element.CodeElement{
			ID:   name,
			Name: name,
			Type: element.TypeFunction,
			File: "main.go",
			Line: i + 1,
		})
	}
	store, warnings := element.NewStore(elements)
	require.Empty(t, warnings)
	return store
}

func TestBuild_AdjacencyPerKind(t *testing.T) {
	store := testStore(t, "A", "B", "C")
	g, warnings := Build(store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "A", To: "C", Kind: element.EdgeImports},
		{From: "B", To: "C", Kind: element.EdgeDependsOn},
	})
	require.Empty(t, warnings)

	assert.Equal(t, []string{"B"}, g.Neighbors(element.EdgeCalls, "A"))
	assert.Equal(t, []string{"C"}, g.Neighbors(element.EdgeImports, "A"))
	assert.Empty(t, g.Neighbors(element.EdgeCalls, "B"))

	assert.Equal(t, []string{"A"}, g.Dependents(element.EdgeCalls, "B"))
	assert.Equal(t, []string{"B"}, g.Dependents(element.EdgeDependsOn, "C"))
}

func TestBuild_DropsBadEdgesWithWarnings(t *testing.T) {
	store := testStore(t, "A", "B")
	g, warnings := Build(store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "A", To: "Ghost", Kind: element.EdgeCalls},
		{From: "Ghost", To: "B", Kind: element.EdgeCalls},
		{From: "A", To: "B", Kind: "summons"},
	})

	assert.Len(t, warnings, 3)
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, "B", g.Edges()[0].To)
}

func TestBuild_EdgesPreserveInputOrder(t *testing.T) {
	store := testStore(t, "A", "B", "C", "D")
	in := []element.Edge{
		{From: "A", To: "C", Kind: element.EdgeCalls},
		{From: "A", To: "B", Kind: element.EdgeImports},
		{From: "B", To: "D", Kind: element.EdgeCalls},
	}
	g, _ := Build(store, in)
	assert.Equal(t, in, g.Edges())
}
