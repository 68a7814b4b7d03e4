package depgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/element"
)

func testEngine(t *testing.T, store *element.Store, edges []element.Edge) *Engine {
	t.Helper()
	g, warnings := Build(store, edges)
	require.Empty(t, warnings)
	return NewEngine(g)
}

func TestParseQueryType(t *testing.T) {
	for _, s := range []string{"calls", "imports", "depends-on", "calls-me", "imports-me", "depends-on-me"} {
		qt, err := ParseQueryType(s)
		assert.NoError(t, err)
		assert.Equal(t, QueryType(s), qt)
	}

	_, err := ParseQueryType("summons")
	var invalid *InvalidQueryError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "summons", invalid.Query)
}

func TestEngine_Query_ForwardAndReverse(t *testing.T) {
	// A calls B, B calls C, D imports B.
	store := testStore(t, "A", "B", "C", "D")
	e := testEngine(t, store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "B", To: "C", Kind: element.EdgeCalls},
		{From: "D", To: "B", Kind: element.EdgeImports},
	})
	ctx := context.Background()

	t.Run("Forward calls with depth tags", func(t *testing.T) {
		res, err := e.Query(ctx, "A", QueryCalls, 3)
		require.NoError(t, err)
		require.Len(t, res.Results, 2)
		assert.Equal(t, "B", res.Results[0].ID)
		assert.Equal(t, 1, res.Results[0].Depth)
		assert.Equal(t, "C", res.Results[1].ID)
		assert.Equal(t, 2, res.Results[1].Depth)
		assert.False(t, res.Truncated)
	})

	t.Run("Reverse is the exact inverse at depth 1", func(t *testing.T) {
		fwd, err := e.Query(ctx, "A", QueryCalls, 1)
		require.NoError(t, err)
		require.Len(t, fwd.Results, 1)

		rev, err := e.Query(ctx, fwd.Results[0].ID, QueryCallsMe, 1)
		require.NoError(t, err)
		require.Len(t, rev.Results, 1)
		assert.Equal(t, "A", rev.Results[0].ID)
	})

	t.Run("Kinds stay separate", func(t *testing.T) {
		res, err := e.Query(ctx, "B", QueryImportsMe, 1)
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "D", res.Results[0].ID)

		res, err = e.Query(ctx, "B", QueryImports, 3)
		require.NoError(t, err)
		assert.Empty(t, res.Results)
	})

	t.Run("Depth zero returns empty relation set", func(t *testing.T) {
		res, err := e.Query(ctx, "A", QueryCalls, 0)
		require.NoError(t, err)
		assert.Empty(t, res.Results)
		assert.False(t, res.Truncated)
	})

	t.Run("Depth bound cuts the walk", func(t *testing.T) {
		res, err := e.Query(ctx, "A", QueryCalls, 1)
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "B", res.Results[0].ID)
	})

	t.Run("Negative depth is invalid", func(t *testing.T) {
		_, err := e.Query(ctx, "A", QueryCalls, -1)
		var invalid *InvalidQueryError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestEngine_Query_CycleTerminates(t *testing.T) {
	// A -> B -> C -> A; generous depth must not loop or duplicate.
	store := testStore(t, "A", "B", "C")
	e := testEngine(t, store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "B", To: "C", Kind: element.EdgeCalls},
		{From: "C", To: "A", Kind: element.EdgeCalls},
	})

	res, err := e.Query(context.Background(), "A", QueryCalls, 5)
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "B", res.Results[0].ID)
	assert.Equal(t, "C", res.Results[1].ID)
}

func TestEngine_Query_ExpiredContextTruncates(t *testing.T) {
	store := testStore(t, "A", "B", "C")
	e := testEngine(t, store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "B", To: "C", Kind: element.EdgeCalls},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Query(ctx, "A", QueryCalls, 3)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Empty(t, res.Results)
}

func TestEngine_Resolve(t *testing.T) {
	store, warnings := element.NewStore([]element.CodeElement{
		{ID: "a.go:getUser:1", Name: "getUser", Type: element.TypeFunction, File: "a.go", Line: 1},
		{ID: "a.go:getUserData:5", Name: "getUserData", Type: element.TypeFunction, File: "a.go", Line: 5},
		{ID: "b.go:getUserData:9", Name: "getUserData", Type: element.TypeFunction, File: "b.go", Line: 9},
	})
	require.Empty(t, warnings)
	e := testEngine(t, store, nil)

	t.Run("By id", func(t *testing.T) {
		el, err := e.Resolve("a.go:getUser:1")
		require.NoError(t, err)
		assert.Equal(t, "getUser", el.Name)
	})

	t.Run("By unique name", func(t *testing.T) {
		el, err := e.Resolve("getUser")
		require.NoError(t, err)
		assert.Equal(t, "a.go:getUser:1", el.ID)
	})

	t.Run("Ambiguous name lists candidate ids", func(t *testing.T) {
		_, err := e.Resolve("getUserData")
		var nf *element.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []string{"a.go:getUserData:5", "b.go:getUserData:9"}, nf.Suggestions)
	})

	t.Run("Unknown target gets ranked near-matches", func(t *testing.T) {
		_, err := e.Resolve("getUsr")
		var nf *element.NotFoundError
		require.ErrorAs(t, err, &nf)
		require.NotEmpty(t, nf.Suggestions)
		assert.Equal(t, "getUser", nf.Suggestions[0])
	})
}

func TestEngine_ShortestPath(t *testing.T) {
	// A -> B -> D and a longer A -> C -> E -> D.
	store := testStore(t, "A", "B", "C", "D", "E")
	e := testEngine(t, store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "A", To: "C", Kind: element.EdgeImports},
		{From: "B", To: "D", Kind: element.EdgeDependsOn},
		{From: "C", To: "E", Kind: element.EdgeCalls},
		{From: "E", To: "D", Kind: element.EdgeCalls},
	})
	ctx := context.Background()

	t.Run("Finds the shortest route over all kinds", func(t *testing.T) {
		path, err := e.ShortestPath(ctx, "A", "D")
		require.NoError(t, err)
		require.Len(t, path, 3)
		assert.Equal(t, "A", path[0].ID)
		assert.Equal(t, "B", path[1].ID)
		assert.Equal(t, "D", path[2].ID)
		assert.Equal(t, 2, path[2].Depth)
	})

	t.Run("Same node is a single-item path", func(t *testing.T) {
		path, err := e.ShortestPath(ctx, "A", "A")
		require.NoError(t, err)
		require.Len(t, path, 1)
		assert.Equal(t, "A", path[0].ID)
	})

	t.Run("No route yields nil", func(t *testing.T) {
		path, err := e.ShortestPath(ctx, "D", "A")
		require.NoError(t, err)
		assert.Nil(t, path)
	})
}

func TestEngine_AllPaths(t *testing.T) {
	store := testStore(t, "A", "B", "C", "D")
	e := testEngine(t, store, []element.Edge{
		{From: "A", To: "B", Kind: element.EdgeCalls},
		{From: "A", To: "C", Kind: element.EdgeCalls},
		{From: "B", To: "D", Kind: element.EdgeCalls},
		{From: "C", To: "D", Kind: element.EdgeCalls},
	})

	paths, err := e.AllPaths(context.Background(), "A", "D", 3)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.Equal(t, "A", p[0].ID)
		assert.Equal(t, "D", p[len(p)-1].ID)
	}

	// A tighter bound prunes both two-edge routes.
	paths, err = e.AllPaths(context.Background(), "A", "D", 1)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
