package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/element"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scanProject(t *testing.T) (map[string]element.CodeElement, []element.Edge, map[string]string) {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "main.go", `package app

func Run() {
	Build()
	format.Render()
}
`)
	writeFile(t, root, "build.go", `package app

func Build() {}
`)
	writeFile(t, root, "format/render.go", `package format

func Render() {}
`)
	writeFile(t, root, "main_test.go", `package app

func TestRun(t *testing.T) {}
`)
	writeFile(t, root, "vendor/dep/dep.go", `package dep

func Hidden() {}
`)
	writeFile(t, root, "README.md", "not go")

	s, err := New(root)
	require.NoError(t, err)
	payload, err := s.Scan(context.Background())
	require.NoError(t, err)

	byName := make(map[string]element.CodeElement, len(payload.Elements))
	for _, el := range payload.Elements {
		byName[el.Name] = el
	}
	return byName, payload.Edges, payload.Signatures
}

func TestScanner_Scan(t *testing.T) {
	byName, edges, signatures := scanProject(t)

	t.Run("Extracts elements across packages", func(t *testing.T) {
		require.Contains(t, byName, "Run")
		require.Contains(t, byName, "Build")
		require.Contains(t, byName, "Render")
		assert.Equal(t, "main.go", byName["Run"].File)
		assert.Equal(t, filepath.Join("format", "render.go"), byName["Render"].File)
	})

	t.Run("Skips tests, vendor and non-Go files", func(t *testing.T) {
		assert.NotContains(t, byName, "TestRun")
		assert.NotContains(t, byName, "Hidden")
		assert.NotContains(t, signatures, "main_test.go")
		assert.NotContains(t, signatures, "README.md")
	})

	t.Run("Signatures cover every scanned file", func(t *testing.T) {
		assert.Len(t, signatures, 3)
		assert.NotEmpty(t, signatures["main.go"])
	})

	t.Run("Plain reference resolves within the package", func(t *testing.T) {
		assert.Contains(t, edges, element.Edge{
			From: byName["Run"].ID,
			To:   byName["Build"].ID,
			Kind: element.EdgeCalls,
		})
	})

	t.Run("Qualified cross-file reference adds an imports edge", func(t *testing.T) {
		assert.Contains(t, edges, element.Edge{
			From: byName["Run"].ID,
			To:   byName["Render"].ID,
			Kind: element.EdgeCalls,
		})
		assert.Contains(t, edges, element.Edge{
			From: byName["Run"].ID,
			To:   byName["Render"].ID,
			Kind: element.EdgeImports,
		})
	})
}

func TestScanner_Scan_UnparseableFileIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.go", `package app

func Fine() {}
`)
	// Binary junk is hashed but yields no symbols; the scan still succeeds.
	writeFile(t, root, "junk.go", "\x00\x01\x02 not go at all")

	s, err := New(root)
	require.NoError(t, err)
	payload, err := s.Scan(context.Background())
	require.NoError(t, err)

	byName := make(map[string]bool)
	for _, el := range payload.Elements {
		byName[el.Name] = true
	}
	assert.True(t, byName["Fine"])
	assert.Contains(t, payload.Signatures, "junk.go")
}

func TestScanner_Scan_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package app\n")

	s, err := New(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx)
	assert.Error(t, err)
}

func TestResolveEdges(t *testing.T) {
	sym := func(id, name, pkg, file string, refs ...Reference) *RawSymbol {
		return &RawSymbol{
			Element:    element.CodeElement{ID: id, Name: name, Type: element.TypeFunction, File: file, Line: 1},
			Package:    pkg,
			References: refs,
		}
	}

	t.Run("Same-package symbol beats a unique global", func(t *testing.T) {
		caller := sym("a.go:do:1", "do", "app", "a.go", Reference{Target: "helper", Kind: element.EdgeCalls})
		local := sym("a.go:helper:5", "helper", "app", "a.go")
		foreign := sym("x/util.go:helper:1", "helper", "util", "x/util.go")

		edges := resolveEdges([]*RawSymbol{caller, local, foreign})
		require.Len(t, edges, 1)
		assert.Equal(t, "a.go:helper:5", edges[0].To)
	})

	t.Run("Ambiguous plain reference is dropped", func(t *testing.T) {
		caller := sym("a.go:do:1", "do", "app", "a.go", Reference{Target: "helper", Kind: element.EdgeCalls})
		one := sym("x/one.go:helper:1", "helper", "pkg1", "x/one.go")
		two := sym("y/two.go:helper:1", "helper", "pkg2", "y/two.go")

		edges := resolveEdges([]*RawSymbol{caller, one, two})
		assert.Empty(t, edges)
	})

	t.Run("Qualified reference requires a package match", func(t *testing.T) {
		caller := sym("a.go:do:1", "do", "app", "a.go",
			Reference{Target: "Render", Qualifier: "format", Kind: element.EdgeCalls})
		wrong := sym("x/r.go:Render:1", "Render", "paint", "x/r.go")

		edges := resolveEdges([]*RawSymbol{caller, wrong})
		assert.Empty(t, edges)
	})

	t.Run("Self references are skipped", func(t *testing.T) {
		recursive := sym("a.go:loop:1", "loop", "app", "a.go", Reference{Target: "loop", Kind: element.EdgeCalls})
		edges := resolveEdges([]*RawSymbol{recursive})
		assert.Empty(t, edges)
	})

	t.Run("Duplicate edges collapse", func(t *testing.T) {
		caller := sym("a.go:do:1", "do", "app", "a.go",
			Reference{Target: "helper", Kind: element.EdgeCalls},
			Reference{Target: "helper", Kind: element.EdgeCalls})
		local := sym("a.go:helper:5", "helper", "app", "a.go")

		edges := resolveEdges([]*RawSymbol{caller, local})
		assert.Len(t, edges, 1)
	})
}
