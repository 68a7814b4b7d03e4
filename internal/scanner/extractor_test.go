package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/element"
)

const sampleSource = `package sample

const Version = "1.0.0"

type User struct {
	Name string
}

type Notifier interface {
	Notify(user User) error
}

type UserID string

func NewUser(name string, age int) *User {
	validate(name)
	return &User{Name: name}
}

func validate(name string) {
	if name == "" {
		panic("empty name")
	}
}

func (u *User) Greet() string {
	return "hi " + u.Name
}
`

func extractSample(t *testing.T) map[string]*RawSymbol {
	t.Helper()
	ext, err := NewExtractor("go")
	require.NoError(t, err)

	symbols, err := ext.ExtractSource(context.Background(), []byte(sampleSource), "sample.go")
	require.NoError(t, err)

	byName := make(map[string]*RawSymbol, len(symbols))
	for _, sym := range symbols {
		byName[sym.Element.Name] = sym
	}
	return byName
}

func TestExtractor_UnsupportedLanguage(t *testing.T) {
	_, err := NewExtractor("cobol")
	assert.Error(t, err)
}

func TestExtractor_ExtractSource(t *testing.T) {
	byName := extractSample(t)

	t.Run("Functions carry spans and param counts", func(t *testing.T) {
		sym, ok := byName["NewUser"]
		require.True(t, ok)
		assert.Equal(t, element.TypeFunction, sym.Element.Type)
		assert.Equal(t, "sample.go", sym.Element.File)
		assert.Equal(t, "sample", sym.Package)
		assert.Equal(t, "go", sym.Element.Language)
		assert.True(t, sym.Element.Exported)
		assert.Greater(t, sym.Element.EndLine, sym.Element.Line)
		require.NotNil(t, sym.Element.ParamCount)
		assert.Equal(t, 2, *sym.Element.ParamCount)
	})

	t.Run("Unexported helper", func(t *testing.T) {
		sym, ok := byName["validate"]
		require.True(t, ok)
		assert.False(t, sym.Element.Exported)
		require.NotNil(t, sym.Element.ParamCount)
		assert.Equal(t, 1, *sym.Element.ParamCount)
	})

	t.Run("Methods are distinct from functions", func(t *testing.T) {
		sym, ok := byName["Greet"]
		require.True(t, ok)
		assert.Equal(t, element.TypeMethod, sym.Element.Type)
	})

	t.Run("Type declarations classify by underlying type", func(t *testing.T) {
		assert.Equal(t, element.TypeClass, byName["User"].Element.Type)
		assert.Equal(t, element.TypeInterface, byName["Notifier"].Element.Type)
		assert.Equal(t, element.TypeTypeAlias, byName["UserID"].Element.Type)
	})

	t.Run("Constants", func(t *testing.T) {
		sym, ok := byName["Version"]
		require.True(t, ok)
		assert.Equal(t, element.TypeConstant, sym.Element.Type)
	})

	t.Run("Call references keep their kind", func(t *testing.T) {
		sym := byName["NewUser"]
		var calls []string
		for _, ref := range sym.References {
			if ref.Kind == element.EdgeCalls {
				calls = append(calls, ref.Target)
			}
		}
		assert.Contains(t, calls, "validate")
	})

	t.Run("Signature types become depends_on references", func(t *testing.T) {
		sym := byName["NewUser"]
		var deps []string
		for _, ref := range sym.References {
			if ref.Kind == element.EdgeDependsOn {
				deps = append(deps, ref.Target)
			}
		}
		assert.Contains(t, deps, "User")
	})

	t.Run("Element ids are stable file:name:line", func(t *testing.T) {
		sym := byName["validate"]
		assert.Equal(t, sym.Element.StableID(), sym.Element.ID)
	})
}
