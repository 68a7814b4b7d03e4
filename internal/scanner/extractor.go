package scanner

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"depscope/internal/element"
)

// Reference is a raw, name-based dependency candidate collected during
// extraction. It is resolved against the full symbol table after the whole
// tree has been scanned.
type Reference struct {
	Target    string
	Qualifier string // package qualifier for selector references, if any
	Kind      element.EdgeKind
}

// RawSymbol is one extracted element together with its outgoing references.
type RawSymbol struct {
	Element    element.CodeElement
	Package    string
	References []Reference
}

// LanguageExtractor is implemented once per supported language.
type LanguageExtractor interface {
	Language() *sitter.Language
	Query() string
	ExtractSymbol(captureName string, node *sitter.Node, source []byte, file, pkg string) *RawSymbol
	PackageName(root *sitter.Node, source []byte) string
}

// Extractor parses one source file and streams its symbols.
type Extractor struct {
	lang LanguageExtractor
	tag  string
}

// NewExtractor creates an extractor for a language tag.
func NewExtractor(lang string) (*Extractor, error) {
	switch lang {
	case "go":
		return &Extractor{lang: &GoExtractor{}, tag: lang}, nil
	}
	return nil, fmt.Errorf("unsupported language: %s", lang)
}

// ExtractFile parses a single source file and extracts all symbols with
// their raw references.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]*RawSymbol, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.ExtractSource(ctx, source, path)
}

// ExtractSource extracts symbols from already-read source bytes, labeling
// them with the given file path.
func (e *Extractor) ExtractSource(ctx context.Context, source []byte, path string) ([]*RawSymbol, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.lang.Language())
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	pkg := e.lang.PackageName(tree.RootNode(), source)

	query, err := sitter.NewQuery([]byte(e.lang.Query()), e.lang.Language())
	if err != nil {
		return nil, fmt.Errorf("symbol query: %w", err)
	}

	var symbols []*RawSymbol
	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			sym := e.lang.ExtractSymbol(query.CaptureNameForId(c.Index), c.Node, source, path, pkg)
			if sym != nil {
				sym.Element.Language = e.tag
				symbols = append(symbols, sym)
			}
		}
	}
	return symbols, nil
}
