// Package scanner is the collaborator that produces snapshot payloads from a
// source tree: elements, name-resolved dependency edges and per-file content
// signatures. Resolution is heuristic and name-based; semantic type-checking
// is deliberately out of scope.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"depscope/internal/element"
	"depscope/internal/snapshot"
)

// Scanner walks a project root and extracts a snapshot payload. The root is
// an explicit constructor parameter; nothing here consults the environment.
type Scanner struct {
	root    string
	ignored []string
	ext     *Extractor
	log     *slog.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithIgnoredDirs overrides the directory names skipped during the walk.
func WithIgnoredDirs(dirs ...string) Option {
	return func(s *Scanner) { s.ignored = dirs }
}

// WithLogger overrides the warning logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// New creates a Go scanner over the given project root.
func New(root string, opts ...Option) (*Scanner, error) {
	ext, err := NewExtractor("go")
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		root:    root,
		ignored: []string{".git", "vendor", "node_modules", "testdata"},
		ext:     ext,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan walks the root, hashes every source file and extracts elements plus
// resolved edges. Files that fail to parse are skipped with a warning so one
// bad file never aborts the pass.
func (s *Scanner) Scan(ctx context.Context) (snapshot.Payload, error) {
	var symbols []*RawSymbol
	signatures := make(map[string]string)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, ign := range s.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			rel = path
		}

		source, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable file", "file", rel, "err", err)
			return nil
		}
		signatures[rel] = hashContent(source)

		syms, err := s.ext.ExtractSource(ctx, source, rel)
		if err != nil {
			s.log.Warn("skipping unparseable file", "file", rel, "err", err)
			return nil
		}
		symbols = append(symbols, syms...)
		return nil
	})
	if err != nil {
		return snapshot.Payload{}, fmt.Errorf("scan %s: %w", s.root, err)
	}

	elements := make([]element.CodeElement, 0, len(symbols))
	for _, sym := range symbols {
		elements = append(elements, sym.Element)
	}

	return snapshot.Payload{
		Elements:   elements,
		Edges:      resolveEdges(symbols),
		Signatures: signatures,
	}, nil
}

// resolveEdges maps raw name references onto element-to-element edges. A
// plain reference prefers a same-package symbol, then a unique global name.
// A qualified reference requires a package match; when the resolved target
// lives in another file, an imports edge rides along with the original kind.
func resolveEdges(symbols []*RawSymbol) []element.Edge {
	byName := make(map[string][]*RawSymbol)
	for _, sym := range symbols {
		byName[sym.Element.Name] = append(byName[sym.Element.Name], sym)
	}

	var edges []element.Edge
	seen := make(map[element.Edge]bool)
	add := func(e element.Edge) {
		if !seen[e] {
			seen[e] = true
			edges = append(edges, e)
		}
	}

	for _, sym := range symbols {
		for _, ref := range sym.References {
			target := resolveReference(sym, ref, byName)
			if target == nil || target.Element.ID == sym.Element.ID {
				continue
			}
			add(element.Edge{From: sym.Element.ID, To: target.Element.ID, Kind: ref.Kind})
			if ref.Qualifier != "" && target.Element.File != sym.Element.File {
				add(element.Edge{From: sym.Element.ID, To: target.Element.ID, Kind: element.EdgeImports})
			}
		}
	}
	return edges
}

func resolveReference(from *RawSymbol, ref Reference, byName map[string][]*RawSymbol) *RawSymbol {
	name := cleanTargetName(ref.Target)
	candidates := byName[name]
	if len(candidates) == 0 {
		return nil
	}

	if ref.Qualifier != "" {
		for _, cand := range candidates {
			if cand.Package == ref.Qualifier {
				return cand
			}
		}
		return nil
	}

	for _, cand := range candidates {
		if cand.Package == from.Package {
			return cand
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

func cleanTargetName(name string) string {
	name = strings.TrimPrefix(name, "*")
	name = strings.TrimPrefix(name, "[]")
	return name
}

func hashContent(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
