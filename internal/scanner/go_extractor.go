package scanner

import (
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"depscope/internal/element"
)

// GoExtractor implements LanguageExtractor for Go.
type GoExtractor struct{}

func (g *GoExtractor) Language() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) Query() string {
	return `
		(function_declaration) @func
		(method_declaration) @func
		(type_spec) @type
		(const_spec) @const
		(var_spec) @var
	`
}

func (g *GoExtractor) PackageName(root *sitter.Node, source []byte) string {
	q, _ := sitter.NewQuery([]byte(`(package_clause (package_identifier) @pkg)`), golang.GetLanguage())
	qc := sitter.NewQueryCursor()
	qc.Exec(q, root)
	if m, ok := qc.NextMatch(); ok {
		return m.Captures[0].Node.Content(source)
	}
	return ""
}

func (g *GoExtractor) ExtractSymbol(captureName string, node *sitter.Node, source []byte, file, pkg string) *RawSymbol {
	var sym *RawSymbol
	switch captureName {
	case "func":
		sym = g.extractFunction(node, source, file)
	case "type":
		sym = g.extractType(node, source, file)
	case "const", "var":
		sym = g.extractValue(node, source, file)
	}
	if sym != nil {
		sym.Package = pkg
	}
	return sym
}

func (g *GoExtractor) extractFunction(node *sitter.Node, source []byte, file string) *RawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(source)

	typ := element.TypeFunction
	if node.Type() == "method_declaration" {
		typ = element.TypeMethod
	}

	params := g.countParams(node.ChildByFieldName("parameters"), source)
	sym := &RawSymbol{
		Element: element.CodeElement{
			ID:         fmt.Sprintf("%s:%s:%d", file, name, node.StartPoint().Row+1),
			Name:       name,
			Type:       typ,
			File:       file,
			Line:       int(node.StartPoint().Row + 1),
			EndLine:    int(node.EndPoint().Row + 1),
			Exported:   isExported(name),
			ParamCount: &params,
		},
	}

	if body := node.ChildByFieldName("body"); body != nil {
		sym.References = append(sym.References, g.collectCalls(body, source)...)
	}
	// Parameter and result types feed depends_on edges.
	sym.References = append(sym.References, g.collectTypeRefs(node.ChildByFieldName("parameters"), source)...)
	sym.References = append(sym.References, g.collectTypeRefs(node.ChildByFieldName("result"), source)...)
	return sym
}

func (g *GoExtractor) extractType(node *sitter.Node, source []byte, file string) *RawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(source)

	span := node
	if p := node.Parent(); p != nil && p.Type() == "type_declaration" {
		span = p
	}

	typ := element.TypeTypeAlias
	typeNode := node.ChildByFieldName("type")
	if typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			typ = element.TypeClass
		case "interface_type":
			typ = element.TypeInterface
		}
	}

	sym := &RawSymbol{
		Element: element.CodeElement{
			ID:       fmt.Sprintf("%s:%s:%d", file, name, node.StartPoint().Row+1),
			Name:     name,
			Type:     typ,
			File:     file,
			Line:     int(node.StartPoint().Row + 1),
			EndLine:  int(span.EndPoint().Row + 1),
			Exported: isExported(name),
		},
	}
	sym.References = append(sym.References, g.collectTypeRefs(typeNode, source)...)
	return sym
}

func (g *GoExtractor) extractValue(node *sitter.Node, source []byte, file string) *RawSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(source)

	sym := &RawSymbol{
		Element: element.CodeElement{
			ID:       fmt.Sprintf("%s:%s:%d", file, name, node.StartPoint().Row+1),
			Name:     name,
			Type:     element.TypeConstant,
			File:     file,
			Line:     int(node.StartPoint().Row + 1),
			EndLine:  int(node.EndPoint().Row + 1),
			Exported: isExported(name),
		},
	}
	sym.References = append(sym.References, g.collectTypeRefs(node.ChildByFieldName("type"), source)...)
	return sym
}

// collectCalls gathers invocation targets inside a function body. Plain
// identifiers become calls candidates; selector calls keep their qualifier so
// the resolver can classify cross-package references as imports.
func (g *GoExtractor) collectCalls(body *sitter.Node, source []byte) []Reference {
	var refs []Reference
	q, err := sitter.NewQuery([]byte(`
		(call_expression function: (identifier) @plain)
		(call_expression function: (selector_expression) @selector)
	`), golang.GetLanguage())
	if err != nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, body)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			text := c.Node.Content(source)
			switch q.CaptureNameForId(c.Index) {
			case "plain":
				refs = append(refs, Reference{Target: text, Kind: element.EdgeCalls})
			case "selector":
				if dot := strings.LastIndex(text, "."); dot > 0 {
					refs = append(refs, Reference{
						Target:    text[dot+1:],
						Qualifier: text[:dot],
						Kind:      element.EdgeCalls,
					})
				}
			}
		}
	}
	return refs
}

// collectTypeRefs gathers named type usages under node as depends_on
// candidates.
func (g *GoExtractor) collectTypeRefs(node *sitter.Node, source []byte) []Reference {
	if node == nil {
		return nil
	}
	q, err := sitter.NewQuery([]byte(`(type_identifier) @t`), golang.GetLanguage())
	if err != nil {
		return nil
	}
	var refs []Reference
	qc := sitter.NewQueryCursor()
	qc.Exec(q, node)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			refs = append(refs, Reference{Target: c.Node.Content(source), Kind: element.EdgeDependsOn})
		}
	}
	return refs
}

func (g *GoExtractor) countParams(paramsNode *sitter.Node, source []byte) int {
	if paramsNode == nil {
		return 0
	}
	q, err := sitter.NewQuery([]byte(`(parameter_declaration) @param`), golang.GetLanguage())
	if err != nil {
		return 0
	}
	count := 0
	qc := sitter.NewQueryCursor()
	qc.Exec(q, paramsNode)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			names := 0
			for i := 0; i < int(c.Node.NamedChildCount()); i++ {
				if c.Node.NamedChild(i).Type() == "identifier" {
					names++
				}
			}
			if names == 0 {
				names = 1 // unnamed parameter
			}
			count += names
		}
	}
	return count
}

func isExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
