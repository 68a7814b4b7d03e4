package element

import "fmt"

// Type classifies a code element as recorded by the scanner.
type Type string

const (
	TypeFunction  Type = "function"
	TypeMethod    Type = "method"
	TypeClass     Type = "class"
	TypeComponent Type = "component"
	TypeHook      Type = "hook"
	TypeInterface Type = "interface"
	TypeEnum      Type = "enum"
	TypeConstant  Type = "constant"
	TypeTypeAlias Type = "type-alias"
)

// Valid reports whether t is one of the known element types.
func (t Type) Valid() bool {
	switch t {
	case TypeFunction, TypeMethod, TypeClass, TypeComponent, TypeHook,
		TypeInterface, TypeEnum, TypeConstant, TypeTypeAlias:
		return true
	}
	return false
}

// EdgeKind is the relationship carried by a dependency edge.
type EdgeKind string

const (
	// EdgeCalls is a direct invocation.
	EdgeCalls EdgeKind = "calls"
	// EdgeImports is a cross-package symbol reference.
	EdgeImports EdgeKind = "imports"
	// EdgeDependsOn is the coarser relation that may subsume calls and imports.
	EdgeDependsOn EdgeKind = "depends_on"
)

// Valid reports whether k is one of the known edge kinds.
func (k EdgeKind) Valid() bool {
	switch k {
	case EdgeCalls, EdgeImports, EdgeDependsOn:
		return true
	}
	return false
}

// Kinds lists all edge kinds in a fixed order.
func Kinds() []EdgeKind {
	return []EdgeKind{EdgeCalls, EdgeImports, EdgeDependsOn}
}

// CodeElement is a named, located unit of code.
type CodeElement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	EndLine  int    `json:"end_line,omitempty"` // 0 when the scanner did not report a span
	Exported bool   `json:"exported"`
	Language string `json:"language"`
	// ParamCount is nil when the scanner did not supply the signal.
	ParamCount *int `json:"param_count,omitempty"`
}

// StableID derives the canonical identifier from identity fields.
// Used when the scanner payload omits an explicit id.
func (e *CodeElement) StableID() string {
	return fmt.Sprintf("%s:%s:%d", e.File, e.Name, e.Line)
}

// Edge is a directed relationship between two elements.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}
