package analyze

import (
	"go/token"
	"slices"
	"strings"

	"builder-generator/internal/common"
	"builder-generator/internal/diagnostic"
)

// SignatureKind represents the shape of a field type.
type SignatureKind int

const (
	SignaturePlain    SignatureKind = iota // any type treated as opaque
	SignatureOptional                      // *T
	SignatureSequence                      // []E
)

// String returns a human-readable representation of the SignatureKind.
func (k SignatureKind) String() string {
	switch k {
	case SignaturePlain:
		return "plain"
	case SignatureOptional:
		return "optional"
	case SignatureSequence:
		return "sequence"
	default:
		return common.UnknownStr
	}
}

// Import is a package referenced from a type expression.
type Import struct {
	Name string // qualifier used in the expression, e.g. "time"
	Path string // import path, e.g. "time"
}

// TypeSignature describes the declared type of a field.
type TypeSignature struct {
	Kind SignatureKind
	// Expr is the Go source of the whole type, e.g. "[]time.Duration".
	Expr string
	// Elem is the wrapped type for optional and sequence signatures.
	Elem *TypeSignature
	// Imports lists the packages Expr refers to, sorted by path.
	Imports []Import
}

// Plain creates an opaque signature.
func Plain(expr string, imports ...Import) TypeSignature {
	return TypeSignature{Kind: SignaturePlain, Expr: expr, Imports: normalizeImports(imports)}
}

// Optional wraps inner in a pointer signature.
func Optional(inner TypeSignature) TypeSignature {
	return TypeSignature{Kind: SignatureOptional, Expr: "*" + inner.Expr, Elem: &inner, Imports: inner.Imports}
}

// Sequence wraps elem in a slice signature.
func Sequence(elem TypeSignature) TypeSignature {
	return TypeSignature{Kind: SignatureSequence, Expr: "[]" + elem.Expr, Elem: &elem, Imports: elem.Imports}
}

// String returns the Go type expression.
func (s TypeSignature) String() string {
	return s.Expr
}

func normalizeImports(imports []Import) []Import {
	if len(imports) == 0 {
		return nil
	}

	out := slices.Clone(imports)
	slices.SortFunc(out, func(a, b Import) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}

		return strings.Compare(a.Name, b.Name)
	})

	return slices.Compact(out)
}

// RawDirective is a directive marker captured verbatim, without the leading "+".
type RawDirective struct {
	Text     string // e.g. `builder(each = "arg")`
	Location diagnostic.Location
}

// FieldDescriptor describes a struct field.
type FieldDescriptor struct {
	Name       string
	Type       TypeSignature
	Directives []RawDirective
	Location   diagnostic.Location
}

// TypeDescriptor describes a record type and its ordered fields.
type TypeDescriptor struct {
	Name     string
	PkgName  string
	PkgPath  string
	Dir      string // directory generated files belong in
	Fields   []FieldDescriptor
	Location diagnostic.Location
	// Scope lists the package-scope identifiers of the record's package, when
	// the front end knows them.
	Scope []string
}

// Exported reports whether the record type is exported.
func (t *TypeDescriptor) Exported() bool {
	return token.IsExported(t.Name)
}

// Field returns the field with the given name, or nil.
func (t *TypeDescriptor) Field(name string) *FieldDescriptor {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	return nil
}

// Source is a loaded input that yields record descriptors by name.
type Source interface {
	// TypeNames lists every type declared by the source, in declaration order.
	TypeNames() []string
	// Annotated lists the types selected for generation without explicit names.
	Annotated() []string
	// Extract builds the descriptor for one type. Shape problems are returned
	// as diagnostic.Diagnostic values.
	Extract(name string) (*TypeDescriptor, error)
}
