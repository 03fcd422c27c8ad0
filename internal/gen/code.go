package gen

import (
	"slices"

	"builder-generator/internal/analyze"
	"builder-generator/internal/common"
	"builder-generator/internal/plan"
)

const (
	receiverName = "b"
	slicesImport = "slices"
	// BuildkitImport is the runtime support package of generated builders.
	BuildkitImport = "builder-generator/pkg/buildkit"
)

// MethodKind tells the template which body to render.
type MethodKind int

const (
	// MethodSet stores a single value into a pointer slot.
	MethodSet MethodKind = iota
	// MethodReplace replaces a repeated slot with a copy of the argument.
	MethodReplace
	// MethodAppend pushes one element onto a repeated slot.
	MethodAppend
)

// Code is the model of one generated builder.
type Code struct {
	PackageName string
	Filename    string
	Imports     []analyze.Import

	// TypeName is the record being built.
	TypeName string
	Builder  string
	Factory  string

	// Slices and Buildkit are the qualifiers the method bodies use for the
	// generator's own imports.
	Slices   string
	Buildkit string

	Slots   []Slot
	Methods []Method
	// Steps are the Build reads, in declaration order.
	Steps []BuildStep
}

// HasRequired reports whether Build can fail.
func (c *Code) HasRequired() bool {
	return slices.ContainsFunc(c.Steps, BuildStep.Required)
}

// Slot is one field of the builder struct.
type Slot struct {
	Name string
	Type string
}

// Method is one fluent method of the builder.
type Method struct {
	Kind MethodKind
	Name string
	// Field is the record field the method fills.
	Field     string
	Slot      string
	Param     string
	ParamType string
	Doc       string
}

// IsSet reports whether the method stores a single value.
func (m Method) IsSet() bool {
	return m.Kind == MethodSet
}

// IsReplace reports whether the method replaces a whole repeated slot.
func (m Method) IsReplace() bool {
	return m.Kind == MethodReplace
}

// BuildStep moves one slot into the result.
type BuildStep struct {
	Field string
	Slot  string
	Class plan.ClassKind
}

// Required reports whether the step can fail.
func (s BuildStep) Required() bool {
	return s.Class == plan.ClassRequired
}

// Repeated reports whether the step copies a slice.
func (s BuildStep) Repeated() bool {
	return s.Class == plan.ClassRepeated
}

// Emit lowers a plan into the code model.
func Emit(bp *plan.BuilderPlan, suffix string) *Code {
	td := bp.Type

	code := &Code{
		PackageName: td.PkgName,
		Filename:    common.SnakeCase(td.Name) + suffix,
		TypeName:    td.Name,
		Builder:     bp.BuilderName,
		Factory:     bp.FactoryName,
	}

	var imports []analyze.Import
	for _, fp := range bp.Fields {
		imports = append(imports, fp.Class.Type.Imports...)
	}

	code.Slices = qualifier(td.Scope, imports, slicesImport)
	code.Buildkit = qualifier(td.Scope, imports, BuildkitImport)

	for _, fp := range bp.Fields {
		elem := fp.Class.Type.Expr

		step := BuildStep{Field: fp.Field.Name, Slot: fp.Slot, Class: fp.Class.Kind}
		code.Steps = append(code.Steps, step)

		switch fp.Class.Kind {
		case plan.ClassRepeated:
			code.Slots = append(code.Slots, Slot{Name: fp.Slot, Type: "[]" + elem})
			imports = append(imports, analyze.Import{Name: code.Slices, Path: slicesImport})

			if fp.Setter != "" {
				code.Methods = append(code.Methods, Method{
					Kind:      MethodReplace,
					Name:      fp.Setter,
					Field:     fp.Field.Name,
					Slot:      fp.Slot,
					Param:     code.paramName(fp.Slot),
					ParamType: "[]" + elem,
					Doc:       "replaces " + fp.Field.Name + " with a copy of the given elements.",
				})
			}

			code.Methods = append(code.Methods, Method{
				Kind:      MethodAppend,
				Name:      fp.Appender,
				Field:     fp.Field.Name,
				Slot:      fp.Slot,
				Param:     code.paramName(common.SafeIdent(common.LowerCamel(fp.Class.Accessor))),
				ParamType: elem,
				Doc:       "appends one element to " + fp.Field.Name + ".",
			})
		default:
			code.Slots = append(code.Slots, Slot{Name: fp.Slot, Type: "*" + elem})

			doc := "sets the required " + fp.Field.Name + " field."
			if fp.Class.Kind == plan.ClassOptional {
				doc = "sets the optional " + fp.Field.Name + " field."
			} else {
				imports = append(imports, analyze.Import{Name: code.Buildkit, Path: BuildkitImport})
			}

			code.Methods = append(code.Methods, Method{
				Kind:      MethodSet,
				Name:      fp.Setter,
				Field:     fp.Field.Name,
				Slot:      fp.Slot,
				Param:     code.paramName(fp.Slot),
				ParamType: elem,
				Doc:       doc,
			})
		}
	}

	code.Imports = sortImports(imports)

	return code
}

// qualifier picks the name a generator import is referenced by. The default
// package name is kept unless a package-scope declaration or a field import
// of another path already uses it.
func qualifier(scope []string, fieldImports []analyze.Import, path string) string {
	var ns common.Namespace

	ns.Reserve(scope...)

	for _, imp := range fieldImports {
		if imp.Path != path {
			ns.Reserve(imp.Name)
		}
	}

	return ns.Claim(common.PkgAlias(path))
}

// paramName keeps method parameters from shadowing the receiver or the
// packages referenced in method bodies.
func (c *Code) paramName(name string) string {
	switch name {
	case receiverName, c.Slices, c.Buildkit:
		return "v"
	default:
		return name
	}
}

// sortImports orders imports by path. A path imported under several names
// keeps one entry per name.
func sortImports(imports []analyze.Import) []analyze.Import {
	sorted := analyze.Plain("", imports...).Imports
	seen := make(map[analyze.Import]bool, len(sorted))
	out := sorted[:0]

	for _, imp := range sorted {
		key := analyze.Import{Name: importAlias(imp), Path: imp.Path}
		if seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, imp)
	}

	return out
}

// importAlias returns the explicit import name, or "" when the default name applies.
func importAlias(imp analyze.Import) string {
	if imp.Name == "" || imp.Name == common.PkgAlias(imp.Path) {
		return ""
	}

	return imp.Name
}
