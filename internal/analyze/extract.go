package analyze

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"builder-generator/internal/diagnostic"
)

// ExtractSpec builds a TypeDescriptor from a type declaration.
// Only structs with named fields qualify; every other shape yields a
// diagnostic.KindUnsupportedShape diagnostic.
func ExtractSpec(fset *token.FileSet, spec *ast.TypeSpec, resolve QualifierResolver) (*TypeDescriptor, error) {
	name := spec.Name.Name
	loc := diagnostic.FromPosition(fset.Position(spec.Name.Pos()))

	unsupported := func(at diagnostic.Location, format string, args ...any) error {
		return diagnostic.New(diagnostic.KindUnsupportedShape, at, format, args...).WithSubject(name, "")
	}

	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		return nil, unsupported(loc, "generic type %s is not supported", name)
	}

	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, unsupported(loc, "%s is %s, only structs with named fields are supported", name, describeShape(spec))
	}

	desc := &TypeDescriptor{Name: name, Location: loc}

	for _, field := range st.Fields.List {
		fieldLoc := diagnostic.FromPosition(fset.Position(field.Pos()))

		if len(field.Names) == 0 {
			return nil, unsupported(fieldLoc, "embedded field %s is not supported", types.ExprString(field.Type))
		}

		sig, err := SignatureFromExpr(field.Type, resolve)
		if err != nil {
			return nil, unsupported(fieldLoc, "field %s: %v", field.Names[0].Name, err)
		}

		markers := CollectMarkers(fset, field.Doc, field.Comment)

		for _, ident := range field.Names {
			if ident.Name == "_" {
				continue
			}

			desc.Fields = append(desc.Fields, FieldDescriptor{
				Name:       ident.Name,
				Type:       sig,
				Directives: markers,
				Location:   diagnostic.FromPosition(fset.Position(ident.Pos())),
			})
		}
	}

	if len(desc.Fields) == 0 {
		return nil, unsupported(loc, "%s has no named fields", name)
	}

	return desc, nil
}

func describeShape(spec *ast.TypeSpec) string {
	switch t := spec.Type.(type) {
	case *ast.InterfaceType:
		return "an interface"
	case *ast.FuncType:
		return "a func type"
	case *ast.MapType:
		return "a map type"
	case *ast.ChanType:
		return "a channel type"
	case *ast.ArrayType:
		if t.Len == nil {
			return "a slice type"
		}

		return "an array type"
	case *ast.StarExpr:
		return "a pointer type"
	default:
		if spec.Assign.IsValid() {
			return "an alias of " + types.ExprString(spec.Type)
		}

		return "a named " + types.ExprString(spec.Type) + " type"
	}
}

// FileResolver resolves qualifiers from the import declarations of a file.
// Unnamed imports are keyed by the last path element.
func FileResolver(file *ast.File) QualifierResolver {
	imports := make(map[string]string, len(file.Imports))

	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := importName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}

		imports[name] = path
	}

	return MapResolver(imports)
}

// typeDoc returns the doc comment of a type spec, falling back to the
// declaration's doc for single-spec declarations.
func typeDoc(decl *ast.GenDecl, spec *ast.TypeSpec) *ast.CommentGroup {
	if spec.Doc != nil {
		return spec.Doc
	}

	if len(decl.Specs) == 1 {
		return decl.Doc
	}

	return nil
}
