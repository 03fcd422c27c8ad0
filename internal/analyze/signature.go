package analyze

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
)

// QualifierResolver maps the package qualifier of a selector type expression
// (the "time" in time.Duration) to an import path.
type QualifierResolver func(ident *ast.Ident) (string, bool)

// MapResolver resolves qualifiers from a name -> import path table.
func MapResolver(imports map[string]string) QualifierResolver {
	return func(ident *ast.Ident) (string, bool) {
		path, ok := imports[ident.Name]
		return path, ok
	}
}

// SignatureFromExpr classifies the shape of a type expression.
// Only a single level of *T or []E is unwrapped per wrapper; everything else
// (arrays, maps, channels, funcs, instantiated generics) is plain.
func SignatureFromExpr(expr ast.Expr, resolve QualifierResolver) (TypeSignature, error) {
	if !isTypeExpr(expr) {
		return TypeSignature{}, fmt.Errorf("%q is not a type expression", types.ExprString(expr))
	}

	switch e := expr.(type) {
	case *ast.ParenExpr:
		return SignatureFromExpr(e.X, resolve)

	case *ast.StarExpr:
		inner, err := SignatureFromExpr(e.X, resolve)
		if err != nil {
			return TypeSignature{}, err
		}

		return Optional(inner), nil

	case *ast.ArrayType:
		if e.Len == nil {
			elem, err := SignatureFromExpr(e.Elt, resolve)
			if err != nil {
				return TypeSignature{}, err
			}

			return Sequence(elem), nil
		}
	}

	imports, err := collectImports(expr, resolve)
	if err != nil {
		return TypeSignature{}, err
	}

	return Plain(types.ExprString(expr), imports...), nil
}

// ParseTypeExpr parses a Go type written as text, as found in descriptor files.
func ParseTypeExpr(text string, imports map[string]string) (TypeSignature, error) {
	expr, err := parser.ParseExpr(text)
	if err != nil {
		return TypeSignature{}, fmt.Errorf("invalid type %q: %w", text, err)
	}

	return SignatureFromExpr(expr, MapResolver(imports))
}

func collectImports(expr ast.Expr, resolve QualifierResolver) ([]Import, error) {
	var (
		imports []Import
		err     error
	)

	ast.Inspect(expr, func(n ast.Node) bool {
		if err != nil {
			return false
		}

		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}

		var (
			path  string
			found bool
		)
		if resolve != nil {
			path, found = resolve(ident)
		}

		if !found {
			err = fmt.Errorf("unknown package qualifier %q in %s", ident.Name, types.ExprString(expr))
			return false
		}

		imports = append(imports, Import{Name: ident.Name, Path: path})

		return false
	})

	return imports, err
}

func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident, *ast.StarExpr, *ast.ArrayType, *ast.MapType, *ast.ChanType,
		*ast.FuncType, *ast.InterfaceType, *ast.StructType,
		*ast.IndexExpr, *ast.IndexListExpr:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.ParenExpr:
		return isTypeExpr(e.X)
	default:
		return false
	}
}
