package analyze

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"builder-generator/internal/common"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and exposes their struct declarations.
type Analyzer struct {
	logger *zap.Logger
	// Dir is the working directory for package patterns; empty means the
	// current directory.
	Dir string
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{logger: logger}
}

// LoadPackages loads the specified packages.
// Patterns are standard Go package patterns (e.g., "./examples/command").
// Type-check errors are logged and tolerated so stale generated files do not
// block regeneration; list and parse errors fail the load.
func (a *Analyzer) LoadPackages(patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				a.logger.Warn("type error in package",
					zap.String("package", pkg.PkgPath), zap.String("error", e.Error()))

				continue
			}

			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	result := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		result = append(result, a.processPackage(pkg))
	}

	return result, nil
}

// processPackage indexes the type declarations of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) *Package {
	p := &Package{
		Path:  pkg.PkgPath,
		Name:  pkg.Name,
		fset:  pkg.Fset,
		info:  pkg.TypesInfo,
		specs: make(map[string]typeSpecRef),
	}

	if len(pkg.GoFiles) > 0 {
		p.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, file := range pkg.Syntax {
		p.scope = append(p.scope, packageScope(file)...)

		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, s := range gd.Specs {
				ts := s.(*ast.TypeSpec)

				ref := typeSpecRef{file: file, spec: ts}
				ref.annotated = HasMarker(CollectMarkers(pkg.Fset, typeDoc(gd, ts)), GenerateMarker)

				p.names = append(p.names, ts.Name.Name)
				p.specs[ts.Name.Name] = ref
			}
		}
	}

	a.logger.Debug("loaded package",
		zap.String("package", p.Path), zap.Int("types", len(p.names)))

	return p
}

// Package is a loaded Go package. It implements Source.
type Package struct {
	Path string
	Name string
	Dir  string

	fset  *token.FileSet
	info  *types.Info
	names []string
	scope []string
	specs map[string]typeSpecRef
}

type typeSpecRef struct {
	file      *ast.File
	spec      *ast.TypeSpec
	annotated bool
}

var _ Source = (*Package)(nil)

// TypeNames lists every type declared in the package.
func (p *Package) TypeNames() []string {
	return p.names
}

// Annotated lists the types whose doc comment carries +builder:generate.
func (p *Package) Annotated() []string {
	var names []string

	for _, name := range p.names {
		if p.specs[name].annotated {
			names = append(names, name)
		}
	}

	return names
}

// Extract builds the descriptor of the named type.
func (p *Package) Extract(name string) (*TypeDescriptor, error) {
	ref, ok := p.specs[name]
	if !ok {
		return nil, fmt.Errorf("type %s not found in package %s", name, p.Path)
	}

	desc, err := ExtractSpec(p.fset, ref.spec, p.resolver(ref.file))
	if err != nil {
		return nil, err
	}

	desc.PkgName = p.Name
	desc.PkgPath = p.Path
	desc.Dir = p.Dir
	desc.Scope = p.scope

	return desc, nil
}

// packageScope lists the names a file declares at package scope. Methods and
// imports are file or type scoped and are left out.
func packageScope(file *ast.File) []string {
	var names []string

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				names = append(names, d.Name.Name)
			}
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch spec := s.(type) {
				case *ast.TypeSpec:
					names = append(names, spec.Name.Name)
				case *ast.ValueSpec:
					for _, ident := range spec.Names {
						names = append(names, ident.Name)
					}
				}
			}
		}
	}

	return names
}

// resolver prefers type-checker information and falls back to the file's
// import declarations.
func (p *Package) resolver(file *ast.File) QualifierResolver {
	fallback := FileResolver(file)

	return func(ident *ast.Ident) (string, bool) {
		if p.info != nil {
			if pkgName, ok := p.info.Uses[ident].(*types.PkgName); ok {
				return pkgName.Imported().Path(), true
			}
		}

		return fallback(ident)
	}
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// importName guesses the package name of an import path the way goimports
// does for unnamed imports.
func importName(path string) string {
	base := common.PkgAlias(path)
	if majorVersion.MatchString(base) {
		base = common.PkgAlias(strings.TrimSuffix(path, "/"+base))
	}

	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}

	if i := strings.LastIndex(base, "-"); i >= 0 {
		base = base[i+1:]
	}

	return base
}
