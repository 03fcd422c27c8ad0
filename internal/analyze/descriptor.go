package analyze

import (
	"fmt"
	"go/token"
	"strings"

	"builder-generator/internal/diagnostic"
)

// Shapes a descriptor file may declare. Only ShapeStruct is generated.
const (
	ShapeStruct = "struct"
	ShapeTuple  = "tuple"
	ShapeEnum   = "enum"
	ShapeUnit   = "unit"
)

// DescriptorFile is a set of pre-extracted record descriptions loaded from a
// YAML or HCL file. It implements Source.
type DescriptorFile struct {
	Package string
	Path    string
	Dir     string

	names   []string
	entries map[string]descriptorEntry
}

type descriptorEntry struct {
	desc *TypeDescriptor
	err  error
}

var _ Source = (*DescriptorFile)(nil)

// TypeNames lists every record in the file.
func (f *DescriptorFile) TypeNames() []string {
	return f.names
}

// Annotated lists every record: a descriptor file only contains types meant
// for generation.
func (f *DescriptorFile) Annotated() []string {
	return f.names
}

// Extract returns the descriptor of the named record.
func (f *DescriptorFile) Extract(name string) (*TypeDescriptor, error) {
	entry, ok := f.entries[name]
	if !ok {
		return nil, fmt.Errorf("type %s not found in descriptor for package %s", name, f.Package)
	}

	if entry.err != nil {
		return nil, entry.err
	}

	return entry.desc, nil
}

func (f *DescriptorFile) add(name string, desc *TypeDescriptor, err error) error {
	if f.entries == nil {
		f.entries = make(map[string]descriptorEntry)
	}

	if _, dup := f.entries[name]; dup {
		return fmt.Errorf("duplicate record %s", name)
	}

	if desc != nil {
		desc.PkgName = f.Package
		desc.PkgPath = f.Path
		desc.Dir = f.Dir
	}

	f.names = append(f.names, name)
	f.entries[name] = descriptorEntry{desc: desc, err: err}

	return nil
}

// rawRecord is the front-end neutral form of one record in a descriptor file.
type rawRecord struct {
	name     string
	shape    string
	location diagnostic.Location
	fields   []rawField
}

type rawField struct {
	name       string
	typeText   string
	directives []RawDirective
	location   diagnostic.Location
}

// buildDescriptor validates a raw record the same way ExtractSpec validates
// a Go declaration.
func buildDescriptor(rec rawRecord, imports map[string]string) (*TypeDescriptor, error) {
	unsupported := func(at diagnostic.Location, field, format string, args ...any) error {
		return diagnostic.New(diagnostic.KindUnsupportedShape, at, format, args...).WithSubject(rec.name, field)
	}

	if !token.IsIdentifier(rec.name) {
		return nil, unsupported(rec.location, "", "invalid record name %q", rec.name)
	}

	shape := rec.shape
	if shape == "" {
		shape = ShapeStruct
	}

	switch shape {
	case ShapeStruct:
	case ShapeTuple, ShapeEnum, ShapeUnit:
		return nil, unsupported(rec.location, "", "%s is a %s, only structs with named fields are supported", rec.name, shape)
	default:
		return nil, unsupported(rec.location, "", "unknown shape %q", shape)
	}

	desc := &TypeDescriptor{Name: rec.name, Location: rec.location}

	for _, f := range rec.fields {
		if f.name == "_" {
			continue
		}

		if !token.IsIdentifier(f.name) {
			return nil, unsupported(f.location, f.name, "invalid field name %q", f.name)
		}

		if desc.Field(f.name) != nil {
			return nil, unsupported(f.location, f.name, "duplicate field %s", f.name)
		}

		sig, err := ParseTypeExpr(f.typeText, imports)
		if err != nil {
			return nil, unsupported(f.location, f.name, "field %s: %v", f.name, err)
		}

		desc.Fields = append(desc.Fields, FieldDescriptor{
			Name:       f.name,
			Type:       sig,
			Directives: f.directives,
			Location:   f.location,
		})
	}

	if len(desc.Fields) == 0 {
		return nil, unsupported(rec.location, "", "%s has no named fields", rec.name)
	}

	return desc, nil
}

func newDescriptorFile(pkgName, pkgPath, dir string, imports map[string]string, records []rawRecord) (*DescriptorFile, error) {
	if !token.IsIdentifier(pkgName) {
		return nil, fmt.Errorf("invalid package name %q", pkgName)
	}

	file := &DescriptorFile{Package: pkgName, Path: pkgPath, Dir: dir}

	for _, rec := range records {
		desc, err := buildDescriptor(rec, imports)
		if addErr := file.add(rec.name, desc, err); addErr != nil {
			return nil, addErr
		}
	}

	return file, nil
}

// directiveText strips an optional leading "+" so descriptor files accept
// markers written either way.
func directiveText(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "+"))
}
