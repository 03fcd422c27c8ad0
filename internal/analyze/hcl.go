package analyze

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"builder-generator/internal/diagnostic"
)

var hclFileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "package", Required: true},
		{Name: "path"},
		{Name: "imports"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "record", LabelNames: []string{"name"}},
	},
}

var hclRecordSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "shape"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
	},
}

var hclFieldSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type", Required: true},
		{Name: "directives"},
	},
}

// LoadHCLFile loads and parses an HCL descriptor file from the given path.
func LoadHCLFile(path string) (*DescriptorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file %s: %w", path, err)
	}

	return ParseHCL(data, path)
}

// ParseHCL parses HCL data into a DescriptorFile. Problems inside a single
// record are reported when that record is extracted; problems with the file
// itself fail the parse.
func ParseHCL(data []byte, filename string) (*DescriptorFile, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse descriptor HCL: %w", diags)
	}

	content, diags := file.Body.Content(hclFileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid descriptor HCL: %w", diags)
	}

	pkgName, diags := hclString(content.Attributes["package"])
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid package: %w", diags)
	}

	pkgPath, diags := hclString(content.Attributes["path"])
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid path: %w", diags)
	}

	imports, diags := hclStringMap(content.Attributes["imports"])
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid imports: %w", diags)
	}

	if !token.IsIdentifier(pkgName) {
		return nil, fmt.Errorf("invalid package name %q", pkgName)
	}

	out := &DescriptorFile{Package: pkgName, Path: pkgPath, Dir: filepath.Dir(filename)}

	for _, block := range content.Blocks {
		name := block.Labels[0]

		rec, diags := decodeHCLRecord(block)
		if diags.HasErrors() {
			if err := out.add(name, nil, hclDiagnostic(name, diags)); err != nil {
				return nil, err
			}

			continue
		}

		desc, err := buildDescriptor(rec, imports)
		if addErr := out.add(name, desc, err); addErr != nil {
			return nil, addErr
		}
	}

	return out, nil
}

func decodeHCLRecord(block *hcl.Block) (rawRecord, hcl.Diagnostics) {
	rec := rawRecord{
		name:     block.Labels[0],
		location: hclLocation(block.LabelRanges[0]),
	}

	content, diags := block.Body.Content(hclRecordSchema)
	if diags.HasErrors() {
		return rec, diags
	}

	rec.shape, diags = hclString(content.Attributes["shape"])
	if diags.HasErrors() {
		return rec, diags
	}

	for _, fb := range content.Blocks {
		field := rawField{
			name:     fb.Labels[0],
			location: hclLocation(fb.LabelRanges[0]),
		}

		fc, diags := fb.Body.Content(hclFieldSchema)
		if diags.HasErrors() {
			return rec, diags
		}

		field.typeText, diags = hclString(fc.Attributes["type"])
		if diags.HasErrors() {
			return rec, diags
		}

		field.directives, diags = hclDirectives(fc.Attributes["directives"])
		if diags.HasErrors() {
			return rec, diags
		}

		rec.fields = append(rec.fields, field)
	}

	return rec, nil
}

// hclString evaluates a string attribute; a missing attribute yields "".
func hclString(attr *hcl.Attribute) (string, hcl.Diagnostics) {
	if attr == nil {
		return "", nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}

	if val.IsNull() || val.Type() != cty.String {
		return "", hcl.Diagnostics{typeError(attr.Expr.Range(), attr.Name, "a string")}
	}

	return val.AsString(), nil
}

func hclStringMap(attr *hcl.Attribute) (map[string]string, hcl.Diagnostics) {
	if attr == nil {
		return nil, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	ty := val.Type()
	if val.IsNull() || !(ty.IsObjectType() || ty.IsMapType()) {
		return nil, hcl.Diagnostics{typeError(attr.Expr.Range(), attr.Name, "an object of strings")}
	}

	out := make(map[string]string)

	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		if v.IsNull() || v.Type() != cty.String {
			return nil, hcl.Diagnostics{typeError(attr.Expr.Range(), attr.Name+"."+k.AsString(), "a string")}
		}

		out[k.AsString()] = v.AsString()
	}

	return out, nil
}

// hclDirectives evaluates a list of marker strings, keeping the range of each
// element when the list is written literally.
func hclDirectives(attr *hcl.Attribute) ([]RawDirective, hcl.Diagnostics) {
	if attr == nil {
		return nil, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	ty := val.Type()
	if val.IsNull() || !(ty.IsTupleType() || ty.IsListType()) {
		return nil, hcl.Diagnostics{typeError(attr.Expr.Range(), attr.Name, "a list of strings")}
	}

	var elems []hclsyntax.Expression
	if tuple, ok := attr.Expr.(*hclsyntax.TupleConsExpr); ok {
		elems = tuple.Exprs
	}

	var out []RawDirective

	for i, v := range val.AsValueSlice() {
		rng := attr.Expr.Range()
		if i < len(elems) {
			rng = elems[i].Range()
		}

		if v.IsNull() || v.Type() != cty.String {
			return nil, hcl.Diagnostics{typeError(rng, attr.Name, "a list of strings")}
		}

		out = append(out, RawDirective{Text: directiveText(v.AsString()), Location: hclLocation(rng)})
	}

	return out, nil
}

func typeError(rng hcl.Range, name, want string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Incorrect attribute value type",
		Detail:   fmt.Sprintf("Attribute %q must be %s.", name, want),
		Subject:  &rng,
	}
}

func hclLocation(rng hcl.Range) diagnostic.Location {
	return diagnostic.Location{File: rng.Filename, Line: rng.Start.Line, Column: rng.Start.Column}
}

// hclDiagnostic converts the first HCL error into an UnsupportedShape diagnostic.
func hclDiagnostic(record string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}

		var loc diagnostic.Location
		if d.Subject != nil {
			loc = hclLocation(*d.Subject)
		}

		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}

		return diagnostic.New(diagnostic.KindUnsupportedShape, loc, "%s", msg).WithSubject(record, "")
	}

	return errors.New(diags.Error())
}
