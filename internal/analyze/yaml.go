package analyze

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"builder-generator/internal/diagnostic"
)

// yamlFile is the YAML form of a descriptor file.
type yamlFile struct {
	Package string            `yaml:"package"`
	Path    string            `yaml:"path,omitempty"`
	Imports map[string]string `yaml:"imports,omitempty"`
	Types   []yamlType        `yaml:"types"`
}

type yamlType struct {
	Name   string      `yaml:"name"`
	Shape  string      `yaml:"shape,omitempty"`
	Fields []yamlField `yaml:"fields"`

	line, column int
}

type yamlField struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Directives []yaml.Node `yaml:"directives,omitempty"`

	line, column int
}

// UnmarshalYAML records the position of the record.
func (t *yamlType) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlType

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*t = yamlType(p)
	t.line, t.column = node.Line, node.Column

	return nil
}

// UnmarshalYAML records the position of the field.
func (f *yamlField) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlField

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*f = yamlField(p)
	f.line, f.column = node.Line, node.Column

	return nil
}

// LoadYAMLFile loads and parses a YAML descriptor file from the given path.
func LoadYAMLFile(path string) (*DescriptorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file %s: %w", path, err)
	}

	return ParseYAML(data, path)
}

// ParseYAML parses YAML data into a DescriptorFile. filename is used for
// diagnostic locations and as the default output directory.
func ParseYAML(data []byte, filename string) (*DescriptorFile, error) {
	var yf yamlFile

	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor YAML: %w", err)
	}

	records := make([]rawRecord, 0, len(yf.Types))

	for _, t := range yf.Types {
		rec := rawRecord{
			name:     t.Name,
			shape:    t.Shape,
			location: diagnostic.Location{File: filename, Line: t.line, Column: t.column},
		}

		for _, f := range t.Fields {
			field := rawField{
				name:     f.Name,
				typeText: f.Type,
				location: diagnostic.Location{File: filename, Line: f.line, Column: f.column},
			}

			for _, n := range f.Directives {
				if n.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("%s:%d:%d: directive must be a string", filename, n.Line, n.Column)
				}

				field.directives = append(field.directives, RawDirective{
					Text:     directiveText(n.Value),
					Location: diagnostic.Location{File: filename, Line: n.Line, Column: n.Column},
				})
			}

			rec.fields = append(rec.fields, field)
		}

		records = append(records, rec)
	}

	return newDescriptorFile(yf.Package, yf.Path, filepath.Dir(filename), yf.Imports, records)
}
