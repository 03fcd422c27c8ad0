package printer

import (
	"bytes"
	"fmt"
	"text/template"

	"builder-generator/internal/analyze"
	"builder-generator/internal/common"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/directive"
	"builder-generator/internal/gen"
	"builder-generator/internal/match"
)

const (
	// Namespace is the marker namespace of rendering directives.
	Namespace = "debug"
	// KeyFormat overrides the fmt verb of a field.
	KeyFormat = "format"
	// DefaultFormat is used for fields without a directive.
	DefaultFormat = "%v"
	// Suffix is appended to the snake-cased type name to form the filename.
	Suffix = "_string.go"

	expectedForm = "expected `debug(format = \"...\")`"
)

// RenderDirective says how one field is printed.
type RenderDirective struct {
	Field    string
	Format   string
	Optional bool
}

// Directives returns one RenderDirective per field, in declaration order.
func Directives(td *analyze.TypeDescriptor) ([]RenderDirective, error) {
	out := make([]RenderDirective, 0, len(td.Fields))

	for _, f := range td.Fields {
		format, err := fieldFormat(f)
		if err != nil {
			if d, ok := diagnostic.As(err); ok {
				return nil, d.WithSubject(td.Name, f.Name)
			}

			return nil, err
		}

		out = append(out, RenderDirective{
			Field:    f.Name,
			Format:   format,
			Optional: f.Type.Kind == analyze.SignatureOptional,
		})
	}

	return out, nil
}

func fieldFormat(f analyze.FieldDescriptor) (string, error) {
	format := ""

	for _, raw := range f.Directives {
		m, ok, err := directive.ParseMarker(raw, Namespace)
		if err != nil {
			return "", err
		}

		if !ok {
			continue
		}

		if format != "" {
			return "", malformed(m.Location, "duplicate debug directive, at most one is allowed per field")
		}

		if !m.HasArgs || len(m.Pairs) != 1 {
			return "", malformed(m.Location, "%s", expectedForm)
		}

		pair := m.Pairs[0]
		if pair.Key != KeyFormat {
			return "", malformed(pair.Location, "%s, found key %q%s", expectedForm, pair.Key, match.Hint(pair.Key, []string{KeyFormat}))
		}

		if !pair.Value.IsString() || pair.Value.String() == "" {
			return "", malformed(pair.ValueLocation, "%s, format must be a non-empty string literal", expectedForm)
		}

		format = pair.Value.String()
	}

	if format == "" {
		format = DefaultFormat
	}

	return format, nil
}

func malformed(loc diagnostic.Location, format string, args ...any) error {
	return diagnostic.New(diagnostic.KindMalformedDirective, loc, format, args...)
}

type stringerData struct {
	PackageName string
	TypeName    string
	Fields      []RenderDirective
}

// Render emits a String method for td using the given directives.
func Render(td *analyze.TypeDescriptor, directives []RenderDirective, outDir string) (*gen.GeneratedFile, error) {
	var buf bytes.Buffer

	err := stringerTemplate.Execute(&buf, stringerData{
		PackageName: td.PkgName,
		TypeName:    td.Name,
		Fields:      directives,
	})
	if err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	return gen.FormatFile(outDir, common.SnakeCase(td.Name)+Suffix, buf.Bytes())
}

var stringerTemplate = template.Must(template.New("stringer").Parse(gen.Header + `

package {{.PackageName}}

import (
	"fmt"
	"strings"
)

// String renders the {{.TypeName}} with its field formats.
func (v {{.TypeName}}) String() string {
	var sb strings.Builder

	sb.WriteString("{{.TypeName}}{")
{{- range $i, $f := .Fields}}
{{- if $i}}
	sb.WriteString(", ")
{{- end}}
{{- if $f.Optional}}
	if v.{{$f.Field}} == nil {
		sb.WriteString("{{$f.Field}}: <nil>")
	} else {
		fmt.Fprintf(&sb, {{printf "%q" (print $f.Field ": " $f.Format)}}, *v.{{$f.Field}})
	}
{{- else}}
	fmt.Fprintf(&sb, {{printf "%q" (print $f.Field ": " $f.Format)}}, v.{{$f.Field}})
{{- end}}
{{- end}}
	sb.WriteString("}")

	return sb.String()
}
`))
