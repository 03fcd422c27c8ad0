package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	"go.uber.org/zap"

	"builder-generator/internal/plan"
)

// Header is the first line of every generated file.
const Header = "// Code generated by builder-gen. DO NOT EDIT."

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// OutputDir is where the .unformatted.go sidecar goes when formatting fails.
	// Empty disables the sidecar.
	OutputDir string
	// Suffix is appended to the snake-cased type name to form the filename.
	Suffix string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Suffix: "_builder.go",
	}
}

// Generator renders builder plans into Go source files.
type Generator struct {
	config GeneratorConfig
	logger *zap.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig, logger *zap.Logger) *Generator {
	if config.Suffix == "" {
		config.Suffix = DefaultGeneratorConfig().Suffix
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{config: config, logger: logger}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "command_builder.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate emits and renders the builder of one plan.
func (g *Generator) Generate(bp *plan.BuilderPlan) (*GeneratedFile, error) {
	code := Emit(bp, g.config.Suffix)

	g.logger.Debug("emitting builder",
		zap.String("type", code.TypeName),
		zap.String("file", code.Filename),
		zap.Int("slots", len(code.Slots)),
		zap.Int("methods", len(code.Methods)))

	return g.Render(code)
}

// Render executes the builder template over code and formats the result.
func (g *Generator) Render(code *Code) (*GeneratedFile, error) {
	var buf bytes.Buffer
	if err := builderTemplate.Execute(&buf, code); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	return FormatFile(g.config.OutputDir, code.Filename, buf.Bytes())
}

// FormatFile gofmts src into a GeneratedFile. On failure the unformatted
// source is returned alongside the error and, when outDir is set, written to
// a sidecar for inspection.
func FormatFile(outDir, filename string, src []byte) (*GeneratedFile, error) {
	formatted, err := format.Source(src)
	if err != nil {
		_ = writeUnformatted(outDir, filename, src)

		return &GeneratedFile{
			Filename: filename,
			Content:  src,
		}, fmt.Errorf("formatting %s: %w", filename, err)
	}

	return &GeneratedFile{
		Filename: filename,
		Content:  formatted,
	}, nil
}

var builderTemplate = template.Must(template.New("builder").Funcs(template.FuncMap{
	"alias": importAlias,
}).Parse(Header + `

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	{{with alias .}}{{.}} {{end}}"{{.Path}}"
{{end}})
{{end}}
// {{.Builder}} incrementally assembles a {{.TypeName}}.
type {{.Builder}} struct {
{{range .Slots}}	{{.Name}} {{.Type}}
{{end}}}

// {{.Factory}} returns a {{.Builder}} with every field unset.
func {{.Factory}}() *{{.Builder}} {
	return &{{.Builder}}{}
}
{{range .Methods}}
// {{.Name}} {{.Doc}}
func (b *{{$.Builder}}) {{.Name}}({{.Param}} {{.ParamType}}) *{{$.Builder}} {
{{- if .IsSet}}
	b.{{.Slot}} = &{{.Param}}
{{- else if .IsReplace}}
	b.{{.Slot}} = {{$.Slices}}.Clone({{.Param}})
{{- else}}
	b.{{.Slot}} = append(b.{{.Slot}}, {{.Param}})
{{- end}}
	return b
}
{{end}}
// Build returns the assembled {{.TypeName}}.
{{- if .HasRequired}} It fails with a
// *buildkit.MissingFieldError naming the first required field that was never
// set.{{end}} The builder remains usable afterwards.
func (b *{{.Builder}}) Build() ({{.TypeName}}, error) {
{{- range .Steps}}{{if .Required}}
	if b.{{.Slot}} == nil {
		return {{$.TypeName}}{}, &{{$.Buildkit}}.MissingFieldError{Type: "{{$.TypeName}}", Field: "{{.Field}}"}
	}
{{- end}}{{end}}
{{if .HasRequired}}
{{end}}	return {{.TypeName}}{
{{- range .Steps}}
		{{.Field}}: {{if .Required}}*b.{{.Slot}}{{else if .Repeated}}{{$.Slices}}.Clone(b.{{.Slot}}){{else}}b.{{.Slot}}{{end}},
{{- end}}
	}, nil
}
`))
