// Package orchestrator drives the generation pipeline: introspect, parse
// directives, classify, emit. Each record type is handled in a single pass
// and the first diagnostic aborts that type without partial output.
package orchestrator

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"builder-generator/internal/analyze"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/gen"
	"builder-generator/internal/match"
	"builder-generator/internal/plan"
	"builder-generator/internal/printer"
)

// Config holds orchestration settings.
type Config struct {
	Generator gen.GeneratorConfig
	// Stringer also renders a String method per type.
	Stringer bool
}

// DefaultConfig returns the default orchestration configuration.
func DefaultConfig() Config {
	return Config{Generator: gen.DefaultGeneratorConfig()}
}

// Orchestrator turns record descriptors into generated files.
type Orchestrator struct {
	config    Config
	logger    *zap.Logger
	analyzer  *analyze.Analyzer
	planner   *plan.Planner
	generator *gen.Generator
}

// New creates an Orchestrator.
func New(config Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		config:    config,
		logger:    logger,
		analyzer:  analyze.NewAnalyzer(logger.Named("analyze")),
		planner:   plan.NewPlanner(logger.Named("plan")),
		generator: gen.NewGenerator(config.Generator, logger.Named("gen")),
	}
}

// Generate runs the pipeline for one type.
func (o *Orchestrator) Generate(td *analyze.TypeDescriptor) ([]gen.GeneratedFile, error) {
	files, _, err := o.generate(td)

	return files, err
}

func (o *Orchestrator) generate(td *analyze.TypeDescriptor) ([]gen.GeneratedFile, []diagnostic.Diagnostic, error) {
	bp, err := o.planner.Plan(td)
	if err != nil {
		return nil, nil, err
	}

	builder, err := o.generator.Generate(bp)
	if err != nil {
		return nil, bp.Warnings, fmt.Errorf("generating builder for %s: %w", td.Name, err)
	}

	files := []gen.GeneratedFile{*builder}

	if o.config.Stringer {
		directives, err := printer.Directives(td)
		if err != nil {
			return nil, bp.Warnings, err
		}

		stringer, err := printer.Render(td, directives, o.config.Generator.OutputDir)
		if err != nil {
			return nil, bp.Warnings, fmt.Errorf("generating String for %s: %w", td.Name, err)
		}

		files = append(files, *stringer)
	}

	return files, bp.Warnings, nil
}

// Request selects the input of a Run. Exactly one of Patterns and
// Descriptor must be set.
type Request struct {
	// Patterns are Go package patterns, e.g. "./examples/command".
	Patterns []string
	// Descriptor is a .yaml, .yml or .hcl descriptor file.
	Descriptor string
	// Types names the types to generate. Empty selects the annotated ones.
	Types []string
	// Dir is the working directory for package patterns.
	Dir string
}

// OutputFile is a generated file and the directory it belongs in.
type OutputFile struct {
	gen.GeneratedFile
	Dir string
}

// Result is the outcome of a Run.
type Result struct {
	Files       []OutputFile
	Diagnostics diagnostic.Diagnostics
}

// Run loads the requested sources and generates every selected type. A
// failing type is recorded in the diagnostics and does not stop the others.
// The returned error is reserved for failures loading the input.
func (o *Orchestrator) Run(req Request) (*Result, error) {
	sources, err := o.load(req)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	found := make(map[string]bool)

	var declared []string

	for _, src := range sources {
		declared = append(declared, src.TypeNames()...)

		for _, name := range selectTypes(src, req.Types) {
			found[name] = true

			files, ds := o.runType(src, name)
			result.Files = append(result.Files, files...)
			result.Diagnostics.Merge(ds)
		}
	}

	for _, name := range req.Types {
		if !found[name] {
			result.Diagnostics.Add(diagnostic.New(diagnostic.KindUnsupportedShape, diagnostic.Location{},
				"type %s not found%s", name, match.Hint(name, declared)).WithSubject(name, ""))
		}
	}

	return result, nil
}

// runType produces the files of one type together with its diagnostics.
func (o *Orchestrator) runType(src analyze.Source, name string) ([]OutputFile, diagnostic.Diagnostics) {
	var ds diagnostic.Diagnostics

	log := o.logger.With(zap.String("type", name))

	td, err := src.Extract(name)
	if err != nil {
		log.Debug("extraction failed", zap.Error(err))
		ds.Add(asDiagnostic(err, name))

		return nil, ds
	}

	files, warnings, err := o.generate(td)
	for _, w := range warnings {
		ds.Add(w)
	}

	if err != nil {
		log.Debug("generation failed", zap.Error(err))
		ds.Add(asDiagnostic(err, name))

		return nil, ds
	}

	dir := o.config.Generator.OutputDir
	if dir == "" {
		dir = td.Dir
	}

	if dir == "" {
		dir = "."
	}

	out := make([]OutputFile, 0, len(files))
	for _, f := range files {
		out = append(out, OutputFile{GeneratedFile: f, Dir: dir})
	}

	log.Info("generated builder", zap.Int("files", len(files)), zap.String("dir", dir))

	return out, ds
}

func (o *Orchestrator) load(req Request) ([]analyze.Source, error) {
	switch {
	case len(req.Patterns) > 0 && req.Descriptor != "":
		return nil, errors.New("package patterns and a descriptor file are mutually exclusive")
	case req.Descriptor != "":
		src, err := LoadDescriptor(req.Descriptor)
		if err != nil {
			return nil, err
		}

		return []analyze.Source{src}, nil
	case len(req.Patterns) > 0:
		o.analyzer.Dir = req.Dir

		pkgs, err := o.analyzer.LoadPackages(req.Patterns...)
		if err != nil {
			return nil, err
		}

		sources := make([]analyze.Source, 0, len(pkgs))
		for _, pkg := range pkgs {
			sources = append(sources, pkg)
		}

		return sources, nil
	default:
		return nil, errors.New("no input: give package patterns or a descriptor file")
	}
}

// LoadDescriptor picks the descriptor front end from the file extension.
func LoadDescriptor(path string) (*analyze.DescriptorFile, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return analyze.LoadYAMLFile(path)
	case ".hcl":
		return analyze.LoadHCLFile(path)
	default:
		return nil, fmt.Errorf("unsupported descriptor extension %q for %s", ext, path)
	}
}

func selectTypes(src analyze.Source, names []string) []string {
	if len(names) == 0 {
		return src.Annotated()
	}

	var selected []string

	for _, name := range src.TypeNames() {
		if slices.Contains(names, name) {
			selected = append(selected, name)
		}
	}

	return selected
}

// asDiagnostic keeps diagnostics as they are and attributes any other error
// to the type it came from.
func asDiagnostic(err error, typeName string) diagnostic.Diagnostic {
	if d, ok := diagnostic.As(err); ok {
		return d.WithSubject(typeName, "")
	}

	return diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Kind:     diagnostic.KindUnsupportedShape,
		Message:  err.Error(),
		TypeName: typeName,
	}
}

// Write writes every file of the result into its directory.
func Write(result *Result) error {
	byDir := make(map[string][]gen.GeneratedFile)

	var dirs []string

	for _, f := range result.Files {
		if _, ok := byDir[f.Dir]; !ok {
			dirs = append(dirs, f.Dir)
		}

		byDir[f.Dir] = append(byDir[f.Dir], f.GeneratedFile)
	}

	for _, dir := range dirs {
		if err := gen.WriteFiles(byDir[dir], dir); err != nil {
			return err
		}
	}

	return nil
}
