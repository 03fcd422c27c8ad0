package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"builder-generator/internal/config"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/gen"
	"builder-generator/internal/logging"
	"builder-generator/internal/orchestrator"
)

// errDiagnostics is returned after the diagnostics were already printed.
var errDiagnostics = errors.New("generation reported errors")

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

type genOptions struct {
	packages   []string
	descriptor string
	types      []string
	out        string
	stringer   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "builder-gen",
		Short: "Generate fluent builders for Go record types",
		Long: `builder-gen generates a companion builder for every selected struct type.

Types are selected with a "+builder:generate" line in their doc comment, or by
name with --type. A slice field annotated with

	// +builder(each = "arg")

gets an append method named after the accessor.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(newGenCmd(opts, true))
	root.AddCommand(newGenCmd(opts, false))

	return root
}

func newGenCmd(root *rootOptions, write bool) *cobra.Command {
	opts := &genOptions{}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate builder files",
		Long: `Generate builder files for the selected types.

Examples:
  # Every annotated type of a package, written next to its sources
  builder-gen gen --pkg ./examples/command

  # Types from a descriptor file, written into ./gen
  builder-gen gen --descriptor types.yaml --out gen`,
		Args: cobra.NoArgs,
	}

	if !write {
		cmd.Use = "check"
		cmd.Short = "Report diagnostics without writing files"
		cmd.Long = `Run the generation pipeline and print its diagnostics.
Exits non-zero when any selected type fails.`
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runGen(cmd, root, opts, write)
	}

	cmd.Flags().StringSliceVar(&opts.packages, "pkg", nil, "Go package patterns to load")
	cmd.Flags().StringVar(&opts.descriptor, "descriptor", "", "YAML or HCL descriptor file")
	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "type names to generate (default: annotated types)")
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (default: the package directory)")
	cmd.Flags().BoolVar(&opts.stringer, "stringer", false, "also generate String methods")

	return cmd
}

func runGen(cmd *cobra.Command, root *rootOptions, opts *genOptions, write bool) error {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}

	applyFlags(cmd, cfg, root, opts)

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	orch := orchestrator.New(orchestrator.Config{
		Generator: generatorConfig(cfg),
		Stringer:  cfg.Stringer,
	}, logger)

	res, err := orch.Run(orchestrator.Request{
		Patterns:   opts.packages,
		Descriptor: opts.descriptor,
		Types:      cfg.Types,
	})
	if err != nil {
		return err
	}

	printDiagnostics(cmd.ErrOrStderr(), &res.Diagnostics)

	if write {
		if err := orchestrator.Write(res); err != nil {
			return err
		}

		for _, f := range res.Files {
			logger.Debug("wrote file", zap.String("dir", f.Dir), zap.String("file", f.Filename))
		}
	}

	if err := res.Diagnostics.Error(); err != nil {
		return fmt.Errorf("%w: %w", errDiagnostics, err)
	}

	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, root *rootOptions, opts *genOptions) {
	flags := cmd.Flags()

	if flags.Changed("out") {
		cfg.Output.Dir = opts.out
	}

	if flags.Changed("stringer") {
		cfg.Stringer = opts.stringer
	}

	if flags.Changed("type") {
		cfg.Types = opts.types
	}

	if root.logLevel != "" {
		cfg.Log.Level = root.logLevel
	}

	if root.logFormat != "" {
		cfg.Log.Format = root.logFormat
	}
}

func generatorConfig(cfg *config.Config) gen.GeneratorConfig {
	return gen.GeneratorConfig{
		OutputDir: cfg.Output.Dir,
		Suffix:    cfg.Output.Suffix,
	}
}

func printDiagnostics(w io.Writer, ds *diagnostic.Diagnostics) {
	for _, d := range ds.Warnings {
		fmt.Fprintf(w, "warning: %s\n", d)
	}

	for _, d := range ds.Errors {
		fmt.Fprintln(w, d)
	}
}
