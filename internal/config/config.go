// Package config loads builder-gen settings.
//
// Precedence (highest to lowest):
//  1. Command-line flags (applied by the caller)
//  2. Environment variables prefixed with BUILDERGEN_
//  3. The YAML config file (.builder-gen.yaml by default)
//  4. Defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"builder-generator/internal/logging"
)

const (
	// DefaultFile is read from the working directory when no path is given.
	DefaultFile = ".builder-gen.yaml"
	// EnvPrefix marks environment overrides, e.g. BUILDERGEN_OUTPUT_DIR.
	EnvPrefix = "BUILDERGEN_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config holds all builder-gen settings.
type Config struct {
	Output OutputConfig `koanf:"output"`
	// Stringer also generates a String method per type.
	Stringer bool      `koanf:"stringer"`
	Log      LogConfig `koanf:"log"`
	// Types restricts generation to the named types. Empty selects every
	// type marked +builder:generate.
	Types []string `koanf:"types"`
}

// OutputConfig controls where generated files go.
type OutputConfig struct {
	// Dir overrides the output directory. Empty writes next to the source.
	Dir    string `koanf:"dir"`
	Suffix string `koanf:"suffix"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Suffix: "_builder.go"},
		Log:    LogConfig{Level: "info", Format: logging.FormatConsole},
	}
}

// Load reads the config file at path, then applies environment overrides.
// An empty path reads DefaultFile if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	content, err := readConfigFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return content, nil
}

// envKey maps BUILDERGEN_OUTPUT_DIR to output.dir and splits list values.
// Only the first underscore after the prefix separates section from field.
func envKey(key, value string) (string, any) {
	lower := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if lower == "" {
		return "", nil
	}

	if lower == "types" {
		return lower, splitList(value)
	}

	if section, field, ok := strings.Cut(lower, "_"); ok {
		return section + "." + field, value
	}

	return lower, value
}

func splitList(value string) []string {
	var out []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Output.Suffix == "" {
		cfg.Output.Suffix = def.Output.Suffix
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// Validate checks the configuration for values the generator cannot use.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.Output.Suffix, ".go") {
		return fmt.Errorf("output.suffix %q must end in .go", c.Output.Suffix)
	}

	if strings.HasSuffix(c.Output.Suffix, "_test.go") {
		return fmt.Errorf("output.suffix %q would produce test files", c.Output.Suffix)
	}

	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format %q must be %s or %s", c.Log.Format, logging.FormatConsole, logging.FormatJSON)
	}

	return nil
}
