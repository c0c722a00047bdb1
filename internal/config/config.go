// Package config resolves the settings of a rustfmt-quote run from built-in
// defaults, an optional YAML file, and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/rustfmt-quote/internal/fs"
	"github.com/andyballingall/rustfmt-quote/internal/quote"
	"github.com/andyballingall/rustfmt-quote/internal/rustfmt"
	"github.com/andyballingall/rustfmt-quote/internal/validator"
)

// ConfigFile is looked up in the working directory when no explicit
// configuration path is given.
const ConfigFile = ".rustfmt-quote.yml"

// RustfmtPathEnvVar names the formatter executable and takes precedence over
// the configuration file.
const RustfmtPathEnvVar = "RUSTFMT_PATH"

// DefaultConfigContent documents every key with its default value.
const DefaultConfigContent = `# rustfmt-quote configuration

formatter:
  # Executable used to format each quote! block. $RUSTFMT_PATH overrides it.
  command: rustfmt
  # Extra arguments, e.g. ["--edition", "2021"].
  args: []
  # Upper bound on a single rustfmt invocation.
  timeout: 30s

# Number of spaces per indentation level in the surrounding source.
indentWidth: 4

# Only used when walking directories.
extensions: [".rs"]
excludeDirs: [".git", "target"]

# Blocks holding one of these splice markers alone on a line are left alone.
reservedMarkers: [errors, preludes, defuns, part_core]

# Files processed in parallel. 0 uses every available CPU.
jobs: 0
`

var (
	DefaultExtensions  = []string{".rs"}
	DefaultExcludeDirs = []string{".git", "target"}
)

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return &InvalidTimeoutError{Value: s}
	}
	*d = Duration(v)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

type FormatterConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout Duration `yaml:"timeout"`
}

type Config struct {
	Formatter       FormatterConfig `yaml:"formatter"`
	IndentWidth     int             `yaml:"indentWidth"`
	Extensions      []string        `yaml:"extensions"`
	ExcludeDirs     []string        `yaml:"excludeDirs"`
	ReservedMarkers []string        `yaml:"reservedMarkers"`
	Jobs            int             `yaml:"jobs"`
	Path            string          `yaml:"-"` // the file this was loaded from, if any.
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Formatter: FormatterConfig{
			Command: rustfmt.DefaultCommand,
			Timeout: Duration(rustfmt.DefaultTimeout),
		},
		IndentWidth:     quote.DefaultIndentWidth,
		Extensions:      append([]string(nil), DefaultExtensions...),
		ExcludeDirs:     append([]string(nil), DefaultExcludeDirs...),
		ReservedMarkers: append([]string(nil), quote.DefaultReservedMarkers...),
	}
}

// New resolves the configuration for a run started in dir. If explicitPath is
// empty, dir/.rustfmt-quote.yml is used when it exists and defaults apply
// otherwise; an explicit path must exist. $RUSTFMT_PATH is applied last.
func New(dir, explicitPath string, env fs.EnvProvider, compiler validator.Compiler) (*Config, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		path = filepath.Join(dir, ConfigFile)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if lErr := cfg.load(path, data, compiler); lErr != nil {
			return nil, lErr
		}
	case errors.Is(err, os.ErrNotExist) && explicitPath == "":
		// No file: defaults apply.
	case errors.Is(err, os.ErrNotExist):
		return nil, &MissingConfigError{Path: path}
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if env != nil {
		if cmd := env.Get(RustfmtPathEnvVar); cmd != "" {
			cfg.Formatter.Command = cmd
		}
	}

	if vErr := cfg.Validate(); vErr != nil {
		return nil, vErr
	}
	return cfg, nil
}

func (c *Config) load(path string, data []byte, compiler validator.Compiler) error {
	doc, err := validator.DecodeYAML(data)
	if err != nil {
		return &InvalidYAMLError{Path: path, Wrapped: err}
	}

	v, err := validator.CompileSchema(compiler, SchemaID, Schema)
	if err != nil {
		return fmt.Errorf("configuration schema failed to compile: %w", err)
	}
	if err := v.Validate(doc); err != nil {
		return &SchemaViolationError{Path: path, Wrapped: err}
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		var te *InvalidTimeoutError
		if errors.As(err, &te) {
			return te
		}
		return &InvalidYAMLError{Path: path, Wrapped: err}
	}
	c.Path = path
	return nil
}

// Validate checks the semantic constraints which must hold after every
// override has been applied.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Formatter.Command) == "" {
		return &MissingPropertyError{Property: "formatter.command"}
	}
	if c.Formatter.Timeout < 0 {
		return &InvalidTimeoutError{Value: c.Formatter.Timeout.String()}
	}
	if c.IndentWidth < 1 {
		return &InvalidIndentWidthError{Value: c.IndentWidth}
	}
	if c.Jobs < 0 {
		return &InvalidJobsError{Value: c.Jobs}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return &InvalidExtensionError{Value: ext}
		}
	}
	for _, m := range c.ReservedMarkers {
		if !quote.IsIdentifier(m) {
			return &InvalidReservedMarkerError{Value: m}
		}
	}
	return nil
}

// Timeout returns the formatter timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Formatter.Timeout)
}
