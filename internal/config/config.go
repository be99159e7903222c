// Package config loads nbrepair settings from defaults, an optional YAML file,
// a .env file and NBREPAIR_* environment variables, in that order. Command
// line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/nbrepair/core/batch"
	"github.com/leofalp/nbrepair/core/notebook"
	"github.com/leofalp/nbrepair/core/repair"
	"github.com/leofalp/nbrepair/providers/observability/slogobs"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "nbrepair.yaml"

// DefaultEnvFile is loaded when present. Variables already set in the
// environment win over the file.
const DefaultEnvFile = ".env"

// MaxIndent bounds output.indent.
const MaxIndent = 8

// ErrInvalid wraps every validation error.
var ErrInvalid = errors.New("nbrepair: invalid configuration")

// Config holds all nbrepair settings.
type Config struct {
	// Pattern selects notebooks inside directory arguments.
	Pattern   string `yaml:"pattern"`
	Workers   int    `yaml:"workers"`
	Backup    bool   `yaml:"backup"`
	DebugDump bool   `yaml:"debug_dump"`
	DryRun    bool   `yaml:"dry_run"`
	OutputDir string `yaml:"output_dir"`

	Repair  RepairConfig  `yaml:"repair"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RepairConfig configures the recoverer.
type RepairConfig struct {
	// Passes enables only the listed passes when non-empty.
	Passes []string `yaml:"passes"`
	// Disable turns off individual passes.
	Disable       []string `yaml:"disable"`
	MaxInsertions int      `yaml:"max_insertions"`
	MaxPassRuns   int      `yaml:"max_pass_runs"`
	Unwrap        bool     `yaml:"unwrap"`
	Fallback      bool     `yaml:"fallback"`
}

// OutputConfig configures how notebooks are written.
type OutputConfig struct {
	Indent         int  `yaml:"indent"`
	EscapeNonASCII bool `yaml:"escape_non_ascii"`
}

// LoggingConfig configures the slog observer.
type LoggingConfig struct {
	Level   string `yaml:"level"`  // debug, info, warn, error
	Format  string `yaml:"format"` // compact, pretty, json
	NoColor bool   `yaml:"no_color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pattern: batch.DefaultPattern,
		Workers: runtime.GOMAXPROCS(0),
		Repair: RepairConfig{
			MaxInsertions: repair.DefaultMaxInsertions,
			MaxPassRuns:   repair.DefaultMaxPassRuns,
			Unwrap:        true,
		},
		Output: OutputConfig{
			Indent: notebook.DefaultIndent,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: string(slogobs.FormatCompact),
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// DefaultFile is used if it exists. envFile names a dotenv file; when empty,
// DefaultEnvFile is used if it exists. The result is validated.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	explicitEnv := envFile != ""
	if !explicitEnv {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicitEnv || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Environment variables read by Load.
const (
	EnvPattern        = "NBREPAIR_PATTERN"
	EnvWorkers        = "NBREPAIR_WORKERS"
	EnvBackup         = "NBREPAIR_BACKUP"
	EnvDebugDump      = "NBREPAIR_DEBUG_DUMP"
	EnvOutputDir      = "NBREPAIR_OUTPUT_DIR"
	EnvIndent         = "NBREPAIR_INDENT"
	EnvEscapeNonASCII = "NBREPAIR_ESCAPE_NON_ASCII"
	EnvMaxInsertions  = "NBREPAIR_MAX_INSERTIONS"
	EnvFallback       = "NBREPAIR_FALLBACK"
	EnvDisablePasses  = "NBREPAIR_DISABLE_PASSES"
)

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvPattern); v != "" {
		c.Pattern = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvDisablePasses); v != "" {
		c.Repair.Disable = splitList(v)
	}
	if v := os.Getenv(slogobs.EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(slogobs.EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Logging.NoColor = true
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvWorkers, &c.Workers},
		{EnvIndent, &c.Output.Indent},
		{EnvMaxInsertions, &c.Repair.MaxInsertions},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, e.key, v)
			}
			*e.dst = n
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvBackup, &c.Backup},
		{EnvDebugDump, &c.DebugDump},
		{EnvEscapeNonASCII, &c.Output.EscapeNonASCII},
		{EnvFallback, &c.Repair.Fallback},
	}
	for _, e := range bools {
		if v := os.Getenv(e.key); v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, e.key, v)
			}
			*e.dst = b
		}
	}
	return nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Output.Indent < 0 || c.Output.Indent > MaxIndent {
		return fmt.Errorf("%w: output.indent must be between 0 and %d, got %d", ErrInvalid, MaxIndent, c.Output.Indent)
	}
	if c.Repair.MaxInsertions < 1 {
		return fmt.Errorf("%w: repair.max_insertions must be at least 1, got %d", ErrInvalid, c.Repair.MaxInsertions)
	}
	if c.Repair.MaxPassRuns < 1 {
		return fmt.Errorf("%w: repair.max_pass_runs must be at least 1, got %d", ErrInvalid, c.Repair.MaxPassRuns)
	}
	known := repair.PassNames()
	for _, name := range append(slices.Clone(c.Repair.Passes), c.Repair.Disable...) {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: unknown pass %q (valid: %s)", ErrInvalid, name, strings.Join(known, ", "))
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case string(slogobs.FormatCompact), string(slogobs.FormatPretty), string(slogobs.FormatJSON):
	default:
		return fmt.Errorf("%w: logging.format must be compact, pretty or json, got %q", ErrInvalid, c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: logging.level must be debug, info, warn or error, got %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// RecoverOptions converts the repair settings into repair options.
func (c *Config) RecoverOptions() []repair.Option {
	opts := []repair.Option{
		repair.WithMaxInsertions(c.Repair.MaxInsertions),
		repair.WithMaxPassRuns(c.Repair.MaxPassRuns),
		repair.WithUnwrap(c.Repair.Unwrap),
		repair.WithFallback(c.Repair.Fallback),
	}
	if len(c.Repair.Passes) > 0 {
		opts = append(opts, repair.WithPasses(c.Repair.Passes...))
	}
	if len(c.Repair.Disable) > 0 {
		opts = append(opts, repair.WithoutPasses(c.Repair.Disable...))
	}
	return opts
}

// EncodeOptions converts the output settings.
func (c *Config) EncodeOptions() notebook.EncodeOptions {
	return notebook.EncodeOptions{
		Indent:         c.Output.Indent,
		EscapeNonASCII: c.Output.EscapeNonASCII,
	}
}

// BatchOptions converts the run settings. The observer is left for the caller.
func (c *Config) BatchOptions() batch.Options {
	return batch.Options{
		Workers:        c.Workers,
		Backup:         c.Backup,
		DebugDump:      c.DebugDump,
		DryRun:         c.DryRun,
		OutputDir:      c.OutputDir,
		Encode:         c.EncodeOptions(),
		RecoverOptions: c.RecoverOptions(),
	}
}

// ObserverOptions converts the logging settings.
func (c *Config) ObserverOptions() []slogobs.Option {
	opts := []slogobs.Option{
		slogobs.WithFormat(slogobs.ParseFormat(c.Logging.Format)),
		slogobs.WithLevel(slogobs.ParseLogLevel(c.Logging.Level)),
	}
	if c.Logging.NoColor {
		opts = append(opts, slogobs.WithColors(false))
	}
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
