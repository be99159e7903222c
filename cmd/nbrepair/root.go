package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leofalp/nbrepair/internal/config"
	"github.com/leofalp/nbrepair/providers/observability"
	"github.com/leofalp/nbrepair/providers/observability/slogobs"
)

// errFailures is returned when at least one input failed. The report already
// describes the failures, so main only sets the exit status.
var errFailures = errors.New("one or more notebooks failed")

// app holds the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg      *config.Config
	observer *slogobs.Observer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "nbrepair",
		Short: "Recover corrupted Jupyter notebooks",
		Long: `nbrepair repairs notebooks whose JSON text was damaged while being generated:
raw control characters inside strings, missing commas between cells and
notebooks serialized inside a single cell. Valid notebooks are left untouched.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file (default "+config.DefaultEnvFile+" if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: compact, pretty, json")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRecoverCmd(a),
		newCheckCmd(a),
		newConvertCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the configuration, applies the global flags and builds the
// observer. Subcommand flags are applied by the subcommands themselves.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if flags.Changed("no-color") {
		cfg.Logging.NoColor = a.noColor
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Logging.NoColor {
		color.NoColor = true
	}
	a.cfg = cfg
	a.observer = slogobs.New(append(cfg.ObserverOptions(), slogobs.WithOutput(a.stderr))...)
	cmd.SetContext(observability.ContextWithProvider(cmd.Context(), a.observer))
	return nil
}

// applied re-validates the configuration after subcommand flags changed it.
func (a *app) applied() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
