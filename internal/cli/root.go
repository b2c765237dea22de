package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"go.rscript.dev/internal/config"
)

// app is the state shared by every subcommand. It is filled in before any subcommand runs.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
	stderr io.Writer
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{stderr: os.Stderr})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rscript",
		Short: "rscript - a small scripting language",
		Long: `rscript tokenizes, parses and interprets a small scripting language with
structs, functions, loops and block expressions.

Commands:
  run      - execute a script and its entry function
  parse    - print the syntax tree of a script
  tokens   - print the tokens of a script
  ir       - lower a script to LLVM IR
  repl     - interactive session`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./rscript.toml, ./rscript.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newRunCommand(a),
		newParseCommand(a),
		newTokensCommand(a),
		newIRCommand(a),
		newReplCommand(a),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the command line and reports any failure on stderr.
func Execute() error {
	a := &app{stderr: os.Stderr}
	rootCmd := newRootCommand(a)

	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err, a.cfg == nil || a.cfg.Color)
	}

	return err
}

func (a *app) setup() error {
	cfg, err := config.Discover(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if a.verbose {
		level = log.DebugLevel
	}

	a.cfg = cfg
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Level:           level,
		ReportTimestamp: a.verbose,
		Prefix:          "rscript",
	})

	a.logger.Debug("loaded config", "path", cfg.Path, "entry", cfg.Entry)
	return nil
}

// readSource reads a script, keeping its name for error reports.
func readSource(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}

	return string(data), nil
}
