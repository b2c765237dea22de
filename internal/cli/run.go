package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	rscript "go.rscript.dev/pkg"
)

func newRunCommand(a *app) *cobra.Command {
	var entry string

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a script",
		Long: `Executes the top-level statements of a script, then calls its entry function
when one is defined. A non-unit result is printed.

Examples:
  rscript run examples/fib.rs
  rscript run --entry start script.rs
  RSCRIPT_LOG=debug rscript run script.rs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if entry != "" {
				a.cfg.Entry = entry
			}

			return a.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&entry, "entry", "e", "", "entry function (default from config: main)")

	return cmd
}

func (a *app) run(cmd *cobra.Command, filename string) error {
	out := cmd.OutOrStdout()

	source, err := readSource(filename)
	if err != nil {
		return err
	}

	if a.cfg.PrintSource {
		fmt.Fprintln(out, source)
	}

	program, err := rscript.NewParser(source, rscript.WithLogger(a.logger)).Parse()
	if err != nil {
		return withSource(filename, source, err)
	}

	if a.cfg.PrintTree {
		opts := rscript.FormatOptions{Indent: a.cfg.Indent, Color: a.cfg.Color}
		if err := rscript.Format(out, program, opts); err != nil {
			return err
		}
	}

	runtime := rscript.NewRuntime(rscript.WithLogger(a.logger), rscript.WithOutput(out))
	a.logger.Info("running script", "file", filename, "run", runtime.ID())

	result, err := runtime.ExecuteProgram(program)
	if err != nil {
		return withSource(filename, source, err)
	}

	if fn, err := runtime.Environment().Get(a.cfg.Entry); err == nil {
		if _, ok := fn.(*rscript.Function); ok {
			a.logger.Debug("calling entry function", "name", a.cfg.Entry)
			if result, err = runtime.Call(a.cfg.Entry); err != nil {
				return withSource(filename, source, err)
			}
		}
	}

	if _, unit := result.(rscript.Unit); !unit {
		fmt.Fprintln(out, result)
	}

	return nil
}
