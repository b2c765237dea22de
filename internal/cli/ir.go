package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	rscript "go.rscript.dev/pkg"
)

func newIRCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ir FILE",
		Short: "Lower a script to LLVM IR",
		Long: `Lowers the top-level functions of a script to LLVM IR. Only int, float and bool
values are supported.

Examples:
  rscript ir fib.rs
  rscript ir -o fib.ll fib.rs && clang fib.ll -o fib`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			mod, err := rscript.NewCompiler(rscript.WithLogger(a.logger)).CompileSource(source)
			if err != nil {
				return withSource(args[0], source, err)
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), mod.String())
				return err
			}

			if err := os.WriteFile(output, []byte(mod.String()), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			a.logger.Info("wrote module", "file", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the module to a file instead of stdout")

	return cmd
}
