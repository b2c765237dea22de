package cli

import (
	"github.com/spf13/cobra"

	rscript "go.rscript.dev/pkg"
)

func newParseCommand(a *app) *cobra.Command {
	var expression bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the syntax tree of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			parser := rscript.NewParser(source, rscript.WithLogger(a.logger))

			var node rscript.Node
			if expression {
				node, err = parser.ParseExpression()
			} else {
				node, err = parser.Parse()
			}

			if err != nil {
				return withSource(args[0], source, err)
			}

			opts := rscript.FormatOptions{Indent: a.cfg.Indent, Color: a.cfg.Color}
			return rscript.Format(cmd.OutOrStdout(), node, opts)
		},
	}

	cmd.Flags().BoolVar(&expression, "expression", false, "parse the file as a single expression")

	return cmd
}
