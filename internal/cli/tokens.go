package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	rscript "go.rscript.dev/pkg"
)

func newTokensCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a script with their spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			toks, err := rscript.NewLexer(source).All()
			if err != nil {
				return withSource(args[0], source, err)
			}

			out := cmd.OutOrStdout()
			for _, tok := range toks {
				fmt.Fprintf(out, "%-10s %s\n", tok.Span, tok.Token)
			}

			a.logger.Info("tokenized script", "file", args[0], "tokens", len(toks))
			return nil
		},
	}
}
