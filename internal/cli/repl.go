package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	rscript "go.rscript.dev/pkg"
)

const (
	historyFile = ".rscript_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

// lineReader is the part of liner.State the session uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func newReplCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Starts an interactive session. Declarations persist between inputs; input is
read until it parses, so blocks may span several lines.

Commands:
  :env   - list the names in scope
  :quit  - leave the session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := os.UserHomeDir()
			histPath := filepath.Join(home, historyFile)

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}

			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "rscript v%s, type :quit to exit\n", Version)
			a.repl(ln, cmd.OutOrStdout(), cmd.ErrOrStderr())

			return nil
		},
	}
}

// repl reads inputs until end of input or :quit. Errors are reported and the session goes on.
func (a *app) repl(ln lineReader, out, errOut io.Writer) {
	runtime := rscript.NewRuntime(rscript.WithLogger(a.logger), rscript.WithOutput(out))

	for {
		code, ok := readUntilParsed(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(out)
			return
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return
			case ":env":
				fmt.Fprintln(out, strings.Join(runtime.Environment().Names(), " "))
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := runtime.Execute(code)
		if err != nil {
			reportError(errOut, withSource("<repl>", code, err), a.cfg.Color)
			continue
		}

		if _, unit := v.(rscript.Unit); !unit {
			fmt.Fprintln(out, v)
		}
	}
}

// readUntilParsed keeps reading lines while the accumulated input ends too early to parse.
// Reports false once the input is exhausted.
func readUntilParsed(ln lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}

		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Aborted with Ctrl-C: drop the pending input
			return "", true
		}

		// A blank continuation line submits what was typed so far
		if b.Len() > 0 && strings.TrimSpace(line) == "" {
			return b.String(), true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := rscript.NewParser(src).Parse()

		var eof *rscript.UnexpectedEOFError
		if errors.As(perr, &eof) && strings.TrimSpace(src) != "" {
			continue
		}

		return src, true
	}
}
