package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	rscript "go.rscript.dev/pkg"
)

// sourceError ties an error raised by the language to the script it came from, so the report
// can point at the offending line.
type sourceError struct {
	filename string
	source   string
	err      error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

func withSource(filename, source string, err error) error {
	if err == nil {
		return nil
	}

	return &sourceError{filename: filename, source: source, err: err}
}

// position converts a byte offset to a 1-based line and column.
func position(source string, offset int) (int, int) {
	offset = max(0, min(offset, len(source)))

	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1

	return line, utf8.RuneCountInString(before[lineStart:]) + 1
}

func lineAt(source string, offset int) string {
	offset = max(0, min(offset, len(source)))

	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		return source[start:]
	}

	return source[start : offset+end]
}

// reportError writes the error kind, message and location. Errors that carry no span are
// printed as they are.
func reportError(w io.Writer, err error, color bool) {
	label := lipgloss.NewStyle()
	if color {
		label = lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	}

	var langErr rscript.Error
	if !errors.As(err, &langErr) {
		fmt.Fprintf(w, "%s %v\n", label.Render("error:"), err)
		return
	}

	fmt.Fprintf(w, "%s %v\n", label.Render(fmt.Sprintf("error[%s]:", langErr.Kind())), langErr)

	var srcErr *sourceError
	if !errors.As(err, &srcErr) {
		fmt.Fprintf(w, "  at %s\n", langErr.Span())
		return
	}

	span := langErr.Span()
	line, col := position(srcErr.source, span.Start)
	fmt.Fprintf(w, "  --> %s:%d:%d (%s)\n", srcErr.filename, line, col, span)

	text := lineAt(srcErr.source, span.Start)
	width := max(1, utf8.RuneCountInString(span.Text(srcErr.source)))
	if remaining := utf8.RuneCountInString(text) - col + 1; width > remaining {
		width = max(1, remaining)
	}

	fmt.Fprintf(w, "   | %s\n", text)
	fmt.Fprintf(w, "   | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
}
