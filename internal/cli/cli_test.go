package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rscript.dev/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// executeCommand runs the command line against a config file in a temporary directory.
func executeCommand(t *testing.T, cfg string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("RSCRIPT_LOG", "")
	t.Setenv("RSCRIPT_ENTRY", "")
	t.Setenv("RSCRIPT_COLOR", "")

	cfgPath := writeFile(t, t.TempDir(), "rscript.toml", cfg)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const script = `
struct Point { x: int, y: int }

fn main() -> int {
	let p = Point(40, 2);
	print("sum", p.x + p.y);
	return p.x + p.y;
}

fn start() -> string {
	return "started";
}
`

func TestRunCommand(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rs", script)

	out, _, err := executeCommand(t, "color = false", "run", file)
	require.NoError(t, err)
	assert.Equal(t, "sum 42\n42\n", out)

	out, _, err = executeCommand(t, "color = false", "run", "--entry", "start", file)
	require.NoError(t, err)
	assert.Equal(t, "started\n", out)

	out, _, err = executeCommand(t, "entry = \"start\"\nprint_source = true\nprint_tree = true\ncolor = false\nindent = 1", "run", file)
	require.NoError(t, err)
	assert.Contains(t, out, "fn main() -> int {")
	assert.Contains(t, out, "[Program ")
	assert.Contains(t, out, "\n [StructDeclaration::NamedStruct ")
	assert.True(t, strings.HasSuffix(out, "started\n"))
}

func TestRunCommandWithoutEntry(t *testing.T) {
	file := writeFile(t, t.TempDir(), "plain.rs", "let x = 2;\nx * 21;")

	out, _, err := executeCommand(t, "", "run", file)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestRunCommandErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "broken.rs", "let a = 1;\nmissing + a;")

	_, _, err := executeCommand(t, "", "run", file)
	require.Error(t, err)

	var report bytes.Buffer
	reportError(&report, err, false)
	assert.Contains(t, report.String(), "error[VariableNotFound]:")
	assert.Contains(t, report.String(), "broken.rs:2:1 (11-18)")
	assert.Contains(t, report.String(), "   | missing + a;\n   | ^^^^^^^\n")

	_, _, err = executeCommand(t, "", "run", filepath.Join(dir, "absent.rs"))
	assert.Error(t, err)

	_, _, err = executeCommand(t, "", "run")
	assert.Error(t, err)

	_, _, err = executeCommand(t, "log_level = \"loud\"", "run", file)
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "main.rs", script)

	out, _, err := executeCommand(t, "color = false", "parse", file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[Program "))
	assert.Contains(t, out, "    [FunctionDeclaration ")
	assert.Contains(t, out, `[Identifier 127-132 name = "start"]`)

	expr := writeFile(t, dir, "expr.rs", "1 + 2 * 3")
	out, _, err = executeCommand(t, "color = false", "parse", "--expression", expr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[BinaryOp 0-9 operator = Add]\n"))

	broken := writeFile(t, dir, "broken.rs", "struct P(")
	_, _, err = executeCommand(t, "", "parse", broken)
	assert.Error(t, err)
}

func TestTokensCommand(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rs", "fn f() -> int { 1 }")

	out, _, err := executeCommand(t, "", "tokens", file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "0-2"))
	assert.True(t, strings.HasSuffix(lines[0], "`fn`"))
	assert.True(t, strings.HasSuffix(lines[7], "integer literal 1"))
}

func TestIRCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "add.rs", "fn add(a: int, b: int) -> int { return a + b; }")

	out, _, err := executeCommand(t, "", "ir", file)
	require.NoError(t, err)
	assert.Contains(t, out, "define i64 @add(i64 %a, i64 %b)")

	target := filepath.Join(dir, "add.ll")
	out, _, err = executeCommand(t, "", "ir", "-o", target, file)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "define i64 @add(")

	unsupported := writeFile(t, dir, "top.rs", "let x = 1;")
	_, _, err = executeCommand(t, "", "ir", unsupported)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rscript v"+Version)
	assert.Contains(t, out, "Go Version:")
}

func TestVerboseLogging(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rs", "let x = 1;")

	_, errOut, err := executeCommand(t, "", "--verbose", "run", file)
	require.NoError(t, err)
	assert.Contains(t, errOut, "loaded config")
	assert.Contains(t, errOut, "executed program")
}

type fakeReader struct {
	lines   []string
	history []string
}

func (f *fakeReader) Prompt(string) (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}

	line := f.lines[0]
	f.lines = f.lines[1:]

	return line, nil
}

func (f *fakeReader) AppendHistory(item string) {
	f.history = append(f.history, item)
}

func testApp() *app {
	cfg := config.Default()
	cfg.Color = false

	return &app{
		cfg:    cfg,
		logger: log.New(io.Discard),
	}
}

func TestRepl(t *testing.T) {
	reader := &fakeReader{lines: []string{
		"let x = 2;",
		"fn sq(n: int) -> int {",
		"    return n * n;",
		"}",
		"sq(x);",
		"",
		":env",
		"y;",
		"x",
		"",
		":what",
		":quit",
		"never read;",
	}}

	var out, errOut bytes.Buffer
	testApp().repl(reader, &out, &errOut)

	assert.Equal(t, "4\nprint sq x\nunknown command. Type :quit to exit.\n", out.String())
	assert.Contains(t, errOut.String(), "error[VariableNotFound]:")
	assert.Contains(t, errOut.String(), "error[UnexpectedEof]:")
	assert.Equal(t, []string{"let x = 2;", "fn sq(n: int) -> int {     return n * n; }", "sq(x);", "y;", "x"}, reader.history)
	assert.Equal(t, []string{"never read;"}, reader.lines)
}

func TestReplEndOfInput(t *testing.T) {
	reader := &fakeReader{lines: []string{"1 + 1;"}}

	var out, errOut bytes.Buffer
	testApp().repl(reader, &out, &errOut)

	assert.Equal(t, "2\n\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestPosition(t *testing.T) {
	source := "ab\ncdé\nf"

	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 2, 4},
		{8, 3, 1},
		{9, 3, 2},
		{100, 3, 2},
	}

	for _, c := range cases {
		line, col := position(source, c.offset)
		assert.Equal(t, c.line, line, c.offset)
		assert.Equal(t, c.col, col, c.offset)
	}

	assert.Equal(t, "cdé", lineAt(source, 4))
	assert.Equal(t, "f", lineAt(source, 8))
}
