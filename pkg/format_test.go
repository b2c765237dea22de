package rscript

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	program, err := Parse("let x = 1 + y;")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, program, FormatOptions{Indent: 2}))

	expect := `[Program 0-14]
  [VariableDeclaration 0-14 mutable = false]
    [Identifier 4-5 name = "x"]
    [BinaryOp 8-13 operator = Add]
      [IntegerLiteral 8-9 value = 1]
      [Identifier 12-13 name = "y"]
`
	assert.Equal(t, expect, buf.String())
}

func TestFormatString(t *testing.T) {
	program, err := Parse("fn f(a: int) -> unit { if a > 0 { print(a.b); } }")
	require.NoError(t, err)

	out := FormatString(program)
	assert.Contains(t, out, "    [FunctionDeclaration 0-49]\n")
	assert.Contains(t, out, "        [Parameter 5-11]\n")
	assert.Contains(t, out, "[IfExpression 23-47]")
	assert.Contains(t, out, "[BinaryOp 26-31 operator = GreaterThan]")
	assert.Contains(t, out, `[FieldAccess 40-43 field = "b"]`)
	assert.Contains(t, out, `[Identifier 16-20 name = "unit"]`)
}

func TestFormatExpression(t *testing.T) {
	expr, err := NewParser(`-"s"`).ParseExpression()
	require.NoError(t, err)

	out := FormatString(expr)
	assert.Equal(t, "[UnaryOp 0-4 operator = Negate]\n    [StringLiteral 1-4 value = \"s\"]\n", out)
}
