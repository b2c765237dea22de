package rscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSymbols(t *testing.T) {
	program, err := Parse(`
fn main() -> int { return helper(); }
struct Point { x: int, y: int }
let ignored = 1;
fn helper() -> int { return 1; }
struct Marker;
`)
	require.NoError(t, err)

	symbols, err := CollectSymbols(program)
	require.NoError(t, err)

	assert.Len(t, symbols.Entries, 4)
	assert.Nil(t, symbols.Get("ignored"))
	assert.Nil(t, symbols.Function("Point"))
	require.NotNil(t, symbols.Function("helper"))
	assert.Equal(t, "helper", symbols.Function("helper").Identifier.Name)

	fns := symbols.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "main", fns[0].Identifier.Name)
	assert.Equal(t, "helper", fns[1].Identifier.Name)

	structs := symbols.Structs()
	require.Len(t, structs, 2)
	assert.Equal(t, "Point", structs[0].StructName().Name)
	assert.Equal(t, "Marker", structs[1].StructName().Name)
}

func TestCollectSymbolsDuplicate(t *testing.T) {
	program, err := Parse("struct A;\nfn A() -> unit { }")
	require.NoError(t, err)

	_, err = CollectSymbols(program)

	var dup *AlreadyDeclaredError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.Name)
	assert.Equal(t, Span{13, 14}, dup.Span())
	assert.ErrorIs(t, err, ErrAlreadyDeclared)
}
