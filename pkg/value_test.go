package rscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		value  Value
		expect string
	}{
		{Int(-3), "-3"},
		{Float(2), "2.0"},
		{Float(0.25), "0.25"},
		{Float(1e21), "1e+21"},
		{String("plain"), "plain"},
		{Bool(true), "true"},
		{Unit{}, "()"},
		{&StructInstance{Name: "Marker"}, "Marker"},
		{&StructInstance{Name: "P", Fields: []Field{{"a", Int(1)}, {"s", String("x")}}}, `P { a: 1, s: "x" }`},
		{&StructType{Name: "P"}, "struct P"},
		{&Builtin{Name: "print"}, "builtin print"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, c.value.String())
	}
}

func TestValueEqual(t *testing.T) {
	p1 := &StructInstance{Name: "P", Fields: []Field{{"0", Int(1)}}}
	p2 := &StructInstance{Name: "P", Fields: []Field{{"0", Int(1)}}}
	p3 := &StructInstance{Name: "P", Fields: []Field{{"0", Int(2)}}}
	q := &StructInstance{Name: "Q", Fields: []Field{{"0", Int(1)}}}

	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(Unit{}, Unit{}))
	assert.True(t, Equal(p1, p2))
	assert.False(t, Equal(p1, p3))
	assert.False(t, Equal(p1, q))
}

func TestStructTypeInstantiate(t *testing.T) {
	typ := &StructType{Name: "Pair", Fields: []string{"0", "1"}, Tuple: true}

	instance := typ.Instantiate([]Value{Int(1), Bool(false)})
	assert.Equal(t, "Pair", instance.Name)

	v, ok := instance.Field("1")
	assert.True(t, ok)
	assert.Equal(t, Bool(false), v)

	_, ok = instance.Field("2")
	assert.False(t, ok)
	assert.Equal(t, KindStruct, instance.Kind())
	assert.Equal(t, "struct", instance.Kind().String())
}
