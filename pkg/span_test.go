package rscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanCombine(t *testing.T) {
	cases := []struct {
		a, b   Span
		expect Span
	}{
		{Span{0, 1}, Span{4, 5}, Span{0, 5}},
		{Span{4, 5}, Span{0, 1}, Span{0, 5}},
		{Span{2, 10}, Span{3, 4}, Span{2, 10}},
		{Span{3, 3}, Span{3, 3}, Span{3, 3}},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, c.a.Combine(c.b))
	}
}

func TestSpanText(t *testing.T) {
	src := "let x = 5;"

	assert.Equal(t, "let", Span{0, 3}.Text(src))
	assert.Equal(t, "5;", Span{8, 42}.Text(src))
	assert.Equal(t, "", Span{7, 2}.Text(src))
	assert.Equal(t, "4-9", Span{4, 9}.String())
	assert.Equal(t, 5, Span{4, 9}.Len())
}
