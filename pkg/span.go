package rscript

import "fmt"

// Span is a half-open [Start, End) byte range into the source text.
type Span struct {
	Start int
	End   int
}

type Spanned interface {
	Span() Span
}

// Combine returns the smallest span covering both a and b.
func (s Span) Combine(other Span) Span {
	return Span{
		Start: min(s.Start, other.Start),
		End:   max(s.End, other.End),
	}
}

func (s Span) Span() Span {
	return s
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the slice of source covered by the span, clamped to the source bounds.
func (s Span) Text(source string) string {
	start, end := max(s.Start, 0), min(s.End, len(source))
	if start >= end {
		return ""
	}

	return source[start:end]
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}
