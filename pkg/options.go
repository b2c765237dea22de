package rscript

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

type options struct {
	logger *log.Logger
	output io.Writer
}

type Option func(*options)

// WithLogger routes the diagnostics of a parser, runtime or compiler to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutput sets where the print builtin writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		output: os.Stdout,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	return o
}
