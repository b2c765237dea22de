package rscript

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/llir/llvm/ir"
)

// Compiler lowers programs to an LLVM IR module.
type Compiler struct {
	logger *log.Logger
}

func NewCompiler(opts ...Option) *Compiler {
	o := newOptions(opts)

	return &Compiler{
		logger: o.logger,
	}
}

func (c *Compiler) Compile(filename string) (*ir.Module, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	return c.CompileSource(string(source))
}

func (c *Compiler) CompileFromReader(reader io.Reader) (*ir.Module, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	return c.CompileSource(string(source))
}

func (c *Compiler) CompileSource(source string) (*ir.Module, error) {
	program, err := NewParser(source, WithLogger(c.logger)).Parse()
	if err != nil {
		return nil, err
	}

	return c.CompileProgram(program)
}

// CompileProgram lowers every top-level function. Struct declarations are accepted but
// produce no code; any other top-level statement is unsupported.
func (c *Compiler) CompileProgram(program *Program) (*ir.Module, error) {
	symbols, err := CollectSymbols(program)
	if err != nil {
		return nil, err
	}

	for _, stmt := range program.Statements {
		switch stmt.(type) {
		case *FunctionDeclaration, StructDeclaration:
		default:
			return nil, &UnsupportedError{Construct: "top-level statement", Location: stmt.Span()}
		}
	}

	builder := NewLLVMIRBuilder(c.logger)
	for _, fn := range symbols.Functions() {
		if err := builder.declare(fn); err != nil {
			return nil, err
		}
	}

	for _, fn := range symbols.Functions() {
		if err := builder.function(fn); err != nil {
			return nil, err
		}
	}

	c.logger.Info("compiled program", "functions", len(symbols.Functions()))
	return builder.Module(), nil
}
