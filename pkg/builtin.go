package rscript

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func defineBuiltins(r *Runtime) {
	defineBuiltinFunc(r, "print", r.builtinPrint)
}

func defineBuiltinFunc(r *Runtime, name string, fn func(args []Value) (Value, error)) {
	r.environment.Declare(name, &Builtin{Name: name, Fn: fn})
}

// builtinPrint writes its arguments separated by spaces and followed by a newline.
func (r *Runtime) builtinPrint(args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}

	if _, err := fmt.Fprintln(r.output, strings.Join(parts, " ")); err != nil {
		return nil, err
	}

	return Unit{}, nil
}

func defineIRBuiltins(b *LLVMIRBuilder) {
	b.printf = b.mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	b.printf.Sig.Variadic = true
}

// print lowers a call to the print builtin into a printf call with a format matching the
// argument types.
func (b *LLVMIRBuilder) print(args []value.Value, span Span) error {
	verbs := make([]string, len(args))
	callArgs := make([]value.Value, 0, len(args)+1)

	for i, arg := range args {
		switch kindOf(arg.Type()) {
		case KindInt:
			verbs[i] = "%ld"
		case KindFloat:
			verbs[i] = "%f"
		case KindBool:
			verbs[i] = "%ld"
			arg = b.block.NewZExt(arg, types.I64)
		default:
			return &UnsupportedError{Construct: "print argument", Location: span}
		}

		callArgs = append(callArgs, arg)
	}

	format := b.format(strings.Join(verbs, " ") + "\n")
	zero := constant.NewInt(types.I32, 0)
	fmtAddr := constant.NewGetElementPtr(format.ContentType, format, zero, zero)

	b.block.NewCall(b.printf, append([]value.Value{fmtAddr}, callArgs...)...)
	return nil
}

// format returns a global holding the NUL terminated format string, shared between calls.
func (b *LLVMIRBuilder) format(s string) *ir.Global {
	if g, ok := b.formats[s]; ok {
		return g
	}

	g := b.mod.NewGlobalDef(fmt.Sprintf("._printf_fmt.%d", len(b.formats)), constant.NewCharArrayFromString(s+"\x00"))
	g.Immutable = true
	b.formats[s] = g

	return g
}
