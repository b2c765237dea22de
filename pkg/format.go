package rscript

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type FormatOptions struct {
	Indent int
	Color  bool
}

func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Indent: 4,
		Color:  true,
	}
}

type theme struct {
	bracket  lipgloss.Style
	node     lipgloss.Style
	span     lipgloss.Style
	property lipgloss.Style
}

func newTheme(w io.Writer, color bool) theme {
	if !color {
		plain := lipgloss.NewStyle()
		return theme{plain, plain, plain, plain}
	}

	r := lipgloss.NewRenderer(w)
	return theme{
		bracket:  r.NewStyle().Foreground(lipgloss.Color("#5050FF")).Bold(true),
		node:     r.NewStyle().Foreground(lipgloss.Color("#C87878")).Bold(true).Underline(true),
		span:     r.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
		property: r.NewStyle().Foreground(lipgloss.Color("#FF9600")).Italic(true),
	}
}

type formatter struct {
	w     io.Writer
	opts  FormatOptions
	theme theme
	err   error
}

// Format renders node and its children, one node per line. Each line shows the node kind,
// its span and, for leaf or property bearing nodes, the literal values.
func Format(w io.Writer, node Node, opts FormatOptions) error {
	f := &formatter{
		w:     w,
		opts:  opts,
		theme: newTheme(w, opts.Color),
	}

	f.node(node, 0)
	return f.err
}

// FormatString is Format into a string without colors.
func FormatString(node Node) string {
	opts := DefaultFormatOptions()
	opts.Color = false

	var str strings.Builder
	_ = Format(&str, node, opts)

	return str.String()
}

func (f *formatter) line(level int, name string, span Span, props ...string) {
	if f.err != nil {
		return
	}

	var str strings.Builder
	str.WriteString(strings.Repeat(" ", f.opts.Indent*level))
	str.WriteString(f.theme.bracket.Render("["))
	str.WriteString(f.theme.node.Render(name))
	str.WriteString(" ")
	str.WriteString(f.theme.span.Render(span.String()))
	for _, prop := range props {
		str.WriteString(" ")
		str.WriteString(f.theme.property.Render(prop))
	}
	str.WriteString(f.theme.bracket.Render("]"))
	str.WriteString("\n")

	_, f.err = io.WriteString(f.w, str.String())
}

func (f *formatter) nodes(level int, nodes ...Node) {
	for _, n := range nodes {
		f.node(n, level)
	}
}

func (f *formatter) node(node Node, level int) {
	switch n := node.(type) {
	case *Program:
		f.line(level, "Program", n.Location)
		for _, stmt := range n.Statements {
			f.node(stmt, level+1)
		}
	case *VariableDeclaration:
		f.line(level, "VariableDeclaration", n.Location, fmt.Sprintf("mutable = %t", n.Mutable))
		f.nodes(level+1, n.Identifier, n.Initializer)
	case *FunctionDeclaration:
		f.line(level, "FunctionDeclaration", n.Location)
		f.node(n.Identifier, level+1)
		for _, param := range n.Parameters {
			f.node(param, level+1)
		}
		if n.ReturnType != nil {
			f.node(n.ReturnType, level+1)
		}
		for _, stmt := range n.Body {
			f.node(stmt, level+1)
		}
	case *Parameter:
		f.line(level, "Parameter", n.Location)
		f.nodes(level+1, n.Identifier, n.DeclaredType)
	case *NamedStruct:
		f.line(level, "StructDeclaration::NamedStruct", n.Location)
		f.node(n.Identifier, level+1)
		for _, field := range n.Fields {
			f.node(field, level+1)
		}
	case *TupleStruct:
		f.line(level, "StructDeclaration::TupleStruct", n.Location)
		f.node(n.Identifier, level+1)
		for _, field := range n.Fields {
			f.node(field, level+1)
		}
	case *UnitStruct:
		f.line(level, "StructDeclaration::UnitStruct", n.Location)
		f.node(n.Identifier, level+1)
	case *NamedFieldDeclaration:
		f.line(level, "NamedFieldDeclaration", n.Location)
		f.nodes(level+1, n.Identifier, n.DeclaredType)
	case *TupleFieldDeclaration:
		f.line(level, "TupleFieldDeclaration", n.Location)
		f.node(n.DeclaredType, level+1)
	case *ExpressionStatement:
		f.line(level, "ExpressionStatement", n.Location)
		f.node(n.Expression, level+1)
	case *AssignmentStatement:
		f.line(level, "AssignmentStatement", n.Location)
		f.nodes(level+1, n.Identifier, n.Value)
	case *ReturnStatement:
		f.line(level, "ReturnStatement", n.Location)
		if n.Value != nil {
			f.node(n.Value, level+1)
		}
	case *BreakStatement:
		f.line(level, "BreakStatement", n.Location)
		if n.Value != nil {
			f.node(n.Value, level+1)
		}
	case *Identifier:
		f.line(level, "Identifier", n.Location, fmt.Sprintf("name = %q", n.Name))
	case *IntegerLiteral:
		f.line(level, "IntegerLiteral", n.Location, "value = "+strconv.FormatInt(n.Value, 10))
	case *FloatLiteral:
		f.line(level, "FloatLiteral", n.Location, "value = "+Float(n.Value).String())
	case *StringLiteral:
		f.line(level, "StringLiteral", n.Location, "value = "+n.Value)
	case *BooleanLiteral:
		f.line(level, "BooleanLiteral", n.Location, fmt.Sprintf("value = %t", n.Value))
	case *BinaryOp:
		f.line(level, "BinaryOp", n.Location, "operator = "+n.Operator.String())
		f.nodes(level+1, n.Left, n.Right)
	case *UnaryOp:
		f.line(level, "UnaryOp", n.Location, "operator = "+n.Operator.String())
		f.node(n.Operand, level+1)
	case *FunctionCall:
		f.line(level, "FunctionCall", n.Location)
		f.node(n.Function, level+1)
		for _, arg := range n.Arguments {
			f.node(arg, level+1)
		}
	case *FieldAccess:
		f.line(level, "FieldAccess", n.Location, fmt.Sprintf("field = %q", n.Field.Name))
		f.node(n.Target, level+1)
	case *BlockExpression:
		f.line(level, "BlockExpression", n.Location)
		for _, stmt := range n.Statements {
			f.node(stmt, level+1)
		}
		if n.FinalExpression != nil {
			f.node(n.FinalExpression, level+1)
		}
	case *IfExpression:
		f.line(level, "IfExpression", n.Location)
		f.nodes(level+1, n.Condition, n.Then)
		if n.Else != nil {
			f.node(n.Else, level+1)
		}
	case *LoopExpression:
		f.line(level, "LoopExpression", n.Location)
		f.node(n.Body, level+1)
	case *WhileExpression:
		f.line(level, "WhileExpression", n.Location)
		f.nodes(level+1, n.Condition, n.Body)
	default:
		f.line(level, fmt.Sprintf("%T", node), node.Span())
	}
}
