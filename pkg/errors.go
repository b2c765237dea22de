package rscript

import (
	"errors"
	"fmt"
)

var (
	ErrVariableNotFound = errors.New("variable not found")
	ErrAlreadyDeclared  = errors.New("already declared")
	ErrUnsupported      = errors.New("unsupported construct")
)

// Error is implemented by every error the package reports. Kind names the discriminant so
// callers can report it without a type switch.
type Error interface {
	error
	Spanned
	Kind() string
}

type LexError struct {
	Location Span
	Message  string
	Err      error
}

func (e *LexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *LexError) Unwrap() error { return e.Err }
func (e *LexError) Span() Span    { return e.Location }
func (e *LexError) Kind() string  { return "LexicalError" }

// UnexpectedTokenError is raised when the current token does not satisfy the grammar.
type UnexpectedTokenError struct {
	Expected string
	Found    Token
	Location Span
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token, expected: %s, found: %s", e.Expected, e.Found)
}

func (e *UnexpectedTokenError) Span() Span   { return e.Location }
func (e *UnexpectedTokenError) Kind() string { return "UnexpectedToken" }

// UnexpectedEOFError is raised when the input ends in the middle of a construct.
type UnexpectedEOFError struct {
	Expected string
	Location Span
}

func (e *UnexpectedEOFError) Error() string {
	if e.Expected == "" {
		return "unexpected end of file"
	}

	return fmt.Sprintf("unexpected end of file, expected: %s", e.Expected)
}

func (e *UnexpectedEOFError) Span() Span   { return e.Location }
func (e *UnexpectedEOFError) Kind() string { return "UnexpectedEof" }

type VariableNotFoundError struct {
	Name     string
	Location Span
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable not found: %s", e.Name)
}

func (e *VariableNotFoundError) Is(target error) bool { return target == ErrVariableNotFound }
func (e *VariableNotFoundError) Span() Span           { return e.Location }
func (e *VariableNotFoundError) Kind() string         { return "VariableNotFound" }

type AlreadyDeclaredError struct {
	Name     string
	Location Span
}

func (e *AlreadyDeclaredError) Error() string {
	return fmt.Sprintf("already declared: %s", e.Name)
}

func (e *AlreadyDeclaredError) Is(target error) bool { return target == ErrAlreadyDeclared }
func (e *AlreadyDeclaredError) Span() Span           { return e.Location }
func (e *AlreadyDeclaredError) Kind() string         { return "AlreadyDeclared" }

type ImmutableAssignmentError struct {
	Name     string
	Location Span
}

func (e *ImmutableAssignmentError) Error() string {
	return fmt.Sprintf("cannot assign twice to immutable variable: %s", e.Name)
}

func (e *ImmutableAssignmentError) Span() Span   { return e.Location }
func (e *ImmutableAssignmentError) Kind() string { return "ImmutableAssignment" }

type TypeMismatchError struct {
	Operation string
	Left      Kind
	Right     Kind
	Location  Span
}

func (e *TypeMismatchError) Error() string {
	if e.Right == KindInvalid {
		return fmt.Sprintf("type mismatch: %s is not defined for %s", e.Operation, e.Left)
	}

	return fmt.Sprintf("type mismatch: %s is not defined for %s and %s", e.Operation, e.Left, e.Right)
}

func (e *TypeMismatchError) Span() Span   { return e.Location }
func (e *TypeMismatchError) Kind() string { return "TypeMismatch" }

type DivisionByZeroError struct {
	Location Span
}

func (e *DivisionByZeroError) Error() string { return "division by zero" }
func (e *DivisionByZeroError) Span() Span    { return e.Location }
func (e *DivisionByZeroError) Kind() string  { return "DivisionByZero" }

type ArityMismatchError struct {
	Name     string
	Expected int
	Got      int
	Location Span
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Expected, e.Got)
}

func (e *ArityMismatchError) Span() Span   { return e.Location }
func (e *ArityMismatchError) Kind() string { return "ArityMismatch" }

type NotCallableError struct {
	Name     string
	Location Span
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("%s is not callable", e.Name)
}

func (e *NotCallableError) Span() Span   { return e.Location }
func (e *NotCallableError) Kind() string { return "NotCallable" }

type UnknownFieldError struct {
	Struct   string
	Field    string
	Location Span
}

func (e *UnknownFieldError) Error() string {
	if e.Struct == "" {
		return fmt.Sprintf("no field %s on a non-struct value", e.Field)
	}

	return fmt.Sprintf("struct %s has no field %s", e.Struct, e.Field)
}

func (e *UnknownFieldError) Span() Span   { return e.Location }
func (e *UnknownFieldError) Kind() string { return "UnknownField" }

// InvalidControlFlowError reports a break outside of a loop.
type InvalidControlFlowError struct {
	Statement string
	Location  Span
}

func (e *InvalidControlFlowError) Error() string {
	return fmt.Sprintf("%s outside of a loop", e.Statement)
}

func (e *InvalidControlFlowError) Span() Span   { return e.Location }
func (e *InvalidControlFlowError) Kind() string { return "InvalidControlFlow" }

type InvalidStringError struct {
	Literal  string
	Location Span
	Err      error
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("invalid string literal %s: %v", e.Literal, e.Err)
}

func (e *InvalidStringError) Unwrap() error { return e.Err }
func (e *InvalidStringError) Span() Span    { return e.Location }
func (e *InvalidStringError) Kind() string  { return "InvalidString" }

// UnsupportedError marks constructs that are part of the grammar but have no meaning in the
// stage that met them.
type UnsupportedError struct {
	Construct string
	Location  Span
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }
func (e *UnsupportedError) Span() Span           { return e.Location }
func (e *UnsupportedError) Kind() string         { return "Unsupported" }
