package rscript

import (
	"errors"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type flow int

const (
	flowReturn flow = iota
	flowBreak
)

// controlSignal unwinds evaluation for `return` and `break`. It is caught by the enclosing
// function call, loop or program and never escapes the runtime.
type controlSignal struct {
	flow     flow
	value    Value
	location Span
}

func (s *controlSignal) Error() string {
	if s.flow == flowReturn {
		return "return"
	}

	return "break"
}

// Runtime walks syntax trees against a single Environment. Independent runtimes share no
// state.
type Runtime struct {
	id          string
	environment *Environment
	logger      *log.Logger
	output      io.Writer
	loopDepth   int
}

func NewRuntime(opts ...Option) *Runtime {
	o := newOptions(opts)
	id := uuid.NewString()
	logger := o.logger.With("run", id)

	r := &Runtime{
		id:          id,
		environment: NewEnvironment(WithLogger(logger)),
		logger:      logger,
		output:      o.output,
	}

	defineBuiltins(r)
	return r
}

func (r *Runtime) ID() string {
	return r.id
}

func (r *Runtime) Environment() *Environment {
	return r.environment
}

// Execute parses and runs source. See ExecuteProgram for the result.
func (r *Runtime) Execute(source string) (Value, error) {
	r.logger.Debug("executing script")
	program, err := NewParser(source, WithLogger(r.logger)).Parse()
	if err != nil {
		return nil, err
	}

	return r.ExecuteProgram(program)
}

// ExecuteProgram runs the statements in order. The result is the value of a top-level
// `return`, or else the value of the last statement when it is an expression statement, or
// else unit.
func (r *Runtime) ExecuteProgram(program *Program) (Value, error) {
	r.logger.Debug("executing program", "statements", len(program.Statements))

	var last Value = Unit{}
	for _, stmt := range program.Statements {
		v, err := r.execute(stmt)
		if err != nil {
			var signal *controlSignal
			if errors.As(err, &signal) && signal.flow == flowReturn {
				return signal.value, nil
			}

			return nil, err
		}

		last = Unit{}
		if _, ok := stmt.(*ExpressionStatement); ok {
			last = v
		}
	}

	r.logger.Info("executed program")
	return last, nil
}

// Call invokes the function, builtin or struct constructor bound to name.
func (r *Runtime) Call(name string, args ...Value) (Value, error) {
	callee, err := r.environment.Get(name)
	if err != nil {
		return nil, err
	}

	return r.apply(name, callee, args, Span{})
}

func (r *Runtime) EvaluateExpression(expr Expression) (Value, error) {
	r.logger.Debug("evaluating expression", "span", expr.Span())

	switch e := expr.(type) {
	case *IntegerLiteral:
		return Int(e.Value), nil
	case *FloatLiteral:
		return Float(e.Value), nil
	case *StringLiteral:
		s, err := strconv.Unquote(e.Value)
		if err != nil {
			return nil, &InvalidStringError{Literal: e.Value, Location: e.Location, Err: err}
		}

		return String(s), nil
	case *BooleanLiteral:
		return Bool(e.Value), nil
	case *Identifier:
		v, err := r.environment.Get(e.Name)
		if err != nil {
			return nil, withLocation(err, e.Location)
		}

		return v, nil
	case *BinaryOp:
		return r.binaryOp(e)
	case *UnaryOp:
		return r.unaryOp(e)
	case *FunctionCall:
		return r.functionCall(e)
	case *FieldAccess:
		return r.fieldAccess(e)
	case *BlockExpression:
		return r.block(e)
	case *IfExpression:
		return r.ifExpression(e)
	case *LoopExpression:
		return r.loop(e)
	case *WhileExpression:
		return r.while(e)
	default:
		return nil, &UnsupportedError{Construct: "expression", Location: expr.Span()}
	}
}

func (r *Runtime) execute(stmt Statement) (Value, error) {
	switch s := stmt.(type) {
	case *VariableDeclaration:
		r.logger.Debug("variable declaration", "name", s.Identifier.Name)
		v, err := r.EvaluateExpression(s.Initializer)
		if err != nil {
			return nil, err
		}

		if s.Mutable {
			r.environment.DeclareMutable(s.Identifier.Name, v)
		} else {
			r.environment.Declare(s.Identifier.Name, v)
		}

		return Unit{}, nil
	case *FunctionDeclaration:
		r.logger.Debug("function declaration", "name", s.Identifier.Name)
		r.environment.Declare(s.Identifier.Name, &Function{
			Declaration: s,
			Closure:     r.environment.Capture(),
		})

		return Unit{}, nil
	case StructDeclaration:
		return Unit{}, r.structDeclaration(s)
	case *ExpressionStatement:
		return r.EvaluateExpression(s.Expression)
	case *AssignmentStatement:
		v, err := r.EvaluateExpression(s.Value)
		if err != nil {
			return nil, err
		}

		if err := r.environment.Set(s.Identifier.Name, v); err != nil {
			return nil, withLocation(err, s.Identifier.Location)
		}

		return Unit{}, nil
	case *ReturnStatement:
		v, err := r.optionalValue(s.Value)
		if err != nil {
			return nil, err
		}

		return nil, &controlSignal{flow: flowReturn, value: v, location: s.Location}
	case *BreakStatement:
		if r.loopDepth == 0 {
			return nil, &InvalidControlFlowError{Statement: "break", Location: s.Location}
		}

		v, err := r.optionalValue(s.Value)
		if err != nil {
			return nil, err
		}

		return nil, &controlSignal{flow: flowBreak, value: v, location: s.Location}
	default:
		return nil, &UnsupportedError{Construct: "statement", Location: stmt.Span()}
	}
}

func (r *Runtime) optionalValue(expr Expression) (Value, error) {
	if expr == nil {
		return Unit{}, nil
	}

	return r.EvaluateExpression(expr)
}

// structDeclaration binds named and tuple structs to their descriptor, and unit structs to
// their only instance.
func (r *Runtime) structDeclaration(decl StructDeclaration) error {
	name := decl.StructName()
	if r.environment.DeclaredInScope(name.Name) {
		return &AlreadyDeclaredError{Name: name.Name, Location: name.Location}
	}

	r.logger.Debug("struct declaration", "name", name.Name)

	switch s := decl.(type) {
	case *NamedStruct:
		typ := &StructType{Name: name.Name}
		for _, f := range s.Fields {
			typ.Fields = append(typ.Fields, f.Identifier.Name)
		}

		r.environment.Declare(name.Name, typ)
	case *TupleStruct:
		typ := &StructType{Name: name.Name, Tuple: true}
		for i := range s.Fields {
			typ.Fields = append(typ.Fields, strconv.Itoa(i))
		}

		r.environment.Declare(name.Name, typ)
	case *UnitStruct:
		r.environment.Declare(name.Name, &StructInstance{Name: name.Name})
	}

	return nil
}

func (r *Runtime) functionCall(expr *FunctionCall) (Value, error) {
	name := expr.Function.Name
	callee, err := r.environment.Get(name)
	if err != nil {
		return nil, withLocation(err, expr.Function.Location)
	}

	args := make([]Value, 0, len(expr.Arguments))
	for _, arg := range expr.Arguments {
		v, err := r.EvaluateExpression(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	return r.apply(name, callee, args, expr.Location)
}

func (r *Runtime) apply(name string, callee Value, args []Value, span Span) (Value, error) {
	switch fn := callee.(type) {
	case *Function:
		return r.callFunction(fn, args, span)
	case *StructType:
		if len(args) != len(fn.Fields) {
			return nil, &ArityMismatchError{Name: name, Expected: len(fn.Fields), Got: len(args), Location: span}
		}

		return fn.Instantiate(args), nil
	case *Builtin:
		v, err := fn.Fn(args)
		if err != nil {
			return nil, withLocation(err, span)
		}

		return v, nil
	default:
		return nil, &NotCallableError{Name: name, Location: span}
	}
}

func (r *Runtime) callFunction(fn *Function, args []Value, span Span) (Value, error) {
	decl := fn.Declaration
	if len(args) != len(decl.Parameters) {
		return nil, &ArityMismatchError{
			Name:     decl.Identifier.Name,
			Expected: len(decl.Parameters),
			Got:      len(args),
			Location: span,
		}
	}

	r.logger.Debug("calling function", "name", decl.Identifier.Name)

	r.environment.PushFrame(fn.Closure)
	defer r.environment.PopFrame()

	loopDepth := r.loopDepth
	r.loopDepth = 0
	defer func() { r.loopDepth = loopDepth }()

	for i, param := range decl.Parameters {
		r.environment.Declare(param.Identifier.Name, args[i])
	}

	for _, stmt := range decl.Body {
		if _, err := r.execute(stmt); err != nil {
			var signal *controlSignal
			if errors.As(err, &signal) && signal.flow == flowReturn {
				return signal.value, nil
			}

			return nil, err
		}
	}

	return Unit{}, nil
}

func (r *Runtime) block(expr *BlockExpression) (Value, error) {
	r.environment.PushScope()
	defer r.environment.PopScope()

	for _, stmt := range expr.Statements {
		if _, err := r.execute(stmt); err != nil {
			return nil, err
		}
	}

	if expr.FinalExpression == nil {
		return Unit{}, nil
	}

	return r.EvaluateExpression(expr.FinalExpression)
}

func (r *Runtime) ifExpression(expr *IfExpression) (Value, error) {
	cond, err := r.condition(expr.Condition, "if condition")
	if err != nil {
		return nil, err
	}

	if cond {
		return r.block(expr.Then)
	}

	if expr.Else != nil {
		return r.block(expr.Else)
	}

	return Unit{}, nil
}

func (r *Runtime) condition(expr Expression, operation string) (bool, error) {
	v, err := r.EvaluateExpression(expr)
	if err != nil {
		return false, err
	}

	b, ok := v.(Bool)
	if !ok {
		return false, &TypeMismatchError{Operation: operation, Left: v.Kind(), Location: expr.Span()}
	}

	return bool(b), nil
}

func (r *Runtime) loop(expr *LoopExpression) (Value, error) {
	r.loopDepth++
	defer func() { r.loopDepth-- }()

	for {
		if _, err := r.block(expr.Body); err != nil {
			if signal, ok := breakSignal(err); ok {
				return signal.value, nil
			}

			return nil, err
		}
	}
}

func (r *Runtime) while(expr *WhileExpression) (Value, error) {
	r.loopDepth++
	defer func() { r.loopDepth-- }()

	for {
		cond, err := r.condition(expr.Condition, "while condition")
		if err != nil {
			if signal, ok := breakSignal(err); ok {
				return nil, &InvalidControlFlowError{Statement: "break", Location: signal.location}
			}

			return nil, err
		}

		if !cond {
			return Unit{}, nil
		}

		if _, err := r.block(expr.Body); err != nil {
			if _, ok := breakSignal(err); ok {
				return Unit{}, nil
			}

			return nil, err
		}
	}
}

func breakSignal(err error) (*controlSignal, bool) {
	var signal *controlSignal
	if errors.As(err, &signal) && signal.flow == flowBreak {
		return signal, true
	}

	return nil, false
}

func (r *Runtime) fieldAccess(expr *FieldAccess) (Value, error) {
	target, err := r.EvaluateExpression(expr.Target)
	if err != nil {
		return nil, err
	}

	instance, ok := target.(*StructInstance)
	if !ok {
		return nil, &UnknownFieldError{Field: expr.Field.Name, Location: expr.Location}
	}

	v, ok := instance.Field(expr.Field.Name)
	if !ok {
		return nil, &UnknownFieldError{Struct: instance.Name, Field: expr.Field.Name, Location: expr.Location}
	}

	return v, nil
}

func (r *Runtime) unaryOp(expr *UnaryOp) (Value, error) {
	v, err := r.EvaluateExpression(expr.Operand)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case Int:
		return -v, nil
	case Float:
		return -v, nil
	default:
		return nil, &TypeMismatchError{Operation: "-", Left: v.Kind(), Location: expr.Location}
	}
}

func (r *Runtime) binaryOp(expr *BinaryOp) (Value, error) {
	if expr.Operator == BinaryAnd || expr.Operator == BinaryOr {
		return r.logicalOp(expr)
	}

	left, err := r.EvaluateExpression(expr.Left)
	if err != nil {
		return nil, err
	}

	right, err := r.EvaluateExpression(expr.Right)
	if err != nil {
		return nil, err
	}

	return applyBinary(expr.Operator, left, right, expr.Location)
}

// logicalOp short-circuits: the right operand is only evaluated when it decides the result.
func (r *Runtime) logicalOp(expr *BinaryOp) (Value, error) {
	op := expr.Operator.Symbol()

	left, err := r.EvaluateExpression(expr.Left)
	if err != nil {
		return nil, err
	}

	l, ok := left.(Bool)
	if !ok {
		return nil, &TypeMismatchError{Operation: op, Left: left.Kind(), Location: expr.Location}
	}

	if (expr.Operator == BinaryAnd && !bool(l)) || (expr.Operator == BinaryOr && bool(l)) {
		return l, nil
	}

	right, err := r.EvaluateExpression(expr.Right)
	if err != nil {
		return nil, err
	}

	rb, ok := right.(Bool)
	if !ok {
		return nil, &TypeMismatchError{Operation: op, Left: left.Kind(), Right: right.Kind(), Location: expr.Location}
	}

	return rb, nil
}

func applyBinary(op BinaryOperator, left, right Value, span Span) (Value, error) {
	mismatch := &TypeMismatchError{
		Operation: op.Symbol(),
		Left:      left.Kind(),
		Right:     right.Kind(),
		Location:  span,
	}

	if left.Kind() != right.Kind() {
		return nil, mismatch
	}

	switch op {
	case BinaryEquals:
		return Bool(Equal(left, right)), nil
	case BinaryNotEquals:
		return Bool(!Equal(left, right)), nil
	}

	switch l := left.(type) {
	case Int:
		r := right.(Int)
		switch op {
		case BinaryAdd:
			return l + r, nil
		case BinarySubtract:
			return l - r, nil
		case BinaryMultiply:
			return l * r, nil
		case BinaryDivide:
			if r == 0 {
				return nil, &DivisionByZeroError{Location: span}
			}

			return l / r, nil
		case BinaryLessThan:
			return Bool(l < r), nil
		case BinaryGreaterThan:
			return Bool(l > r), nil
		}
	case Float:
		r := right.(Float)
		switch op {
		case BinaryAdd:
			return l + r, nil
		case BinarySubtract:
			return l - r, nil
		case BinaryMultiply:
			return l * r, nil
		case BinaryDivide:
			return l / r, nil
		case BinaryLessThan:
			return Bool(l < r), nil
		case BinaryGreaterThan:
			return Bool(l > r), nil
		}
	case String:
		r := right.(String)
		switch op {
		case BinaryAdd:
			return l + r, nil
		case BinaryLessThan:
			return Bool(l < r), nil
		case BinaryGreaterThan:
			return Bool(l > r), nil
		}
	}

	return nil, mismatch
}

// withLocation attaches a source location to errors raised without one.
func withLocation(err error, span Span) error {
	switch e := err.(type) {
	case *VariableNotFoundError:
		return &VariableNotFoundError{Name: e.Name, Location: span}
	case *ImmutableAssignmentError:
		return &ImmutableAssignmentError{Name: e.Name, Location: span}
	case *TypeMismatchError:
		if e.Location == (Span{}) {
			return &TypeMismatchError{Operation: e.Operation, Left: e.Left, Right: e.Right, Location: span}
		}
	}

	return err
}
