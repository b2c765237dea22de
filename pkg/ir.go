package rscript

import (
	"github.com/charmbracelet/log"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// ValueLookup maps names to IR values: stack slots for locals and parameters, functions for
// declared functions.
type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Inherit(t2 *ValueLookup) {
	for k, v := range t2.vals {
		l.Set(k, v)
	}
}

func (l *ValueLookup) Get(id string) (value.Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

var irTypes = map[string]types.Type{
	"int":   types.I64,
	"float": types.Double,
	"bool":  types.I1,
	"unit":  types.Void,
}

type loopTarget struct {
	exit *ir.Block
}

// LLVMIRBuilder lowers functions over int, float and bool to LLVM IR. Unit valued
// expressions lower to a nil value.
type LLVMIRBuilder struct {
	mod     *ir.Module
	fn      *ir.Func
	entry   *ir.Block
	block   *ir.Block
	values  *ValueLookup
	loops   []loopTarget
	printf  *ir.Func
	formats map[string]*ir.Global
	logger  *log.Logger
}

func NewLLVMIRBuilder(logger *log.Logger) *LLVMIRBuilder {
	builder := &LLVMIRBuilder{
		mod:     ir.NewModule(),
		values:  NewValueLookup(),
		formats: make(map[string]*ir.Global),
		logger:  logger,
	}

	defineIRBuiltins(builder)
	return builder
}

func (b *LLVMIRBuilder) Module() *ir.Module {
	return b.mod
}

func lowerType(id *Identifier) (types.Type, error) {
	t, ok := irTypes[id.Name]
	if !ok {
		return nil, &UnsupportedError{Construct: "type " + id.Name, Location: id.Location}
	}

	return t, nil
}

func kindOf(t types.Type) Kind {
	switch {
	case t == nil || t.Equal(types.Void):
		return KindUnit
	case t.Equal(types.I64):
		return KindInt
	case t.Equal(types.Double):
		return KindFloat
	case t.Equal(types.I1):
		return KindBool
	default:
		return KindInvalid
	}
}

func typeOf(v value.Value) types.Type {
	if v == nil {
		return types.Void
	}

	return v.Type()
}

// declare creates the function signature. Bodies are lowered by function once every
// signature is known.
func (b *LLVMIRBuilder) declare(decl *FunctionDeclaration) error {
	if decl.Identifier.Name == b.printf.Name() {
		return &AlreadyDeclaredError{Name: decl.Identifier.Name, Location: decl.Identifier.Location}
	}

	ret, err := lowerType(decl.ReturnType)
	if err != nil {
		return err
	}

	var params []*ir.Param
	for _, p := range decl.Parameters {
		t, err := lowerType(p.DeclaredType)
		if err != nil {
			return err
		}

		if t.Equal(types.Void) {
			return &UnsupportedError{Construct: "unit parameter", Location: p.Location}
		}

		params = append(params, ir.NewParam(p.Identifier.Name, t))
	}

	f := b.mod.NewFunc(decl.Identifier.Name, ret, params...)
	b.values.Set(decl.Identifier.Name, f)

	return nil
}

func (b *LLVMIRBuilder) function(decl *FunctionDeclaration) error {
	b.logger.Debug("lowering function", "name", decl.Identifier.Name)

	v, _ := b.values.Get(decl.Identifier.Name)
	f := v.(*ir.Func)

	b.fn = f
	b.entry = f.NewBlock("entry")
	b.block = b.entry

	prevVals := b.values
	b.values = NewValueLookup()
	b.values.Inherit(prevVals)

	defer func() {
		b.values = prevVals
		b.fn, b.entry, b.block = nil, nil, nil
	}()

	for _, param := range f.Params {
		slot := b.entry.NewAlloca(param.Typ)
		b.block.NewStore(param, slot)
		b.values.Set(param.LocalName, slot)
	}

	for _, stmt := range decl.Body {
		if err := b.statement(stmt); err != nil {
			return err
		}
	}

	// Blocks left open either fall off the end of the function or follow a terminator.
	for _, block := range f.Blocks {
		if block.Term != nil {
			continue
		}

		if f.Sig.RetType.Equal(types.Void) {
			block.NewRet(nil)
		} else {
			block.NewUnreachable()
		}
	}

	return nil
}

// terminated starts a new block after a terminator so that later instructions have
// somewhere to go.
func (b *LLVMIRBuilder) terminated() {
	b.block = b.fn.NewBlock("")
}

func (b *LLVMIRBuilder) statement(stmt Statement) error {
	switch s := stmt.(type) {
	case *VariableDeclaration:
		v, err := b.expression(s.Initializer)
		if err != nil {
			return err
		}

		if v == nil {
			return &UnsupportedError{Construct: "unit variable", Location: s.Location}
		}

		slot := b.entry.NewAlloca(v.Type())
		b.block.NewStore(v, slot)
		b.values.Set(s.Identifier.Name, slot)
	case *AssignmentStatement:
		v, err := b.expression(s.Value)
		if err != nil {
			return err
		}

		slot, err := b.slot(s.Identifier)
		if err != nil {
			return err
		}

		if !typeOf(v).Equal(slot.ElemType) {
			return &TypeMismatchError{Operation: "=", Left: kindOf(slot.ElemType), Right: kindOf(typeOf(v)), Location: s.Location}
		}

		b.block.NewStore(v, slot)
	case *ExpressionStatement:
		_, err := b.expression(s.Expression)
		return err
	case *ReturnStatement:
		var v value.Value
		if s.Value != nil {
			var err error
			if v, err = b.expression(s.Value); err != nil {
				return err
			}
		}

		if !typeOf(v).Equal(b.fn.Sig.RetType) {
			return &TypeMismatchError{Operation: "return", Left: kindOf(b.fn.Sig.RetType), Right: kindOf(typeOf(v)), Location: s.Location}
		}

		b.block.NewRet(v)
		b.terminated()
	case *BreakStatement:
		if len(b.loops) == 0 {
			return &InvalidControlFlowError{Statement: "break", Location: s.Location}
		}

		if s.Value != nil {
			return &UnsupportedError{Construct: "break with a value", Location: s.Location}
		}

		b.block.NewBr(b.loops[len(b.loops)-1].exit)
		b.terminated()
	default:
		return &UnsupportedError{Construct: "nested declaration", Location: stmt.Span()}
	}

	return nil
}

func (b *LLVMIRBuilder) slot(id *Identifier) (*ir.InstAlloca, error) {
	v, ok := b.values.Get(id.Name)
	if !ok {
		return nil, &VariableNotFoundError{Name: id.Name, Location: id.Location}
	}

	slot, ok := v.(*ir.InstAlloca)
	if !ok {
		return nil, &UnsupportedError{Construct: "function value", Location: id.Location}
	}

	return slot, nil
}

func (b *LLVMIRBuilder) expression(expr Expression) (value.Value, error) {
	switch e := expr.(type) {
	case *IntegerLiteral:
		return constant.NewInt(types.I64, e.Value), nil
	case *FloatLiteral:
		return constant.NewFloat(types.Double, e.Value), nil
	case *BooleanLiteral:
		return constant.NewBool(e.Value), nil
	case *Identifier:
		slot, err := b.slot(e)
		if err != nil {
			return nil, err
		}

		return b.block.NewLoad(slot.ElemType, slot), nil
	case *UnaryOp:
		return b.unaryExpression(e)
	case *BinaryOp:
		return b.binaryExpression(e)
	case *FunctionCall:
		return b.functionCall(e)
	case *BlockExpression:
		return b.blockExpression(e)
	case *IfExpression:
		return b.ifExpression(e)
	case *WhileExpression:
		return nil, b.whileExpression(e)
	case *LoopExpression:
		return nil, b.loopExpression(e)
	default:
		return nil, &UnsupportedError{Construct: "expression", Location: expr.Span()}
	}
}

func (b *LLVMIRBuilder) unaryExpression(expr *UnaryOp) (value.Value, error) {
	v, err := b.expression(expr.Operand)
	if err != nil {
		return nil, err
	}

	switch kindOf(typeOf(v)) {
	case KindInt:
		return b.block.NewSub(constant.NewInt(types.I64, 0), v), nil
	case KindFloat:
		return b.block.NewFNeg(v), nil
	default:
		return nil, &TypeMismatchError{Operation: "-", Left: kindOf(typeOf(v)), Location: expr.Location}
	}
}

func (b *LLVMIRBuilder) binaryExpression(expr *BinaryOp) (value.Value, error) {
	if expr.Operator == BinaryAnd || expr.Operator == BinaryOr {
		return b.logicalExpression(expr)
	}

	v1, err := b.expression(expr.Left)
	if err != nil {
		return nil, err
	}

	v2, err := b.expression(expr.Right)
	if err != nil {
		return nil, err
	}

	left, right := kindOf(typeOf(v1)), kindOf(typeOf(v2))
	mismatch := &TypeMismatchError{Operation: expr.Operator.Symbol(), Left: left, Right: right, Location: expr.Location}
	if left != right {
		return nil, mismatch
	}

	switch left {
	case KindInt:
		switch expr.Operator {
		case BinaryAdd:
			return b.block.NewAdd(v1, v2), nil
		case BinarySubtract:
			return b.block.NewSub(v1, v2), nil
		case BinaryMultiply:
			return b.block.NewMul(v1, v2), nil
		case BinaryDivide:
			return b.block.NewSDiv(v1, v2), nil
		case BinaryEquals:
			return b.block.NewICmp(enum.IPredEQ, v1, v2), nil
		case BinaryNotEquals:
			return b.block.NewICmp(enum.IPredNE, v1, v2), nil
		case BinaryLessThan:
			return b.block.NewICmp(enum.IPredSLT, v1, v2), nil
		case BinaryGreaterThan:
			return b.block.NewICmp(enum.IPredSGT, v1, v2), nil
		}
	case KindFloat:
		switch expr.Operator {
		case BinaryAdd:
			return b.block.NewFAdd(v1, v2), nil
		case BinarySubtract:
			return b.block.NewFSub(v1, v2), nil
		case BinaryMultiply:
			return b.block.NewFMul(v1, v2), nil
		case BinaryDivide:
			return b.block.NewFDiv(v1, v2), nil
		case BinaryEquals:
			return b.block.NewFCmp(enum.FPredOEQ, v1, v2), nil
		case BinaryNotEquals:
			return b.block.NewFCmp(enum.FPredONE, v1, v2), nil
		case BinaryLessThan:
			return b.block.NewFCmp(enum.FPredOLT, v1, v2), nil
		case BinaryGreaterThan:
			return b.block.NewFCmp(enum.FPredOGT, v1, v2), nil
		}
	case KindBool:
		switch expr.Operator {
		case BinaryEquals:
			return b.block.NewICmp(enum.IPredEQ, v1, v2), nil
		case BinaryNotEquals:
			return b.block.NewICmp(enum.IPredNE, v1, v2), nil
		}
	}

	return nil, mismatch
}

// logicalExpression lowers && and || with short-circuit evaluation through a stack slot.
func (b *LLVMIRBuilder) logicalExpression(expr *BinaryOp) (value.Value, error) {
	op := expr.Operator.Symbol()

	v1, err := b.expression(expr.Left)
	if err != nil {
		return nil, err
	}

	if kindOf(typeOf(v1)) != KindBool {
		return nil, &TypeMismatchError{Operation: op, Left: kindOf(typeOf(v1)), Location: expr.Location}
	}

	result := b.entry.NewAlloca(types.I1)
	b.block.NewStore(v1, result)

	rhs := b.fn.NewBlock("")
	end := b.fn.NewBlock("")
	if expr.Operator == BinaryAnd {
		b.block.NewCondBr(v1, rhs, end)
	} else {
		b.block.NewCondBr(v1, end, rhs)
	}

	b.block = rhs
	v2, err := b.expression(expr.Right)
	if err != nil {
		return nil, err
	}

	if kindOf(typeOf(v2)) != KindBool {
		return nil, &TypeMismatchError{Operation: op, Left: KindBool, Right: kindOf(typeOf(v2)), Location: expr.Location}
	}

	b.block.NewStore(v2, result)
	b.block.NewBr(end)

	b.block = end
	return b.block.NewLoad(types.I1, result), nil
}

func (b *LLVMIRBuilder) functionCall(expr *FunctionCall) (value.Value, error) {
	var args []value.Value
	for _, arg := range expr.Arguments {
		v, err := b.expression(arg)
		if err != nil {
			return nil, err
		}

		if v == nil {
			return nil, &UnsupportedError{Construct: "unit argument", Location: arg.Span()}
		}

		args = append(args, v)
	}

	if expr.Function.Name == "print" {
		if _, shadowed := b.values.Get("print"); !shadowed {
			return nil, b.print(args, expr.Location)
		}
	}

	v, ok := b.values.Get(expr.Function.Name)
	if !ok {
		return nil, &VariableNotFoundError{Name: expr.Function.Name, Location: expr.Function.Location}
	}

	f, ok := v.(*ir.Func)
	if !ok {
		return nil, &NotCallableError{Name: expr.Function.Name, Location: expr.Location}
	}

	if len(args) != len(f.Params) {
		return nil, &ArityMismatchError{Name: expr.Function.Name, Expected: len(f.Params), Got: len(args), Location: expr.Location}
	}

	for i, arg := range args {
		if !arg.Type().Equal(f.Params[i].Typ) {
			return nil, &TypeMismatchError{
				Operation: "argument " + f.Params[i].LocalName,
				Left:      kindOf(f.Params[i].Typ),
				Right:     kindOf(arg.Type()),
				Location:  expr.Arguments[i].Span(),
			}
		}
	}

	call := b.block.NewCall(f, args...)
	if f.Sig.RetType.Equal(types.Void) {
		return nil, nil
	}

	return call, nil
}

func (b *LLVMIRBuilder) blockExpression(expr *BlockExpression) (value.Value, error) {
	prevVals := b.values
	b.values = NewValueLookup()
	b.values.Inherit(prevVals)
	defer func() { b.values = prevVals }()

	for _, stmt := range expr.Statements {
		if err := b.statement(stmt); err != nil {
			return nil, err
		}
	}

	if expr.FinalExpression == nil {
		return nil, nil
	}

	return b.expression(expr.FinalExpression)
}

func (b *LLVMIRBuilder) condition(expr Expression, operation string) (value.Value, error) {
	cond, err := b.expression(expr)
	if err != nil {
		return nil, err
	}

	if kindOf(typeOf(cond)) != KindBool {
		return nil, &TypeMismatchError{Operation: operation, Left: kindOf(typeOf(cond)), Location: expr.Span()}
	}

	return cond, nil
}

func (b *LLVMIRBuilder) ifExpression(expr *IfExpression) (value.Value, error) {
	cond, err := b.condition(expr.Condition, "if condition")
	if err != nil {
		return nil, err
	}

	thenBlock := b.fn.NewBlock("")
	end := b.fn.NewBlock("")
	elseBlock := end
	if expr.Else != nil {
		elseBlock = b.fn.NewBlock("")
	}

	b.block.NewCondBr(cond, thenBlock, elseBlock)

	b.block = thenBlock
	thenVal, err := b.blockExpression(expr.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := b.block

	if expr.Else == nil {
		thenEnd.NewBr(end)
		b.block = end
		return nil, nil
	}

	b.block = elseBlock
	elseVal, err := b.blockExpression(expr.Else)
	if err != nil {
		return nil, err
	}
	elseEnd := b.block

	if thenVal == nil || elseVal == nil {
		thenEnd.NewBr(end)
		elseEnd.NewBr(end)
		b.block = end
		return nil, nil
	}

	if !thenVal.Type().Equal(elseVal.Type()) {
		return nil, &TypeMismatchError{Operation: "if branches", Left: kindOf(thenVal.Type()), Right: kindOf(elseVal.Type()), Location: expr.Location}
	}

	result := b.entry.NewAlloca(thenVal.Type())
	thenEnd.NewStore(thenVal, result)
	thenEnd.NewBr(end)
	elseEnd.NewStore(elseVal, result)
	elseEnd.NewBr(end)

	b.block = end
	return b.block.NewLoad(thenVal.Type(), result), nil
}

func (b *LLVMIRBuilder) whileExpression(expr *WhileExpression) error {
	head := b.fn.NewBlock("")
	body := b.fn.NewBlock("")
	exit := b.fn.NewBlock("")

	b.block.NewBr(head)
	b.block = head

	// A break in the condition belongs to no loop.
	loops := b.loops
	b.loops = nil
	cond, err := b.condition(expr.Condition, "while condition")
	b.loops = loops
	if err != nil {
		return err
	}
	b.block.NewCondBr(cond, body, exit)

	b.block = body
	if err := b.loopBody(expr.Body, exit); err != nil {
		return err
	}
	b.block.NewBr(head)

	b.block = exit
	return nil
}

func (b *LLVMIRBuilder) loopExpression(expr *LoopExpression) error {
	body := b.fn.NewBlock("")
	exit := b.fn.NewBlock("")

	b.block.NewBr(body)
	b.block = body
	if err := b.loopBody(expr.Body, exit); err != nil {
		return err
	}
	b.block.NewBr(body)

	b.block = exit
	return nil
}

func (b *LLVMIRBuilder) loopBody(body *BlockExpression, exit *ir.Block) error {
	b.loops = append(b.loops, loopTarget{exit: exit})
	defer func() { b.loops = b.loops[:len(b.loops)-1] }()

	_, err := b.blockExpression(body)
	return err
}
