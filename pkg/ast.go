package rscript

type Node interface {
	Spanned
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// StructDeclaration is one of *NamedStruct, *TupleStruct or *UnitStruct.
type StructDeclaration interface {
	Statement
	StructName() *Identifier
}

type Program struct {
	Statements []Statement
	Location   Span
}

func (n *Program) Span() Span { return n.Location }

// Statements

type VariableDeclaration struct {
	Identifier  *Identifier
	Mutable     bool
	Initializer Expression
	Location    Span
}

type FunctionDeclaration struct {
	Identifier *Identifier
	Parameters []*Parameter
	ReturnType *Identifier
	Body       []Statement
	Location   Span
}

type Parameter struct {
	Identifier   *Identifier
	DeclaredType *Identifier
	Location     Span
}

type NamedStruct struct {
	Identifier *Identifier
	Fields     []*NamedFieldDeclaration
	Location   Span
}

type TupleStruct struct {
	Identifier *Identifier
	Fields     []*TupleFieldDeclaration
	Location   Span
}

type UnitStruct struct {
	Identifier *Identifier
	Location   Span
}

type NamedFieldDeclaration struct {
	Identifier   *Identifier
	DeclaredType *Identifier
	Location     Span
}

type TupleFieldDeclaration struct {
	DeclaredType *Identifier
	Location     Span
}

type ExpressionStatement struct {
	Expression Expression
	Location   Span
}

type AssignmentStatement struct {
	Identifier *Identifier
	Value      Expression
	Location   Span
}

// ReturnStatement and BreakStatement have a nil Value when none was given.
type ReturnStatement struct {
	Value    Expression
	Location Span
}

type BreakStatement struct {
	Value    Expression
	Location Span
}

func (n *VariableDeclaration) Span() Span   { return n.Location }
func (n *FunctionDeclaration) Span() Span   { return n.Location }
func (n *Parameter) Span() Span             { return n.Location }
func (n *NamedStruct) Span() Span           { return n.Location }
func (n *TupleStruct) Span() Span           { return n.Location }
func (n *UnitStruct) Span() Span            { return n.Location }
func (n *NamedFieldDeclaration) Span() Span { return n.Location }
func (n *TupleFieldDeclaration) Span() Span { return n.Location }
func (n *ExpressionStatement) Span() Span   { return n.Location }
func (n *AssignmentStatement) Span() Span   { return n.Location }
func (n *ReturnStatement) Span() Span       { return n.Location }
func (n *BreakStatement) Span() Span        { return n.Location }

func (*VariableDeclaration) statementNode() {}
func (*FunctionDeclaration) statementNode() {}
func (*NamedStruct) statementNode()         {}
func (*TupleStruct) statementNode()         {}
func (*UnitStruct) statementNode()          {}
func (*ExpressionStatement) statementNode() {}
func (*AssignmentStatement) statementNode() {}
func (*ReturnStatement) statementNode()     {}
func (*BreakStatement) statementNode()      {}

func (n *NamedStruct) StructName() *Identifier { return n.Identifier }
func (n *TupleStruct) StructName() *Identifier { return n.Identifier }
func (n *UnitStruct) StructName() *Identifier  { return n.Identifier }

// Expressions

type Identifier struct {
	Name     string
	Location Span
}

type IntegerLiteral struct {
	Value    int64
	Location Span
}

type FloatLiteral struct {
	Value    float64
	Location Span
}

// StringLiteral keeps the source text verbatim, including quotes and escape markers.
type StringLiteral struct {
	Value    string
	Location Span
}

type BooleanLiteral struct {
	Value    bool
	Location Span
}

type BinaryOperator int

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryEquals
	BinaryNotEquals
	BinaryLessThan
	BinaryGreaterThan
	BinaryAnd
	BinaryOr
)

var binaryOperatorNames = [...]string{
	BinaryAdd:         "Add",
	BinarySubtract:    "Subtract",
	BinaryMultiply:    "Multiply",
	BinaryDivide:      "Divide",
	BinaryEquals:      "Equals",
	BinaryNotEquals:   "NotEquals",
	BinaryLessThan:    "LessThan",
	BinaryGreaterThan: "GreaterThan",
	BinaryAnd:         "And",
	BinaryOr:          "Or",
}

var binaryOperatorSymbols = [...]string{
	BinaryAdd:         "+",
	BinarySubtract:    "-",
	BinaryMultiply:    "*",
	BinaryDivide:      "/",
	BinaryEquals:      "==",
	BinaryNotEquals:   "!=",
	BinaryLessThan:    "<",
	BinaryGreaterThan: ">",
	BinaryAnd:         "&&",
	BinaryOr:          "||",
}

func (o BinaryOperator) String() string {
	return binaryOperatorNames[o]
}

func (o BinaryOperator) Symbol() string {
	return binaryOperatorSymbols[o]
}

// InferredType slots are reserved for a type checking pass and stay nil otherwise.

type BinaryOp struct {
	Operator     BinaryOperator
	Left         Expression
	Right        Expression
	Location     Span
	InferredType *Identifier
}

type UnaryOperator int

const (
	UnaryNegate UnaryOperator = iota
)

func (o UnaryOperator) String() string {
	return "Negate"
}

type UnaryOp struct {
	Operator     UnaryOperator
	Operand      Expression
	Location     Span
	InferredType *Identifier
}

type FunctionCall struct {
	Function     *Identifier
	Arguments    []Expression
	Location     Span
	InferredType *Identifier
}

// FieldAccess reads a struct field. Tuple fields are addressed by index, e.g. `p.0`.
type FieldAccess struct {
	Target       Expression
	Field        *Identifier
	Location     Span
	InferredType *Identifier
}

// BlockExpression evaluates to FinalExpression, or unit when it is nil.
type BlockExpression struct {
	Statements      []Statement
	FinalExpression Expression
	Location        Span
	InferredType    *Identifier
}

// IfExpression branches must yield consistent types; an `else if` chain is stored as an
// else block whose final expression is the nested IfExpression.
type IfExpression struct {
	Condition    Expression
	Then         *BlockExpression
	Else         *BlockExpression
	Location     Span
	InferredType *Identifier
}

type LoopExpression struct {
	Body         *BlockExpression
	Location     Span
	InferredType *Identifier
}

type WhileExpression struct {
	Condition    Expression
	Body         *BlockExpression
	Location     Span
	InferredType *Identifier
}

func (n *Identifier) Span() Span      { return n.Location }
func (n *IntegerLiteral) Span() Span  { return n.Location }
func (n *FloatLiteral) Span() Span    { return n.Location }
func (n *StringLiteral) Span() Span   { return n.Location }
func (n *BooleanLiteral) Span() Span  { return n.Location }
func (n *BinaryOp) Span() Span        { return n.Location }
func (n *UnaryOp) Span() Span         { return n.Location }
func (n *FunctionCall) Span() Span    { return n.Location }
func (n *FieldAccess) Span() Span     { return n.Location }
func (n *BlockExpression) Span() Span { return n.Location }
func (n *IfExpression) Span() Span    { return n.Location }
func (n *LoopExpression) Span() Span  { return n.Location }
func (n *WhileExpression) Span() Span { return n.Location }

func (*Identifier) expressionNode()      {}
func (*IntegerLiteral) expressionNode()  {}
func (*FloatLiteral) expressionNode()    {}
func (*StringLiteral) expressionNode()   {}
func (*BooleanLiteral) expressionNode()  {}
func (*BinaryOp) expressionNode()        {}
func (*UnaryOp) expressionNode()         {}
func (*FunctionCall) expressionNode()    {}
func (*FieldAccess) expressionNode()     {}
func (*BlockExpression) expressionNode() {}
func (*IfExpression) expressionNode()    {}
func (*LoopExpression) expressionNode()  {}
func (*WhileExpression) expressionNode() {}

// widenSpan extends the location of expr to cover span, used for the parentheses around it.
func widenSpan(expr Expression, span Span) {
	switch e := expr.(type) {
	case *Identifier:
		e.Location = e.Location.Combine(span)
	case *IntegerLiteral:
		e.Location = e.Location.Combine(span)
	case *FloatLiteral:
		e.Location = e.Location.Combine(span)
	case *StringLiteral:
		e.Location = e.Location.Combine(span)
	case *BooleanLiteral:
		e.Location = e.Location.Combine(span)
	case *BinaryOp:
		e.Location = e.Location.Combine(span)
	case *UnaryOp:
		e.Location = e.Location.Combine(span)
	case *FunctionCall:
		e.Location = e.Location.Combine(span)
	case *FieldAccess:
		e.Location = e.Location.Combine(span)
	case *BlockExpression:
		e.Location = e.Location.Combine(span)
	case *IfExpression:
		e.Location = e.Location.Combine(span)
	case *LoopExpression:
		e.Location = e.Location.Combine(span)
	case *WhileExpression:
		e.Location = e.Location.Combine(span)
	}
}
