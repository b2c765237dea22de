package rscript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	precedenceLowest = iota
	precedenceOr
	precedenceAnd
	precedenceEquality
	precedenceComparison
	precedenceAdditive
	precedenceMultiplicative
)

var precedences = map[TokenType]int{
	TokenOr:          precedenceOr,
	TokenAnd:         precedenceAnd,
	TokenEquals:      precedenceEquality,
	TokenNotEquals:   precedenceEquality,
	TokenLessThan:    precedenceComparison,
	TokenGreaterThan: precedenceComparison,
	TokenPlus:        precedenceAdditive,
	TokenMinus:       precedenceAdditive,
	TokenStar:        precedenceMultiplicative,
	TokenSlash:       precedenceMultiplicative,
}

var binaryOperators = map[TokenType]BinaryOperator{
	TokenOr:          BinaryOr,
	TokenAnd:         BinaryAnd,
	TokenEquals:      BinaryEquals,
	TokenNotEquals:   BinaryNotEquals,
	TokenLessThan:    BinaryLessThan,
	TokenGreaterThan: BinaryGreaterThan,
	TokenPlus:        BinaryAdd,
	TokenMinus:       BinarySubtract,
	TokenStar:        BinaryMultiply,
	TokenSlash:       BinaryDivide,
}

// Parser is a recursive descent parser with a single token of lookahead. It stops at the
// first error; there is no recovery.
type Parser struct {
	lexer  *Lexer
	logger *log.Logger

	current Token
	span    Span
	prev    Span
}

func NewParser(source string, opts ...Option) *Parser {
	return NewParserFromLexer(NewLexer(source), opts...)
}

func NewParserFromLexer(lexer *Lexer, opts ...Option) *Parser {
	o := newOptions(opts)

	return &Parser{
		lexer:  lexer,
		logger: o.logger,
	}
}

// Parse consumes the whole input and returns the program.
func (p *Parser) Parse() (*Program, error) {
	p.logger.Debug("parsing program")
	p.lexer.Reset()
	if err := p.advance(); err != nil {
		return nil, err
	}

	program := &Program{
		Location: Span{p.span.Start, p.span.Start},
	}

	for !p.atEOF() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}

		program.Statements = append(program.Statements, stmt)
	}

	if len(program.Statements) > 0 {
		program.Location.End = p.prev.End
	}

	p.logger.Info("parsed program", "statements", len(program.Statements), "span", program.Location)
	return program, nil
}

// ParseExpression parses the whole input as a single expression.
func (p *Parser) ParseExpression() (Expression, error) {
	p.lexer.Reset()
	if err := p.advance(); err != nil {
		return nil, err
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if !p.atEOF() {
		return nil, p.unexpected(TokenEOF.String())
	}

	return expr, nil
}

// advance pulls the next token from the lexer, failing if the lexer reports an error.
func (p *Parser) advance() error {
	tok, span, err := p.lexer.Next()
	if err != nil {
		return err
	}

	p.prev = p.span
	p.current = tok
	p.span = span

	return nil
}

func (p *Parser) atEOF() bool {
	return p.current.Typ == TokenEOF
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Typ == typ
}

func (p *Parser) consume(typ TokenType) (Span, error) {
	if !p.check(typ) {
		return Span{}, p.unexpected(typ.String())
	}

	span := p.span
	return span, p.advance()
}

func (p *Parser) consumeIdentifier() (*Identifier, error) {
	if !p.check(TokenIdentifier) {
		return nil, p.unexpected(TokenIdentifier.String())
	}

	id := &Identifier{
		Name:     p.current.Value,
		Location: p.span,
	}

	return id, p.advance()
}

func (p *Parser) unexpected(expected string) error {
	if p.atEOF() {
		return &UnexpectedEOFError{
			Expected: expected,
			Location: p.span,
		}
	}

	return &UnexpectedTokenError{
		Expected: expected,
		Found:    p.current,
		Location: p.span,
	}
}

func (p *Parser) statement() (Statement, error) {
	stmt, tail, err := p.blockItem(false)
	if err != nil {
		return nil, err
	}

	if tail != nil {
		return nil, p.unexpected(TokenSemicolon.String())
	}

	return stmt, nil
}

// blockItem parses a statement. When allowTail is set, an expression directly followed by
// `}` is returned as the enclosing block's final expression instead.
func (p *Parser) blockItem(allowTail bool) (Statement, Expression, error) {
	p.logger.Debug("parsing statement", "token", p.current, "span", p.span)

	var (
		stmt Statement
		err  error
	)

	switch p.current.Typ {
	case TokenLet:
		stmt, err = p.variableDeclaration()
	case TokenFn:
		stmt, err = p.functionDeclaration()
	case TokenStruct:
		stmt, err = p.structDeclaration()
	case TokenReturn:
		stmt, err = p.returnStatement()
	case TokenBreak:
		stmt, err = p.breakStatement()
	case TokenEOF:
		err = p.unexpected("statement")
	default:
		return p.expressionStatement(allowTail)
	}

	return stmt, nil, err
}

func (p *Parser) variableDeclaration() (Statement, error) {
	start, err := p.consume(TokenLet)
	if err != nil {
		return nil, err
	}

	mutable := p.check(TokenMut)
	if mutable {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	identifier, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(TokenAssign); err != nil {
		return nil, err
	}

	initializer, err := p.expression()
	if err != nil {
		return nil, err
	}

	end, err := p.consume(TokenSemicolon)
	if err != nil {
		return nil, err
	}

	return &VariableDeclaration{
		Identifier:  identifier,
		Mutable:     mutable,
		Initializer: initializer,
		Location:    start.Combine(end),
	}, nil
}

func (p *Parser) functionDeclaration() (Statement, error) {
	start, err := p.consume(TokenFn)
	if err != nil {
		return nil, err
	}

	identifier, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(TokenOpenParentheses); err != nil {
		return nil, err
	}

	var parameters []*Parameter
	for p.check(TokenIdentifier) {
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}

		parameters = append(parameters, param)

		if !p.check(TokenComma) {
			break
		}

		if err := p.advance(); err != nil { // Skip the comma
			return nil, err
		}
	}

	if _, err := p.consume(TokenCloseParentheses); err != nil {
		return nil, err
	}

	if _, err := p.consume(TokenArrow); err != nil {
		return nil, err
	}

	returnType, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(TokenOpenCurly); err != nil {
		return nil, err
	}

	var body []Statement
	for !p.check(TokenCloseCurly) {
		if p.atEOF() {
			return nil, p.unexpected(TokenCloseCurly.String())
		}

		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}

		body = append(body, stmt)
	}

	end, err := p.consume(TokenCloseCurly)
	if err != nil {
		return nil, err
	}

	return &FunctionDeclaration{
		Identifier: identifier,
		Parameters: parameters,
		ReturnType: returnType,
		Body:       body,
		Location:   start.Combine(end),
	}, nil
}

func (p *Parser) parameter() (*Parameter, error) {
	identifier, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(TokenColon); err != nil {
		return nil, err
	}

	declaredType, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	return &Parameter{
		Identifier:   identifier,
		DeclaredType: declaredType,
		Location:     identifier.Location.Combine(declaredType.Location),
	}, nil
}

func (p *Parser) structDeclaration() (Statement, error) {
	start, err := p.consume(TokenStruct)
	if err != nil {
		return nil, err
	}

	identifier, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	switch p.current.Typ {
	case TokenOpenParentheses:
		return p.tupleStruct(start, identifier)
	case TokenOpenCurly:
		return p.namedStruct(start, identifier)
	case TokenSemicolon:
		p.logger.Debug("matched unit struct", "name", identifier.Name)
		end := p.span
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &UnitStruct{
			Identifier: identifier,
			Location:   start.Combine(end),
		}, nil
	default:
		return nil, p.unexpected("`(` or `{` or `;`")
	}
}

// tupleStruct parses `( T, U )` followed by `;`. Commas are accepted anywhere between the
// field types.
func (p *Parser) tupleStruct(start Span, identifier *Identifier) (Statement, error) {
	p.logger.Debug("matched tuple struct", "name", identifier.Name)
	if err := p.advance(); err != nil { // Skip (
		return nil, err
	}

	var fields []*TupleFieldDeclaration
	for !p.check(TokenCloseParentheses) {
		switch p.current.Typ {
		case TokenComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case TokenIdentifier:
			declaredType, err := p.consumeIdentifier()
			if err != nil {
				return nil, err
			}

			fields = append(fields, &TupleFieldDeclaration{
				DeclaredType: declaredType,
				Location:     declaredType.Location,
			})
		default:
			return nil, p.unexpected("`)` or identifier")
		}
	}

	if _, err := p.consume(TokenCloseParentheses); err != nil {
		return nil, err
	}

	end, err := p.consume(TokenSemicolon)
	if err != nil {
		return nil, err
	}

	return &TupleStruct{
		Identifier: identifier,
		Fields:     fields,
		Location:   start.Combine(end),
	}, nil
}

// namedStruct parses `{ name: T, ... }`. The comma between fields is optional.
func (p *Parser) namedStruct(start Span, identifier *Identifier) (Statement, error) {
	p.logger.Debug("matched named fields struct", "name", identifier.Name)
	if err := p.advance(); err != nil { // Skip {
		return nil, err
	}

	var fields []*NamedFieldDeclaration
	for !p.check(TokenCloseCurly) {
		if !p.check(TokenIdentifier) {
			return nil, p.unexpected("`}` or identifier")
		}

		name, err := p.consumeIdentifier()
		if err != nil {
			return nil, err
		}

		if _, err := p.consume(TokenColon); err != nil {
			return nil, err
		}

		declaredType, err := p.consumeIdentifier()
		if err != nil {
			return nil, err
		}

		fields = append(fields, &NamedFieldDeclaration{
			Identifier:   name,
			DeclaredType: declaredType,
			Location:     name.Location.Combine(declaredType.Location),
		})

		if p.check(TokenComma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	end, err := p.consume(TokenCloseCurly)
	if err != nil {
		return nil, err
	}

	return &NamedStruct{
		Identifier: identifier,
		Fields:     fields,
		Location:   start.Combine(end),
	}, nil
}

func (p *Parser) returnStatement() (Statement, error) {
	start, end, value, err := p.optionalValueStatement(TokenReturn)
	if err != nil {
		return nil, err
	}

	return &ReturnStatement{
		Value:    value,
		Location: start.Combine(end),
	}, nil
}

func (p *Parser) breakStatement() (Statement, error) {
	start, end, value, err := p.optionalValueStatement(TokenBreak)
	if err != nil {
		return nil, err
	}

	return &BreakStatement{
		Value:    value,
		Location: start.Combine(end),
	}, nil
}

// optionalValueStatement parses `keyword expr? ;`.
func (p *Parser) optionalValueStatement(keyword TokenType) (Span, Span, Expression, error) {
	start, err := p.consume(keyword)
	if err != nil {
		return Span{}, Span{}, nil, err
	}

	var value Expression
	if !p.check(TokenSemicolon) {
		if value, err = p.expression(); err != nil {
			return Span{}, Span{}, nil, err
		}
	}

	end, err := p.consume(TokenSemicolon)
	if err != nil {
		return Span{}, Span{}, nil, err
	}

	return start, end, value, nil
}

// startsBlockLike reports whether a token opens an expression that may stand as a statement
// without a trailing semicolon.
func startsBlockLike(typ TokenType) bool {
	switch typ {
	case TokenOpenCurly, TokenIf, TokenLoop, TokenWhile:
		return true
	}

	return false
}

func (p *Parser) expressionStatement(allowTail bool) (Statement, Expression, error) {
	blockLike := startsBlockLike(p.current.Typ)

	var expr Expression
	var err error
	if blockLike {
		// The block-like expression ends the statement: `if c { } -x;` is two statements.
		expr, err = p.primary()
	} else {
		expr, err = p.expression()
	}
	if err != nil {
		return nil, nil, err
	}

	if id, ok := expr.(*Identifier); ok && p.check(TokenAssign) {
		stmt, err := p.assignment(id)
		return stmt, nil, err
	}

	switch {
	case p.check(TokenSemicolon):
		end, err := p.consume(TokenSemicolon)
		if err != nil {
			return nil, nil, err
		}

		return &ExpressionStatement{
			Expression: expr,
			Location:   expr.Span().Combine(end),
		}, nil, nil
	case allowTail && p.check(TokenCloseCurly):
		return nil, expr, nil
	case blockLike:
		return &ExpressionStatement{
			Expression: expr,
			Location:   expr.Span(),
		}, nil, nil
	default:
		return nil, nil, p.unexpected(TokenSemicolon.String())
	}
}

func (p *Parser) assignment(id *Identifier) (Statement, error) {
	if _, err := p.consume(TokenAssign); err != nil {
		return nil, err
	}

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	end, err := p.consume(TokenSemicolon)
	if err != nil {
		return nil, err
	}

	return &AssignmentStatement{
		Identifier: id,
		Value:      value,
		Location:   id.Location.Combine(end),
	}, nil
}

func (p *Parser) expression() (Expression, error) {
	return p.binaryExpression(precedenceLowest + 1)
}

// binaryExpression implements precedence climbing. Every operator is left associative, so
// the right operand only binds operators of strictly higher precedence.
func (p *Parser) binaryExpression(minPrecedence int) (Expression, error) {
	lhs, err := p.unaryExpression()
	if err != nil {
		return nil, err
	}

	for {
		precedence, ok := precedences[p.current.Typ]
		if !ok || precedence < minPrecedence {
			return lhs, nil
		}

		operator := binaryOperators[p.current.Typ]
		p.logger.Debug("parsing binary operation", "operator", operator)
		if err := p.advance(); err != nil {
			return nil, err
		}

		rhs, err := p.binaryExpression(precedence + 1)
		if err != nil {
			return nil, err
		}

		lhs = &BinaryOp{
			Operator: operator,
			Left:     lhs,
			Right:    rhs,
			Location: lhs.Span().Combine(rhs.Span()),
		}
	}
}

func (p *Parser) unaryExpression() (Expression, error) {
	if !p.check(TokenMinus) {
		return p.postfixExpression()
	}

	start := p.span
	if err := p.advance(); err != nil {
		return nil, err
	}

	operand, err := p.unaryExpression()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{
		Operator: UnaryNegate,
		Operand:  operand,
		Location: start.Combine(operand.Span()),
	}, nil
}

func (p *Parser) postfixExpression() (Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.check(TokenPeriod) {
		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.check(TokenFloat) {
			expr, err = p.nestedTupleAccess(expr)
			if err != nil {
				return nil, err
			}

			continue
		}

		if !p.check(TokenIdentifier) && !p.check(TokenInteger) {
			return nil, p.unexpected("field name")
		}

		field := &Identifier{
			Name:     p.current.Value,
			Location: p.span,
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		expr = &FieldAccess{
			Target:   expr,
			Field:    field,
			Location: expr.Span().Combine(field.Location),
		}
	}

	return expr, nil
}

// nestedTupleAccess handles `p.0.1`, where the lexer reads `0.1` as a single float.
func (p *Parser) nestedTupleAccess(target Expression) (Expression, error) {
	first, second, ok := strings.Cut(p.current.Value, ".")
	if !ok || !isIndex(first) || !isIndex(second) {
		return nil, p.unexpected("field name")
	}

	span := p.span
	if err := p.advance(); err != nil {
		return nil, err
	}

	outer := &Identifier{
		Name:     first,
		Location: Span{Start: span.Start, End: span.Start + len(first)},
	}
	inner := &Identifier{
		Name:     second,
		Location: Span{Start: outer.Location.End + 1, End: span.End},
	}

	expr := &FieldAccess{
		Target:   target,
		Field:    outer,
		Location: target.Span().Combine(outer.Location),
	}

	return &FieldAccess{
		Target:   expr,
		Field:    inner,
		Location: target.Span().Combine(inner.Location),
	}, nil
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}

	return true
}

func (p *Parser) primary() (Expression, error) {
	tok, span := p.current, p.span

	var expr Expression
	switch tok.Typ {
	case TokenInteger:
		expr = &IntegerLiteral{Value: tok.Int, Location: span}
	case TokenFloat:
		expr = &FloatLiteral{Value: tok.Float, Location: span}
	case TokenString:
		expr = &StringLiteral{Value: tok.Value, Location: span}
	case TokenTrue, TokenFalse:
		expr = &BooleanLiteral{Value: tok.Typ == TokenTrue, Location: span}
	case TokenIdentifier:
		return p.identifierOrCall()
	case TokenOpenParentheses:
		return p.parenthesisedExpression()
	case TokenOpenCurly:
		return p.block()
	case TokenIf:
		return p.ifExpression()
	case TokenLoop:
		return p.loopExpression()
	case TokenWhile:
		return p.whileExpression()
	default:
		return nil, p.unexpected("expression")
	}

	return expr, p.advance()
}

func (p *Parser) identifierOrCall() (Expression, error) {
	id, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenOpenParentheses) {
		return id, nil
	}

	return p.functionCall(id)
}

func (p *Parser) functionCall(id *Identifier) (Expression, error) {
	if _, err := p.consume(TokenOpenParentheses); err != nil {
		return nil, err
	}

	var args []Expression
	for !p.check(TokenCloseParentheses) {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !p.check(TokenComma) {
			break
		}

		if err := p.advance(); err != nil { // Skip the comma
			return nil, err
		}
	}

	end, err := p.consume(TokenCloseParentheses)
	if err != nil {
		return nil, err
	}

	return &FunctionCall{
		Function:  id,
		Arguments: args,
		Location:  id.Location.Combine(end),
	}, nil
}

func (p *Parser) parenthesisedExpression() (Expression, error) {
	start, err := p.consume(TokenOpenParentheses)
	if err != nil {
		return nil, err
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	end, err := p.consume(TokenCloseParentheses)
	if err != nil {
		return nil, err
	}

	widenSpan(expr, start.Combine(end))

	return expr, nil
}

func (p *Parser) block() (*BlockExpression, error) {
	start, err := p.consume(TokenOpenCurly)
	if err != nil {
		return nil, err
	}

	block := &BlockExpression{}
	for !p.check(TokenCloseCurly) {
		if p.atEOF() {
			return nil, p.unexpected(TokenCloseCurly.String())
		}

		stmt, tail, err := p.blockItem(true)
		if err != nil {
			return nil, err
		}

		if tail != nil {
			block.FinalExpression = tail
			break
		}

		block.Statements = append(block.Statements, stmt)
	}

	end, err := p.consume(TokenCloseCurly)
	if err != nil {
		return nil, err
	}

	block.Location = start.Combine(end)
	return block, nil
}

func (p *Parser) ifExpression() (*IfExpression, error) {
	start, err := p.consume(TokenIf)
	if err != nil {
		return nil, err
	}

	condition, err := p.expression()
	if err != nil {
		return nil, err
	}

	then, err := p.block()
	if err != nil {
		return nil, err
	}

	expr := &IfExpression{
		Condition: condition,
		Then:      then,
		Location:  start.Combine(then.Location),
	}

	if !p.check(TokenElse) {
		return expr, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.check(TokenIf) {
		nested, err := p.ifExpression()
		if err != nil {
			return nil, err
		}

		expr.Else = &BlockExpression{
			FinalExpression: nested,
			Location:        nested.Location,
		}
	} else if expr.Else, err = p.block(); err != nil {
		return nil, err
	}

	expr.Location = expr.Location.Combine(expr.Else.Location)
	return expr, nil
}

func (p *Parser) loopExpression() (*LoopExpression, error) {
	start, err := p.consume(TokenLoop)
	if err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &LoopExpression{
		Body:     body,
		Location: start.Combine(body.Location),
	}, nil
}

func (p *Parser) whileExpression() (*WhileExpression, error) {
	start, err := p.consume(TokenWhile)
	if err != nil {
		return nil, err
	}

	condition, err := p.expression()
	if err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &WhileExpression{
		Condition: condition,
		Body:      body,
		Location:  start.Combine(body.Location),
	}, nil
}

// Parse is a shorthand for NewParser(source).Parse().
func Parse(source string, opts ...Option) (*Program, error) {
	program, err := NewParser(source, opts...).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return program, nil
}
