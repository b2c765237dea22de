package rscript

import "fmt"

type TokenType uint64

const (
	TokenError TokenType = iota
	TokenEOF

	// Keywords
	TokenTrue
	TokenFalse
	TokenLet
	TokenMut
	TokenTypeKeyword
	TokenStruct
	TokenFn
	TokenWhile
	TokenLoop
	TokenFor
	TokenIf
	TokenElse
	TokenReturn
	TokenBreak

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenAssign
	TokenEquals
	TokenNotEquals
	TokenLessThan
	TokenGreaterThan
	TokenAnd
	TokenOr

	// Delimiters
	TokenOpenParentheses
	TokenCloseParentheses
	TokenOpenCurly
	TokenCloseCurly
	TokenOpenBracket
	TokenCloseBracket
	TokenSemicolon
	TokenColon
	TokenComma
	TokenPeriod
	TokenArrow

	TokenIdentifier
	TokenInteger
	TokenFloat
	TokenString
)

var keywordTable = map[string]TokenType{
	"true":   TokenTrue,
	"false":  TokenFalse,
	"let":    TokenLet,
	"mut":    TokenMut,
	"type":   TokenTypeKeyword,
	"struct": TokenStruct,
	"fn":     TokenFn,
	"while":  TokenWhile,
	"loop":   TokenLoop,
	"for":    TokenFor,
	"if":     TokenIf,
	"else":   TokenElse,
	"return": TokenReturn,
	"break":  TokenBreak,
}

var operatorTable = map[string]TokenType{
	"+":  TokenPlus,
	"-":  TokenMinus,
	"*":  TokenStar,
	"/":  TokenSlash,
	"=":  TokenAssign,
	"==": TokenEquals,
	"!=": TokenNotEquals,
	"<":  TokenLessThan,
	">":  TokenGreaterThan,
	"&&": TokenAnd,
	"||": TokenOr,
	"(":  TokenOpenParentheses,
	")":  TokenCloseParentheses,
	"{":  TokenOpenCurly,
	"}":  TokenCloseCurly,
	"[":  TokenOpenBracket,
	"]":  TokenCloseBracket,
	";":  TokenSemicolon,
	":":  TokenColon,
	",":  TokenComma,
	".":  TokenPeriod,
	"->": TokenArrow,
}

var tokenNames = map[TokenType]string{
	TokenError:      "error",
	TokenEOF:        "end of input",
	TokenIdentifier: "identifier",
	TokenInteger:    "integer literal",
	TokenFloat:      "float literal",
	TokenString:     "string literal",
}

func init() {
	for text, typ := range keywordTable {
		tokenNames[typ] = "`" + text + "`"
	}

	for text, typ := range operatorTable {
		tokenNames[typ] = "`" + text + "`"
	}
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", uint64(t))
}

func (t TokenType) IsKeyword() bool {
	return TokenTrue <= t && t <= TokenBreak
}

// Token is a classified lexeme. Value holds the source text; Int and Float hold the parsed
// payload of numeric literals. Tokens never carry their own span.
type Token struct {
	Typ   TokenType
	Value string
	Int   int64
	Float float64
}

func (t Token) String() string {
	switch t.Typ {
	case TokenIdentifier, TokenInteger, TokenFloat, TokenString:
		return fmt.Sprintf("%s %s", t.Typ, t.Value)
	default:
		return t.Typ.String()
	}
}

type SpannedToken struct {
	Token Token
	Span  Span
}
