package rscript

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

const eof rune = -1

type stateFunc func(l *Lexer) stateFunc

// Lexer turns source text into a lazy sequence of spanned tokens. Tokens are produced on
// demand by Next; Reset restarts the sequence from the beginning of the source.
type Lexer struct {
	source string
	start  int
	pos    int
	state  stateFunc
	queue  []SpannedToken
	err    *LexError
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		source: source,
		state:  defaultState,
	}
}

func (l *Lexer) Source() string {
	return l.source
}

func (l *Lexer) Reset() {
	l.start = 0
	l.pos = 0
	l.state = defaultState
	l.queue = nil
	l.err = nil
}

// Next returns the next token and its span. Once the input is exhausted it keeps returning
// an EOF token spanning the end of the source. A lexical error is sticky.
func (l *Lexer) Next() (Token, Span, error) {
	for len(l.queue) == 0 {
		if l.err != nil {
			return Token{Typ: TokenError}, l.err.Location, l.err
		}

		if l.state == nil {
			end := len(l.source)
			return Token{Typ: TokenEOF}, Span{end, end}, nil
		}

		l.state = l.state(l)
	}

	next := l.queue[0]
	l.queue = l.queue[1:]

	return next.Token, next.Span, nil
}

// All drains the lexer, excluding the trailing EOF token.
func (l *Lexer) All() ([]SpannedToken, error) {
	var toks []SpannedToken
	for {
		tok, span, err := l.Next()
		if err != nil {
			return nil, err
		}

		if tok.Typ == TokenEOF {
			return toks, nil
		}

		toks = append(toks, SpannedToken{tok, span})
	}
}

func defaultState(l *Lexer) stateFunc {
	for {
		switch r := l.peek(); {
		case r == eof:
			l.emit(TokenEOF)
			return nil
		case isWhitespace(r):
			l.next()
			l.ignore()
		case r == '/' && l.peekAt(1) == '/':
			return lineCommentState
		case isDigit(r):
			return numberState
		case r == '"':
			return stringState
		case isIdentifierStart(r):
			return identifierState
		default:
			return operatorState
		}
	}
}

func lineCommentState(l *Lexer) stateFunc {
	for r := l.peek(); r != '\n' && r != eof; r = l.peek() {
		l.next()
	}

	l.ignore()
	return defaultState
}

func numberState(l *Lexer) stateFunc {
	l.acceptRun(isDigit)

	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.next() // Skip the period
		l.acceptRun(isDigit)

		v, err := strconv.ParseFloat(l.current(), 64)
		if err != nil {
			return l.errorf(err, "malformed float literal %q", l.current())
		}

		l.queueToken(Token{Typ: TokenFloat, Value: l.current(), Float: v})
		return defaultState
	}

	v, err := strconv.ParseInt(l.current(), 10, 64)
	if err != nil {
		return l.errorf(err, "malformed integer literal %q", l.current())
	}

	l.queueToken(Token{Typ: TokenInteger, Value: l.current(), Int: v})
	return defaultState
}

// stringState keeps the literal verbatim, quotes and escape markers included. Escapes are
// decoded by the consumer.
func stringState(l *Lexer) stateFunc {
	l.next() // Skip the leading double-quote

	for {
		switch r := l.next(); r {
		case eof:
			return l.errorf(nil, "unterminated string literal")
		case '\\':
			if l.next() == eof {
				return l.errorf(nil, "unterminated string literal")
			}
		case '"':
			l.emit(TokenString)
			return defaultState
		}
	}
}

func identifierState(l *Lexer) stateFunc {
	l.acceptRun(isIdentifierPart)

	if t, ok := keywordTable[l.current()]; ok {
		l.emit(t)
		return defaultState
	}

	l.emit(TokenIdentifier)
	return defaultState
}

func operatorState(l *Lexer) stateFunc {
	r := l.next()

	// Some operators can be two runes
	if tok, ok := operatorTable[string(r)+string(l.peek())]; ok {
		l.next()
		l.emit(tok)
		return defaultState
	}

	if tok, ok := operatorTable[string(r)]; ok {
		l.emit(tok)
		return defaultState
	}

	return l.errorf(nil, "invalid symbol '%c'", r)
}

func (l *Lexer) errorf(cause error, format string, args ...interface{}) stateFunc {
	l.err = &LexError{
		Location: Span{l.start, l.pos},
		Message:  fmt.Sprintf(format, args...),
		Err:      cause,
	}

	return nil
}

func (l *Lexer) emit(t TokenType) {
	l.queueToken(Token{Typ: t, Value: l.current()})
}

func (l *Lexer) queueToken(tok Token) {
	l.queue = append(l.queue, SpannedToken{
		Token: tok,
		Span:  Span{l.start, l.pos},
	})

	l.start = l.pos
}

func (l *Lexer) ignore() {
	l.start = l.pos
}

func (l *Lexer) current() string {
	return l.source[l.start:l.pos]
}

func (l *Lexer) acceptRun(valid func(rune) bool) {
	for valid(l.peek()) {
		l.next()
	}
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt looks n runes ahead without consuming anything.
func (l *Lexer) peekAt(n int) rune {
	pos := l.pos
	for i := 0; ; i++ {
		if pos >= len(l.source) {
			return eof
		}

		r, width := utf8.DecodeRuneInString(l.source[pos:])
		if i == n {
			return r
		}

		pos += width
	}
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.source) {
		return eof
	}

	r, width := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += width

	return r
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
