package rscript

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeVariableDeclaration(t *testing.T) {
	r := NewRuntime()

	_, err := r.Execute("let x = 5;")
	require.NoError(t, err)

	v, err := r.Environment().Get("x")
	require.NoError(t, err)
	assert.Equal(t, Int(5), v)
}

func TestRuntimeExecute(t *testing.T) {
	cases := []struct {
		data   string
		expect Value
	}{
		{"1 + 2 * 3;", Int(7)},
		{"(1 + 2) * 3;", Int(9)},
		{"10 - 4 - 3;", Int(3)},
		{"7 / 2;", Int(3)},
		{"-5 + 2;", Int(-3)},
		{"1.5 * 2.0;", Float(3)},
		{"3.0 / 2.0;", Float(1.5)},
		{`"foo" + "bar";`, String("foobar")},
		{`"a\tb";`, String("a\tb")},
		{"1 < 2;", Bool(true)},
		{"2.5 > 3.5;", Bool(false)},
		{`"a" < "b";`, Bool(true)},
		{"1 == 1 && 2 != 3;", Bool(true)},
		{"false || true;", Bool(true)},
		{"true == false;", Bool(false)},
		{"let x = 2; x * x;", Int(4)},
		{"let x = 1; let x = x + 1; x;", Int(2)},
		{"let mut x = 1; x = x + 10; x;", Int(11)},
		{"let x = 1; { let x = 2; } x;", Int(1)},
		{"let x = { let y = 3; y * 2 }; x;", Int(6)},
		{"if 1 < 2 { 10 } else { 20 }", Int(10)},
		{"if 1 > 2 { 10 } else if 2 > 1 { 30 } else { 20 }", Int(30)},
		{"if false { 1 }", Unit{}},
		{"let mut i = 0; while i < 5 { i = i + 1; } i;", Int(5)},
		{"let mut i = 0; loop { i = i + 1; if i == 3 { break; } } i;", Int(3)},
		{"let mut i = 0; loop { i = i + 1; if i == 4 { break i * 10; } }", Int(40)},
		{"let mut i = 0; while true { i = i + 1; if i > 2 { break; } } i;", Int(3)},
		{"fn add(a: int, b: int) -> int { return a + b; } add(2, 3);", Int(5)},
		{"fn nothing() -> unit { } nothing();", Unit{}},
		{"fn early(x: int) -> int { if x > 0 { return 1; } return 0; } early(5);", Int(1)},
		{"let mut x = 1; if true { x = 2; } -x;", Int(-2)},
		{"{ 1; } - 1;", Int(-1)},
		{"let mut i = 0; loop { i = i + 1; break; } -i;", Int(-1)},
		{"let g = { let k = 4; fn inner() -> int { return k; } inner }; g();", Int(4)},
		{"struct In(int, int); struct Out(int, In); let o = Out(1, In(2, 3)); o.1.1;", Int(3)},
		{"struct In(int, int); struct Out(int, In); let o = Out(1, In(2, 3)); o.1.0 + o.0;", Int(3)},
		{"return 42; 1;", Int(42)},
		{"let x = 5;", Unit{}},
		{"", Unit{}},
	}

	for _, c := range cases {
		r := NewRuntime()

		v, err := r.Execute(c.data)
		require.NoError(t, err, c.data)
		assert.Equal(t, c.expect, v, c.data)
	}
}

func TestRuntimeRecursion(t *testing.T) {
	r := NewRuntime()

	v, err := r.Execute(`
fn fib(n: int) -> int {
	if n < 2 {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}

fib(15);
`)
	require.NoError(t, err)
	assert.Equal(t, Int(610), v)

	v, err = r.Call("fib", Int(10))
	require.NoError(t, err)
	assert.Equal(t, Int(55), v)
}

func TestRuntimeFunctionScoping(t *testing.T) {
	r := NewRuntime()

	_, err := r.Execute(`
let global = 1;
fn peek() -> int { return hidden; }
fn read() -> int { return global; }
`)
	require.NoError(t, err)

	v, err := r.Execute("{ let hidden = 2; read() }")
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	_, err = r.Execute("{ let hidden = 2; peek() }")
	assert.True(t, errors.Is(err, ErrVariableNotFound))

	assert.Equal(t, 1, r.Environment().Depth())
}

func TestRuntimeStructs(t *testing.T) {
	r := NewRuntime()

	v, err := r.Execute(`
struct Point { x: int, y: int }
struct Pair(int, string);
struct Marker;

let p = Point(1, 2);
let q = Pair(3, "three");
p.x + p.y + q.0;
`)
	require.NoError(t, err)
	assert.Equal(t, Int(6), v)

	p, err := r.Environment().Get("p")
	require.NoError(t, err)
	assert.Equal(t, "Point { x: 1, y: 2 }", p.String())

	q, err := r.Environment().Get("q")
	require.NoError(t, err)
	assert.Equal(t, `Pair { 0: 3, 1: "three" }`, q.String())

	v, err = r.Execute("Marker == Marker;")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = r.Execute("Point(1, 2) == p;")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestRuntimePrint(t *testing.T) {
	var out bytes.Buffer
	r := NewRuntime(WithOutput(&out))

	_, err := r.Execute(`
struct P(int);
let mut i = 0;
while i < 3 {
	print("i =", i);
	i = i + 1;
}
print(1.0, true, P(7));
`)
	require.NoError(t, err)
	assert.Equal(t, "i = 0\ni = 1\ni = 2\n1.0 true P { 0: 7 }\n", out.String())
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		data   string
		expect error
	}{
		{"y;", &VariableNotFoundError{}},
		{"let x = 1; x = 2;", &ImmutableAssignmentError{}},
		{"z = 2;", &VariableNotFoundError{}},
		{"1 + 1.0;", &TypeMismatchError{}},
		{`1 + "a";`, &TypeMismatchError{}},
		{"true + false;", &TypeMismatchError{}},
		{"-true;", &TypeMismatchError{}},
		{"1 && true;", &TypeMismatchError{}},
		{"if 1 { 2 }", &TypeMismatchError{}},
		{"while 0 { }", &TypeMismatchError{}},
		{"1 / 0;", &DivisionByZeroError{}},
		{"fn f(a: int) -> int { return a; } f();", &ArityMismatchError{}},
		{"struct P(int); P(1, 2);", &ArityMismatchError{}},
		{"let x = 1; x();", &NotCallableError{}},
		{"undefined();", &VariableNotFoundError{}},
		{"struct P { a: int } let p = P(1); p.b;", &UnknownFieldError{}},
		{"let x = 1; x.a;", &UnknownFieldError{}},
		{"break;", &InvalidControlFlowError{}},
		{"fn f() -> unit { break; } loop { f(); }", &InvalidControlFlowError{}},
		{"while { break; } { }", &InvalidControlFlowError{}},
		{"loop { while { break; } { } }", &InvalidControlFlowError{}},
		{"let g = { fn inner() -> int { return y; } inner }; { let y = 7; g() }", &VariableNotFoundError{}},
		{"struct S; struct S;", &AlreadyDeclaredError{}},
		{`"\q";`, &InvalidStringError{}},
	}

	for _, c := range cases {
		r := NewRuntime()

		_, err := r.Execute(c.data)
		assert.IsType(t, c.expect, err, c.data)
	}
}

func TestRuntimeErrorLocation(t *testing.T) {
	r := NewRuntime()

	_, err := r.Execute("let a = 1;\nmissing + a;")

	var notFound *VariableNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, Span{11, 18}, notFound.Span())
	assert.Equal(t, "VariableNotFound", notFound.Kind())
}

func TestRuntimeShortCircuit(t *testing.T) {
	r := NewRuntime()

	v, err := r.Execute("false && missing;")
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)

	v, err = r.Execute("true || missing;")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestRuntimeIsolation(t *testing.T) {
	r1 := NewRuntime()
	r2 := NewRuntime()

	_, err := r1.Execute("let shared = 1;")
	require.NoError(t, err)

	_, err = r2.Execute("shared;")
	assert.Error(t, err)
	assert.NotEqual(t, r1.ID(), r2.ID())
}

func TestRuntimeLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := NewRuntime(WithLogger(logger))

	_, err := r.Execute("let x = 1;")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), r.ID())
	assert.Contains(t, buf.String(), "executed program")
}

type bogusExpression struct{}

func (bogusExpression) Span() Span      { return Span{3, 4} }
func (bogusExpression) expressionNode() {}

func TestRuntimeUnsupportedExpression(t *testing.T) {
	r := NewRuntime()

	_, err := r.EvaluateExpression(bogusExpression{})
	assert.True(t, errors.Is(err, ErrUnsupported))

	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, Span{3, 4}, unsupported.Span())
}
