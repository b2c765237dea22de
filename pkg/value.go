package rscript

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindUnit
	KindStruct
	KindFunction
	KindStructType
	KindBuiltin
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindInt:        "int",
	KindFloat:      "float",
	KindString:     "string",
	KindBool:       "bool",
	KindUnit:       "unit",
	KindStruct:     "struct",
	KindFunction:   "function",
	KindStructType: "struct type",
	KindBuiltin:    "builtin",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Value is a runtime value. Values are immutable once produced; reassignment replaces the
// binding, never the value.
type Value interface {
	Kind() Kind
	String() string
}

type Int int64
type Float float64
type String string
type Bool bool
type Unit struct{}

type Field struct {
	Name  string
	Value Value
}

type StructInstance struct {
	Name   string
	Fields []Field
}

// Function is a declared function together with the scopes visible at its declaration.
type Function struct {
	Declaration *FunctionDeclaration
	Closure     Closure
}

// StructType describes a declared struct. Tuple fields are named by their index.
type StructType struct {
	Name   string
	Fields []string
	Tuple  bool
}

type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (Int) Kind() Kind             { return KindInt }
func (Float) Kind() Kind           { return KindFloat }
func (String) Kind() Kind          { return KindString }
func (Bool) Kind() Kind            { return KindBool }
func (Unit) Kind() Kind            { return KindUnit }
func (*StructInstance) Kind() Kind { return KindStruct }
func (*Function) Kind() Kind       { return KindFunction }
func (*StructType) Kind() Kind     { return KindStructType }
func (*Builtin) Kind() Kind        { return KindBuiltin }

func (v Int) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v Float) String() string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnI") {
		s += ".0"
	}

	return s
}

func (v String) String() string { return string(v) }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (Unit) String() string     { return "()" }

func (v *StructInstance) String() string {
	var str strings.Builder
	str.WriteString(v.Name)

	if len(v.Fields) == 0 {
		return str.String()
	}

	str.WriteString(" { ")
	for i, f := range v.Fields {
		str.WriteString(f.Name)
		str.WriteString(": ")
		if s, ok := f.Value.(String); ok {
			str.WriteString(strconv.Quote(string(s)))
		} else {
			str.WriteString(f.Value.String())
		}

		if i != len(v.Fields)-1 {
			str.WriteString(", ")
		}
	}
	str.WriteString(" }")

	return str.String()
}

// Field returns the value of the named field.
func (v *StructInstance) Field(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}

	return nil, false
}

func (v *Function) String() string {
	return fmt.Sprintf("fn %s", v.Declaration.Identifier.Name)
}

func (v *StructType) String() string {
	return fmt.Sprintf("struct %s", v.Name)
}

func (v *Builtin) String() string {
	return fmt.Sprintf("builtin %s", v.Name)
}

// Instantiate builds an instance from one value per field, in declaration order.
func (v *StructType) Instantiate(args []Value) *StructInstance {
	instance := &StructInstance{Name: v.Name}
	for i, name := range v.Fields {
		instance.Fields = append(instance.Fields, Field{Name: name, Value: args[i]})
	}

	return instance
}

// Equal reports structural equality. Values of different kinds are never equal.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case *StructInstance:
		b := b.(*StructInstance)
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}

		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Value, b.Fields[i].Value) {
				return false
			}
		}

		return true
	default:
		return a == b
	}
}
