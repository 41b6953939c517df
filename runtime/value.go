// Package runtime is Bloch's tree-walking evaluator: a recursive
// visitor over the checked AST that maintains a call-stack of lexical
// Environments, a heap of Objects, and a qasm.Simulator backing all
// qubit operations (spec §4.3). Grounded on the teacher's
// internal/interp tree-walker, generalized from DWScript's object model
// to Bloch's class/qubit/tracked-variable semantics.
package runtime

import (
	"fmt"

	"github.com/bloch-labs/bloch-go/ast"
)

// Kind tags a Value's active representation.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindLong
	KindFloat
	KindBit
	KindBoolean
	KindString
	KindChar
	KindQubit
	KindObject
	KindArray
	KindNull
)

// Value is Bloch's tagged-union runtime value (spec §3.3). Object and
// Array values carry reference semantics (the same Go slice/pointer is
// shared across copies), matching spec §4.3.3's aliasing rules.
type Value struct {
	Kind   Kind
	Int    int64
	Float  float64
	Bool   bool
	Char   rune
	Str    string
	Qubit  int
	Obj    *Object
	Arr    []Value
}

func VoidValue() Value              { return Value{Kind: KindVoid} }
func NullValue() Value              { return Value{Kind: KindNull} }
func IntValue(n int64) Value        { return Value{Kind: KindInt, Int: n} }
func LongValue(n int64) Value       { return Value{Kind: KindLong, Int: n} }
func FloatValue(f float64) Value    { return Value{Kind: KindFloat, Float: f} }
func BitValue(b int) Value          { return Value{Kind: KindBit, Int: int64(b)} }
func BoolValue(b bool) Value        { return Value{Kind: KindBoolean, Bool: b} }
func StringValue(s string) Value    { return Value{Kind: KindString, Str: s} }
func CharValue(r rune) Value        { return Value{Kind: KindChar, Char: r} }
func QubitValue(idx int) Value      { return Value{Kind: KindQubit, Qubit: idx} }
func ObjectValue(o *Object) Value   { return Value{Kind: KindObject, Obj: o} }
func ArrayValue(elems []Value) Value { return Value{Kind: KindArray, Arr: elems} }

// AsNumeric returns the value as a float64 view for arithmetic promotion
// (the evaluator re-wraps the result in the promoted Kind afterward).
func (v Value) AsNumeric() float64 {
	switch v.Kind {
	case KindFloat:
		return v.Float
	default:
		return float64(v.Int)
	}
}

func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindBit:
		return v.Int != 0
	default:
		return false
	}
}

// Printable renders v the way `echo` does (spec §4.3.10): floats always
// show a decimal point, booleans/bits print their literal token, objects
// print their class name, arrays print bracketed comma-separated
// elements.
func (v Value) Printable() string {
	switch v.Kind {
	case KindVoid:
		return ""
	case KindNull:
		return "null"
	case KindInt, KindLong:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return ast.FormatFloat(v.Float)
	case KindBit:
		return fmt.Sprintf("%d", v.Int)
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	case KindChar:
		return string(v.Char)
	case KindQubit:
		return fmt.Sprintf("qubit#%d", v.Qubit)
	case KindObject:
		if v.Obj == nil || v.Obj.freed {
			return "null"
		}
		return "<" + v.Obj.Class.Name + " object>"
	case KindArray:
		if len(v.Arr) == 0 {
			return "{ }"
		}
		s := "{ "
		for i, e := range v.Arr {
			if i > 0 {
				s += ", "
			}
			s += e.Printable()
		}
		return s + " }"
	default:
		return ""
	}
}
