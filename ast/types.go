package ast

import (
	"strings"

	"github.com/bloch-labs/bloch-go/errs"
)

// Primitive names one of Bloch's built-in scalar kinds (spec §3.1).
type Primitive int

const (
	IntKind Primitive = iota
	LongKind
	FloatKind
	BitKind
	BooleanKind
	StringKind
	CharKind
	QubitKind
	VoidKind
)

func (p Primitive) String() string {
	switch p {
	case IntKind:
		return "int"
	case LongKind:
		return "long"
	case FloatKind:
		return "float"
	case BitKind:
		return "bit"
	case BooleanKind:
		return "boolean"
	case StringKind:
		return "string"
	case CharKind:
		return "char"
	case QubitKind:
		return "qubit"
	default:
		return "void"
	}
}

// PrimitiveType is a builtin scalar type.
type PrimitiveType struct {
	Position errs.Position
	Kind     Primitive
}

func (t *PrimitiveType) typeNode()          {}
func (t *PrimitiveType) Pos() errs.Position { return t.Position }
func (t *PrimitiveType) String() string     { return t.Kind.String() }
func (t *PrimitiveType) TypeString() string { return t.Kind.String() }

// VoidType is the absence of a value; only legal as a function/method
// return type, never as a variable/parameter/field/array-element type.
type VoidType struct {
	Position errs.Position
}

func (t *VoidType) typeNode()          {}
func (t *VoidType) Pos() errs.Position { return t.Position }
func (t *VoidType) String() string     { return "void" }
func (t *VoidType) TypeString() string { return "void" }

// NamedType references a user-defined (or generic-parameter) class by a
// qualified-name path plus optional type arguments, e.g. Box<int>.
type NamedType struct {
	Position      errs.Position
	QualifiedName []string
	TypeArguments []Type
}

func (t *NamedType) typeNode()          {}
func (t *NamedType) Pos() errs.Position { return t.Position }
func (t *NamedType) Name() string       { return strings.Join(t.QualifiedName, ".") }
func (t *NamedType) String() string     { return t.TypeString() }
func (t *NamedType) TypeString() string {
	s := t.Name()
	if len(t.TypeArguments) > 0 {
		parts := make([]string, len(t.TypeArguments))
		for i, a := range t.TypeArguments {
			parts[i] = a.TypeString()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	return s
}

// ArraySizeKind distinguishes the three ways an array type may carry a size.
type ArraySizeKind int

const (
	// ArraySizeNone means no size was specified.
	ArraySizeNone ArraySizeKind = iota
	// ArraySizeLiteral means Size holds a parsed non-negative int literal.
	ArraySizeLiteral
	// ArraySizeExpr means SizeExpr must be constant-folded by the
	// semantic analyser (spec §4.2.2); once resolved, Size and
	// SizeKind are back-patched to ArraySizeLiteral.
	ArraySizeExpr
)

// ArrayType is `ElementType[size]`. Invariant: ElementType is never VoidType.
type ArrayType struct {
	Position    errs.Position
	ElementType Type
	SizeKind    ArraySizeKind
	Size        int
	SizeExpr    Expression
}

func (t *ArrayType) typeNode()          {}
func (t *ArrayType) Pos() errs.Position { return t.Position }
func (t *ArrayType) String() string     { return t.TypeString() }
func (t *ArrayType) TypeString() string {
	switch t.SizeKind {
	case ArraySizeLiteral:
		return t.ElementType.TypeString() + "[" + itoa(t.Size) + "]"
	case ArraySizeExpr:
		return t.ElementType.TypeString() + "[" + t.SizeExpr.String() + "]"
	default:
		return t.ElementType.TypeString() + "[]"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
