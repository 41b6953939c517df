package ast

import (
	"strings"

	"github.com/bloch-labs/bloch-go/errs"
)

// IntegerLiteral is a decimal int literal.
type IntegerLiteral struct {
	Position errs.Position
	Value    int64
}

func (e *IntegerLiteral) exprNode()          {}
func (e *IntegerLiteral) Pos() errs.Position { return e.Position }
func (e *IntegerLiteral) String() string     { return itoa(int(e.Value)) }

// LongLiteral is a decimal long literal (suffixed `L`).
type LongLiteral struct {
	Position errs.Position
	Value    int64
}

func (e *LongLiteral) exprNode()          {}
func (e *LongLiteral) Pos() errs.Position { return e.Position }
func (e *LongLiteral) String() string     { return itoa(int(e.Value)) + "L" }

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Position errs.Position
	Value    float64
}

func (e *FloatLiteral) exprNode()          {}
func (e *FloatLiteral) Pos() errs.Position { return e.Position }
func (e *FloatLiteral) String() string     { return formatFloat(e.Value) }

// BitLiteral is a single-bit literal (0 or 1).
type BitLiteral struct {
	Position errs.Position
	Value    int
}

func (e *BitLiteral) exprNode()          {}
func (e *BitLiteral) Pos() errs.Position { return e.Position }
func (e *BitLiteral) String() string     { return itoa(e.Value) }

// CharLiteral is a single-character literal.
type CharLiteral struct {
	Position errs.Position
	Value    rune
}

func (e *CharLiteral) exprNode()          {}
func (e *CharLiteral) Pos() errs.Position { return e.Position }
func (e *CharLiteral) String() string     { return "'" + string(e.Value) + "'" }

// StringLiteral is a string literal.
type StringLiteral struct {
	Position errs.Position
	Value    string
}

func (e *StringLiteral) exprNode()          {}
func (e *StringLiteral) Pos() errs.Position { return e.Position }
func (e *StringLiteral) String() string     { return "\"" + e.Value + "\"" }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Position errs.Position
	Value    bool
}

func (e *BooleanLiteral) exprNode()          {}
func (e *BooleanLiteral) Pos() errs.Position { return e.Position }
func (e *BooleanLiteral) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

// NullLiteral is the `null` literal.
type NullLiteral struct {
	Position errs.Position
}

func (e *NullLiteral) exprNode()          {}
func (e *NullLiteral) Pos() errs.Position { return e.Position }
func (e *NullLiteral) String() string     { return "null" }

// Identifier is a variable/function/class reference.
type Identifier struct {
	Position errs.Position
	Name     string
}

func (e *Identifier) exprNode()          {}
func (e *Identifier) Pos() errs.Position { return e.Position }
func (e *Identifier) String() string     { return e.Name }

// ThisExpr is `this`.
type ThisExpr struct {
	Position errs.Position
}

func (e *ThisExpr) exprNode()          {}
func (e *ThisExpr) Pos() errs.Position { return e.Position }
func (e *ThisExpr) String() string     { return "this" }

// SuperExpr is `super`.
type SuperExpr struct {
	Position errs.Position
}

func (e *SuperExpr) exprNode()          {}
func (e *SuperExpr) Pos() errs.Position { return e.Position }
func (e *SuperExpr) String() string     { return "super" }

// ParenExpr is a parenthesised expression, kept distinct from its inner
// expression so printing/round-tripping preserves the parentheses.
type ParenExpr struct {
	Position errs.Position
	Inner    Expression
}

func (e *ParenExpr) exprNode()          {}
func (e *ParenExpr) Pos() errs.Position { return e.Position }
func (e *ParenExpr) String() string     { return "(" + e.Inner.String() + ")" }

// PrefixExpr is a prefix unary operator: `-`, `!`, `~`.
type PrefixExpr struct {
	Position errs.Position
	Operator string
	Operand  Expression
}

func (e *PrefixExpr) exprNode()          {}
func (e *PrefixExpr) Pos() errs.Position { return e.Position }
func (e *PrefixExpr) String() string     { return e.Operator + e.Operand.String() }

// BinaryExpr is an infix binary operator expression.
type BinaryExpr struct {
	Position errs.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (e *BinaryExpr) exprNode()          {}
func (e *BinaryExpr) Pos() errs.Position { return e.Position }
func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// PostfixExpr is `++`/`--` applied to an lvalue expression.
type PostfixExpr struct {
	Position errs.Position
	Operator string
	Operand  Expression
}

func (e *PostfixExpr) exprNode()          {}
func (e *PostfixExpr) Pos() errs.Position { return e.Position }
func (e *PostfixExpr) String() string     { return e.Operand.String() + e.Operator }

// CastExpr converts Operand to TargetType.
type CastExpr struct {
	Position   errs.Position
	TargetType Type
	Operand    Expression
}

func (e *CastExpr) exprNode()          {}
func (e *CastExpr) Pos() errs.Position { return e.Position }
func (e *CastExpr) String() string {
	return "(" + e.TargetType.TypeString() + ")" + e.Operand.String()
}

// CallExpr invokes Callee with Args; Callee may be an Identifier (free
// function/built-in gate) or a MemberExpr (method call).
type CallExpr struct {
	Position errs.Position
	Callee   Expression
	Args     []Expression
}

func (e *CallExpr) exprNode()          {}
func (e *CallExpr) Pos() errs.Position { return e.Position }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// MemberExpr is `Object.Member`.
type MemberExpr struct {
	Position errs.Position
	Object   Expression
	Member   string
}

func (e *MemberExpr) exprNode()          {}
func (e *MemberExpr) Pos() errs.Position { return e.Position }
func (e *MemberExpr) String() string     { return e.Object.String() + "." + e.Member }

// IndexExpr is `Collection[Index]`.
type IndexExpr struct {
	Position   errs.Position
	Collection Expression
	Index      Expression
}

func (e *IndexExpr) exprNode()          {}
func (e *IndexExpr) Pos() errs.Position { return e.Position }
func (e *IndexExpr) String() string {
	return e.Collection.String() + "[" + e.Index.String() + "]"
}

// NewExpr is `new ClassName<TypeArgs>(Args)`.
type NewExpr struct {
	Position  errs.Position
	ClassType *NamedType
	Args      []Expression
}

func (e *NewExpr) exprNode()          {}
func (e *NewExpr) Pos() errs.Position { return e.Position }
func (e *NewExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return "new " + e.ClassType.TypeString() + "(" + strings.Join(parts, ", ") + ")"
}

// ArrayLiteral is `{ e1, e2, ... }`.
type ArrayLiteral struct {
	Position errs.Position
	Elements []Expression
}

func (e *ArrayLiteral) exprNode()          {}
func (e *ArrayLiteral) Pos() errs.Position { return e.Position }
func (e *ArrayLiteral) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// AssignExpr is an explicit assignment expression `target = value`; Target
// is a variable Identifier, a MemberExpr, or an IndexExpr.
type AssignExpr struct {
	Position errs.Position
	Target   Expression
	Value    Expression
}

func (e *AssignExpr) exprNode()          {}
func (e *AssignExpr) Pos() errs.Position { return e.Position }
func (e *AssignExpr) String() string     { return e.Target.String() + " = " + e.Value.String() }

// TernaryExpr is `cond ? then : else` used as an expression.
type TernaryExpr struct {
	Position errs.Position
	Cond     Expression
	Then     Expression
	Else     Expression
}

func (e *TernaryExpr) exprNode()          {}
func (e *TernaryExpr) Pos() errs.Position { return e.Position }
func (e *TernaryExpr) String() string {
	return e.Cond.String() + " ? " + e.Then.String() + " : " + e.Else.String()
}

func formatFloat(f float64) string {
	s := trimFloat(f)
	return s
}

// trimFloat renders a float the way the runtime's printable form does
// (spec §4.3.10): fixed ".0" for whole values, default format otherwise.
func trimFloat(f float64) string {
	return floatString(f)
}
