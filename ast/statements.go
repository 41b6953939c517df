package ast

import (
	"strings"

	"github.com/bloch-labs/bloch-go/errs"
)

// Annotation is a compile-time marker `@name` or `@name(arg)` (spec
// GLOSSARY). HasArg is false and Arg is 0 when no argument is given.
type Annotation struct {
	Position errs.Position
	Name     string
	Arg      int
	HasArg   bool
}

// VarDecl is a variable declaration statement.
type VarDecl struct {
	Position    errs.Position
	Name        string
	Type        Type
	Initializer Expression
	Final       bool
	Tracked     bool
	Annotations []Annotation
}

func (s *VarDecl) stmtNode()          {}
func (s *VarDecl) Pos() errs.Position { return s.Position }
func (s *VarDecl) String() string {
	var sb strings.Builder
	for _, a := range s.Annotations {
		sb.WriteString("@" + a.Name + " ")
	}
	if s.Final {
		sb.WriteString("final ")
	}
	sb.WriteString(s.Type.TypeString() + " " + s.Name)
	if s.Initializer != nil {
		sb.WriteString(" = " + s.Initializer.String())
	}
	sb.WriteString(";")
	return sb.String()
}

// BlockStmt is `{ ... }`.
type BlockStmt struct {
	Position   errs.Position
	Statements []Statement
}

func (s *BlockStmt) stmtNode()          {}
func (s *BlockStmt) Pos() errs.Position { return s.Position }
func (s *BlockStmt) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, st := range s.Statements {
		sb.WriteString("  " + st.String() + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ExpressionStmt wraps an expression used for its side effects.
type ExpressionStmt struct {
	Position errs.Position
	Expr     Expression
}

func (s *ExpressionStmt) stmtNode()          {}
func (s *ExpressionStmt) Pos() errs.Position { return s.Position }
func (s *ExpressionStmt) String() string     { return s.Expr.String() + ";" }

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	Position errs.Position
	Value    Expression
}

func (s *ReturnStmt) stmtNode()          {}
func (s *ReturnStmt) Pos() errs.Position { return s.Position }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// IfStmt is `if (cond) then [else else_]`.
type IfStmt struct {
	Position errs.Position
	Cond     Expression
	Then     Statement
	Else     Statement
}

func (s *IfStmt) stmtNode()          {}
func (s *IfStmt) Pos() errs.Position { return s.Position }
func (s *IfStmt) String() string {
	out := "if (" + s.Cond.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// TernaryStmt is `cond ? then : else;` used at statement level.
type TernaryStmt struct {
	Position errs.Position
	Cond     Expression
	Then     Statement
	Else     Statement
}

func (s *TernaryStmt) stmtNode()          {}
func (s *TernaryStmt) Pos() errs.Position { return s.Position }
func (s *TernaryStmt) String() string {
	return s.Cond.String() + " ? " + s.Then.String() + " : " + s.Else.String()
}

// ForStmt is a C-style for loop.
type ForStmt struct {
	Position  errs.Position
	Init      Statement
	Cond      Expression
	Increment Statement
	Body      Statement
}

func (s *ForStmt) stmtNode()          {}
func (s *ForStmt) Pos() errs.Position { return s.Position }
func (s *ForStmt) String() string     { return "for (...) " + s.Body.String() }

// WhileStmt is a while loop.
type WhileStmt struct {
	Position errs.Position
	Cond     Expression
	Body     Statement
}

func (s *WhileStmt) stmtNode()          {}
func (s *WhileStmt) Pos() errs.Position { return s.Position }
func (s *WhileStmt) String() string     { return "while (" + s.Cond.String() + ") " + s.Body.String() }

// EchoStmt is `echo(expr);`.
type EchoStmt struct {
	Position errs.Position
	Value    Expression
}

func (s *EchoStmt) stmtNode()          {}
func (s *EchoStmt) Pos() errs.Position { return s.Position }
func (s *EchoStmt) String() string     { return "echo(" + s.Value.String() + ");" }

// ResetStmt is `reset q;`.
type ResetStmt struct {
	Position errs.Position
	Target   Expression
}

func (s *ResetStmt) stmtNode()          {}
func (s *ResetStmt) Pos() errs.Position { return s.Position }
func (s *ResetStmt) String() string     { return "reset " + s.Target.String() + ";" }

// MeasureStmt is `measure q;` used as a statement.
type MeasureStmt struct {
	Position errs.Position
	Target   Expression
}

func (s *MeasureStmt) stmtNode()          {}
func (s *MeasureStmt) Pos() errs.Position { return s.Position }
func (s *MeasureStmt) String() string     { return "measure " + s.Target.String() + ";" }

// DestroyStmt is `destroy e;`.
type DestroyStmt struct {
	Position errs.Position
	Target   Expression
}

func (s *DestroyStmt) stmtNode()          {}
func (s *DestroyStmt) Pos() errs.Position { return s.Position }
func (s *DestroyStmt) String() string     { return "destroy " + s.Target.String() + ";" }

// AssignStmt is `name = value;` at statement level (member/index targets
// are represented via AssignExpr wrapped in an ExpressionStmt instead).
type AssignStmt struct {
	Position errs.Position
	Name     string
	Value    Expression
}

func (s *AssignStmt) stmtNode()          {}
func (s *AssignStmt) Pos() errs.Position { return s.Position }
func (s *AssignStmt) String() string     { return s.Name + " = " + s.Value.String() + ";" }

// MeasureExpr is `measure q` used as an expression, yielding a bit.
type MeasureExpr struct {
	Position errs.Position
	Target   Expression
}

func (e *MeasureExpr) exprNode()          {}
func (e *MeasureExpr) Pos() errs.Position { return e.Position }
func (e *MeasureExpr) String() string     { return "measure " + e.Target.String() }
