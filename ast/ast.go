// Package ast defines Bloch's abstract syntax tree: tagged variants for
// types, expressions, statements, and declarations, each carrying a
// (line, column) source position. Modeled on the teacher's internal/ast
// package — a Node interface plus capability interfaces (Expression,
// Statement, Type, ClassMember) rather than a class hierarchy, since the
// polymorphic sets here are naturally tagged variants (spec §9).
package ast

import "github.com/bloch-labs/bloch-go/errs"

// Node is implemented by every AST node.
type Node interface {
	Pos() errs.Position
	String() string
}

// Expression is any node that produces a Value at runtime.
type Expression interface {
	Node
	exprNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	stmtNode()
}

// Type is any node describing a static type.
type Type interface {
	Node
	typeNode()
	TypeString() string
}

// ClassMember is any node that can appear in a class body.
type ClassMember interface {
	Node
	classMemberNode()
}

// Program is the root of the AST: the output of Parse and the input to
// the semantic analyser and the runtime evaluator.
type Program struct {
	Imports    []string
	Classes    []*ClassDecl
	Functions  []*FunctionDecl
	Statements []Statement
	// ShotCount is the N from an @shots(N) annotation on main, or 0 if absent.
	ShotCount int
}

func (p *Program) Pos() errs.Position { return errs.Position{Line: 1, Column: 1} }
func (p *Program) String() string     { return "<program>" }
