// Package parser implements Bloch's Pratt-style recursive-descent parser
// (spec §4.1): it consumes a finite, forward-only token stream and
// produces a *ast.Program, failing fast on the first syntactic violation.
// Modeled on the teacher's internal/parser package: a cursor over a token
// slice, a Pratt loop for expressions, and dedicated per-construct
// recursive-descent helpers for declarations and statements.
package parser

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/lexer"
)

// Parser holds cursor state over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
	// overflow holds statements produced by a multi-declaration
	// (`qubit a, b, c;`) staged for appending to the enclosing block in
	// source order (spec §4.1 "Notable parse-time policies").
	overflow []ast.Statement
}

// Parse parses tokens (whose last element must be an EOF token) into a
// Program, or returns a *errs.BlochError on the first syntax violation.
func Parse(tokens []lexer.Token) (prog *ast.Program, err *errs.BlochError) {
	defer errs.Recover(&err)
	p := &Parser{tokens: tokens}
	prog = p.parseProgram()
	return prog, nil
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) pos_() errs.Position {
	t := p.cur()
	return errs.Position{Line: t.Line, Column: t.Column}
}

func (p *Parser) fail(format string, args ...interface{}) {
	errs.Panic(errs.Parse, p.pos_(), format, args...)
}

func (p *Parser) expect(k lexer.Kind, what string) lexer.Token {
	if !p.check(k) {
		p.fail("expected %s, got %q", what, p.cur().Text)
	}
	return p.advance()
}

// drainOverflow returns and clears queued multi-declaration statements.
func (p *Parser) drainOverflow() []ast.Statement {
	out := p.overflow
	p.overflow = nil
	return out
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.check(lexer.EOF) {
		switch {
		case p.check(lexer.KwImport):
			p.advance()
			prog.Imports = append(prog.Imports, p.parseQualifiedName())
			p.expect(lexer.Semicolon, "';'")
		case p.startsClass():
			prog.Classes = append(prog.Classes, p.parseClassDecl())
		case p.startsFunction():
			fn := p.parseFunctionDecl()
			if fn.Name == "main" && fn.HasShots {
				prog.ShotCount = fn.ShotCount
			}
			prog.Functions = append(prog.Functions, fn)
		default:
			stmt := p.parseStatement()
			prog.Statements = append(prog.Statements, stmt)
			prog.Statements = append(prog.Statements, p.drainOverflow()...)
		}
	}
	return prog
}

func (p *Parser) parseQualifiedName() string {
	name := p.expect(lexer.Identifier, "identifier").Text
	for p.match(lexer.Dot) {
		name += "." + p.expect(lexer.Identifier, "identifier").Text
	}
	return name
}

// startsClass reports whether the upcoming tokens begin a class
// declaration, optionally preceded by `static`/`abstract` modifiers in
// any order (spec §4.1).
func (p *Parser) startsClass() bool {
	i := 0
	for {
		k := p.peekAt(i).Kind
		if k == lexer.KwStatic || k == lexer.KwAbstract {
			i++
			continue
		}
		return k == lexer.KwClass
	}
}

// startsFunction reports whether the upcoming tokens begin a top-level
// function declaration, optionally preceded by @quantum/@shots(N).
func (p *Parser) startsFunction() bool {
	i := 0
	for p.peekAt(i).Kind == lexer.At {
		// @name or @name(arg)
		i++
		if p.peekAt(i).Kind != lexer.Identifier &&
			p.peekAt(i).Kind != lexer.KwQuantum && p.peekAt(i).Kind != lexer.KwShots {
			return false
		}
		i++
		if p.peekAt(i).Kind == lexer.LParen {
			i++
			for p.peekAt(i).Kind != lexer.RParen && p.peekAt(i).Kind != lexer.EOF {
				i++
			}
			i++ // consume ')'
		}
	}
	return p.peekAt(i).Kind == lexer.KwFunction
}
