package parser

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case lexer.LBrace:
		return p.parseBlock()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwEcho:
		return p.parseEcho()
	case lexer.KwReset:
		return p.parseReset()
	case lexer.KwMeasure:
		return p.parseMeasureStmt()
	case lexer.KwDestroy:
		return p.parseDestroy()
	case lexer.At, lexer.KwFinal:
		return p.parseVarDecl()
	default:
		if p.looksLikeVarDeclStart() {
			return p.parseVarDecl()
		}
		return p.parseSimpleOrTernaryStmt()
	}
}

// looksLikeVarDeclStart reports whether the cursor begins a type followed
// by an identifier (the signature of a variable declaration), without
// consuming tokens permanently.
func (p *Parser) looksLikeVarDeclStart() bool {
	if !p.looksLikeTypeStart() {
		return false
	}
	save := p.pos
	defer func() { p.pos = save; recover() }()
	p.parseType()
	ok := p.check(lexer.Identifier)
	return ok
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.pos_()
	p.expect(lexer.LBrace, "'{'")
	b := &ast.BlockStmt{Position: pos}
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		b.Statements = append(b.Statements, p.parseStatement())
		b.Statements = append(b.Statements, p.drainOverflow()...)
	}
	p.expect(lexer.RBrace, "'}'")
	return b
}

func (p *Parser) parseReturn() ast.Statement {
	pos := p.pos_()
	p.advance()
	var val ast.Expression
	if !p.check(lexer.Semicolon) {
		val = p.ParseExpr()
	}
	p.expect(lexer.Semicolon, "';'")
	return &ast.ReturnStmt{Position: pos, Value: val}
}

func (p *Parser) parseIf() ast.Statement {
	pos := p.pos_()
	p.advance()
	p.expect(lexer.LParen, "'('")
	cond := p.ParseExpr()
	p.expect(lexer.RParen, "')'")
	then := p.parseStatement()
	var els ast.Statement
	if p.match(lexer.KwElse) {
		els = p.parseStatement()
	}
	return &ast.IfStmt{Position: pos, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFor() ast.Statement {
	pos := p.pos_()
	p.advance()
	p.expect(lexer.LParen, "'('")
	var init ast.Statement
	if !p.check(lexer.Semicolon) {
		init = p.parseStatement()
	} else {
		p.advance()
	}
	var cond ast.Expression
	if !p.check(lexer.Semicolon) {
		cond = p.ParseExpr()
	}
	p.expect(lexer.Semicolon, "';'")
	var incr ast.Statement
	if !p.check(lexer.RParen) {
		incr = p.parseSimpleOrTernaryStmtNoSemi()
	}
	p.expect(lexer.RParen, "')'")
	body := p.parseStatement()
	return &ast.ForStmt{Position: pos, Init: init, Cond: cond, Increment: incr, Body: body}
}

func (p *Parser) parseWhile() ast.Statement {
	pos := p.pos_()
	p.advance()
	p.expect(lexer.LParen, "'('")
	cond := p.ParseExpr()
	p.expect(lexer.RParen, "')'")
	body := p.parseStatement()
	return &ast.WhileStmt{Position: pos, Cond: cond, Body: body}
}

func (p *Parser) parseEcho() ast.Statement {
	pos := p.pos_()
	p.advance()
	p.expect(lexer.LParen, "'('")
	val := p.ParseExpr()
	p.expect(lexer.RParen, "')'")
	p.expect(lexer.Semicolon, "';'")
	return &ast.EchoStmt{Position: pos, Value: val}
}

func (p *Parser) parseReset() ast.Statement {
	pos := p.pos_()
	p.advance()
	target := p.parsePostfix()
	p.expect(lexer.Semicolon, "';'")
	return &ast.ResetStmt{Position: pos, Target: target}
}

func (p *Parser) parseMeasureStmt() ast.Statement {
	pos := p.pos_()
	p.advance()
	target := p.parsePostfix()
	p.expect(lexer.Semicolon, "';'")
	return &ast.MeasureStmt{Position: pos, Target: target}
}

func (p *Parser) parseDestroy() ast.Statement {
	pos := p.pos_()
	p.advance()
	target := p.ParseExpr()
	p.expect(lexer.Semicolon, "';'")
	return &ast.DestroyStmt{Position: pos, Target: target}
}

// parseSimpleOrTernaryStmt parses either an expression statement, an
// assignment statement, or a statement-level ternary (spec §3.1:
// "ternary statement (`cond ? then : else` at statement level)"),
// consuming the trailing ';'.
func (p *Parser) parseSimpleOrTernaryStmt() ast.Statement {
	s := p.parseSimpleOrTernaryStmtNoSemi()
	p.expect(lexer.Semicolon, "';'")
	return s
}

func (p *Parser) parseSimpleOrTernaryStmtNoSemi() ast.Statement {
	pos := p.pos_()
	cond := p.parseExpression(precOr)
	switch {
	case p.check(lexer.Question):
		p.advance()
		then := p.parseStatement()
		p.expect(lexer.Colon, "':'")
		els := p.parseStatement()
		return &ast.TernaryStmt{Position: pos, Cond: cond, Then: then, Else: els}
	case p.check(lexer.Assign):
		p.advance()
		if !isLValue(cond) {
			p.fail("invalid assignment target")
		}
		val := p.parseAssignment()
		return &ast.ExpressionStmt{Position: pos, Expr: &ast.AssignExpr{Position: pos, Target: cond, Value: val}}
	default:
		return &ast.ExpressionStmt{Position: pos, Expr: cond}
	}
}

// parseAnnotations consumes a run of `@name` / `@name(arg)` annotations.
func (p *Parser) parseAnnotations() []ast.Annotation {
	var out []ast.Annotation
	for p.check(lexer.At) {
		pos := p.pos_()
		p.advance()
		name := p.advance().Text // identifier or quantum/shots/tracked keyword text
		ann := ast.Annotation{Position: pos, Name: name}
		if p.match(lexer.LParen) {
			lit := p.expect(lexer.IntegerLiteral, "integer literal")
			n := parseIntText(lit.Text)
			if n <= 0 {
				p.fail("@%s argument must be a positive integer literal", name)
			}
			ann.HasArg = true
			ann.Arg = n
			p.expect(lexer.RParen, "')'")
		}
		out = append(out, ann)
	}
	return out
}

func (p *Parser) parseVarDecl() ast.Statement {
	pos := p.pos_()
	annotations := p.parseAnnotations()
	tracked := false
	for _, a := range annotations {
		if a.Name != "tracked" {
			p.fail("invalid annotation '@%s' on a variable declaration", a.Name)
		}
		tracked = true
	}
	final := p.match(lexer.KwFinal)
	typ := p.parseType()
	name := p.expect(lexer.Identifier, "identifier").Text

	decl := &ast.VarDecl{Position: pos, Name: name, Type: typ, Final: final, Tracked: tracked, Annotations: annotations}

	if p.check(lexer.Comma) {
		// Multi-declaration: only valid for a non-array qubit type with no initializer.
		prim, isPrim := typ.(*ast.PrimitiveType)
		if !isPrim || prim.Kind != ast.QubitKind {
			p.fail("multi-declaration is only allowed for 'qubit' variables")
		}
		for p.match(lexer.Comma) {
			extraName := p.expect(lexer.Identifier, "identifier").Text
			clone := &ast.VarDecl{Position: pos, Name: extraName, Type: typ, Final: final, Tracked: tracked, Annotations: annotations}
			p.overflow = append(p.overflow, clone)
		}
		p.expect(lexer.Semicolon, "';'")
		return decl
	}

	if p.match(lexer.Assign) {
		decl.Initializer = p.ParseExpr()
	}
	p.expect(lexer.Semicolon, "';'")
	return decl
}

