package parser

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/lexer"
)

// parseType parses a Type, then greedily consumes any trailing `[...]`
// array-size suffixes (spec §3.1, §4.1).
func (p *Parser) parseType() ast.Type {
	base := p.parseBaseType()
	for p.check(lexer.LBracket) {
		pos := p.pos_()
		p.advance()
		arr := &ast.ArrayType{Position: pos, ElementType: base}
		switch {
		case p.check(lexer.RBracket):
			arr.SizeKind = ast.ArraySizeNone
		case p.check(lexer.IntegerLiteral):
			lit := p.advance()
			arr.SizeKind = ast.ArraySizeLiteral
			arr.Size = parseIntText(lit.Text)
		default:
			arr.SizeKind = ast.ArraySizeExpr
			arr.SizeExpr = p.parseExpression(precAssign)
		}
		p.expect(lexer.RBracket, "']'")
		base = arr
	}
	return base
}

func (p *Parser) parseBaseType() ast.Type {
	pos := p.pos_()
	switch p.cur().Kind {
	case lexer.KwInt:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.IntKind}
	case lexer.KwLong:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.LongKind}
	case lexer.KwFloat:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.FloatKind}
	case lexer.KwBit:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.BitKind}
	case lexer.KwBoolean:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.BooleanKind}
	case lexer.KwString:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.StringKind}
	case lexer.KwChar:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.CharKind}
	case lexer.KwQubit:
		p.advance()
		return &ast.PrimitiveType{Position: pos, Kind: ast.QubitKind}
	case lexer.KwVoid:
		p.advance()
		return &ast.VoidType{Position: pos}
	case lexer.Identifier:
		return p.parseNamedType()
	default:
		p.fail("expected a type, got %q", p.cur().Text)
		return nil
	}
}

func (p *Parser) parseNamedType() *ast.NamedType {
	pos := p.pos_()
	parts := []string{p.expect(lexer.Identifier, "identifier").Text}
	for p.match(lexer.Dot) {
		parts = append(parts, p.expect(lexer.Identifier, "identifier").Text)
	}
	nt := &ast.NamedType{Position: pos, QualifiedName: parts}
	if p.match(lexer.Lt) {
		nt.TypeArguments = append(nt.TypeArguments, p.parseType())
		for p.match(lexer.Comma) {
			nt.TypeArguments = append(nt.TypeArguments, p.parseType())
		}
		p.expect(lexer.Gt, "'>'")
	}
	return nt
}

// looksLikeTypeStart reports whether the token at the cursor could begin a
// type expression, used for cast-vs-grouping disambiguation (spec §4.1).
func (p *Parser) looksLikeTypeStart() bool {
	switch p.cur().Kind {
	case lexer.KwInt, lexer.KwLong, lexer.KwFloat, lexer.KwBit, lexer.KwBoolean,
		lexer.KwString, lexer.KwChar, lexer.KwQubit, lexer.KwVoid, lexer.Identifier:
		return true
	default:
		return false
	}
}

func parseIntText(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
