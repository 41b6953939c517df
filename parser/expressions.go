package parser

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/lexer"
)

// Precedence levels mirror spec §4.1's table; higher binds tighter.
const (
	precAssign = 1
	precOr     = 2
	precAnd    = 3
	precBitOr  = 4
	precBitXor = 5
	precBitAnd = 6
	precEq     = 7
	precRel    = 8
	precAdd    = 9
	precMul    = 10
)

type infixOp struct {
	kind lexer.Kind
	prec int
	text string
}

var infixTable = []infixOp{
	{lexer.PipePipe, precOr, "||"},
	{lexer.AmpAmp, precAnd, "&&"},
	{lexer.Pipe, precBitOr, "|"},
	{lexer.Caret, precBitXor, "^"},
	{lexer.Amp, precBitAnd, "&"},
	{lexer.Eq, precEq, "=="},
	{lexer.Ne, precEq, "!="},
	{lexer.Lt, precRel, "<"},
	{lexer.Gt, precRel, ">"},
	{lexer.Le, precRel, "<="},
	{lexer.Ge, precRel, ">="},
	{lexer.Plus, precAdd, "+"},
	{lexer.Minus, precAdd, "-"},
	{lexer.Star, precMul, "*"},
	{lexer.Slash, precMul, "/"},
	{lexer.Percent, precMul, "%"},
}

func lookupInfix(k lexer.Kind) (infixOp, bool) {
	for _, op := range infixTable {
		if op.kind == k {
			return op, true
		}
	}
	return infixOp{}, false
}

// ParseExpr is the public expression entry point: assignment precedence.
func (p *Parser) ParseExpr() ast.Expression { return p.parseAssignment() }

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseTernary()
	if p.check(lexer.Assign) {
		pos := p.pos_()
		p.advance()
		if !isLValue(left) {
			p.fail("invalid assignment target")
		}
		right := p.parseAssignment()
		return &ast.AssignExpr{Position: pos, Target: left, Value: right}
	}
	return left
}

func isLValue(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr, *ast.IndexExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseExpression(precOr)
	if p.check(lexer.Question) {
		pos := p.pos_()
		p.advance()
		then := p.parseAssignment()
		p.expect(lexer.Colon, "':'")
		els := p.parseTernary()
		return &ast.TernaryExpr{Position: pos, Cond: cond, Then: then, Else: els}
	}
	return cond
}

// parseExpression implements precedence-climbing over the binary operator
// table starting at minPrec (spec §4.1 levels 2-10); all binary operators
// are left-associative.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		op, ok := lookupInfix(p.cur().Kind)
		if !ok || op.prec < minPrec {
			break
		}
		pos := p.pos_()
		p.advance()
		right := p.parseExpression(op.prec + 1)
		left = &ast.BinaryExpr{Position: pos, Operator: op.text, Left: left, Right: right}
	}
	return left
}

// parseUnary handles level-11 prefix operators, right-associative.
func (p *Parser) parseUnary() ast.Expression {
	switch p.cur().Kind {
	case lexer.Minus, lexer.Bang, lexer.Tilde:
		pos := p.pos_()
		opTok := p.advance()
		operand := p.parseUnary()
		return &ast.PrefixExpr{Position: pos, Operator: opTok.Text, Operand: operand}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles level-12: call, index, member access, ++/--; all
// left-associative and chainable.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case lexer.LParen:
			pos := p.pos_()
			p.advance()
			var args []ast.Expression
			for !p.check(lexer.RParen) {
				args = append(args, p.parseAssignment())
				if !p.match(lexer.Comma) {
					break
				}
			}
			p.expect(lexer.RParen, "')'")
			expr = &ast.CallExpr{Position: pos, Callee: expr, Args: args}
		case lexer.LBracket:
			pos := p.pos_()
			p.advance()
			p.rejectNegativeIndexLiteral()
			idx := p.parseAssignment()
			p.expect(lexer.RBracket, "']'")
			expr = &ast.IndexExpr{Position: pos, Collection: expr, Index: idx}
		case lexer.Dot:
			pos := p.pos_()
			p.advance()
			name := p.expect(lexer.Identifier, "member name").Text
			expr = &ast.MemberExpr{Position: pos, Object: expr, Member: name}
		case lexer.PlusPlus, lexer.MinusMinus:
			pos := p.pos_()
			opTok := p.advance()
			expr = &ast.PostfixExpr{Position: pos, Operator: opTok.Text, Operand: expr}
		default:
			return expr
		}
	}
}

// rejectNegativeIndexLiteral rejects constant negative literal indexing
// (`a[-1]`, `a[-(1)]`) at parse time with a dedicated message (spec §4.1).
func (p *Parser) rejectNegativeIndexLiteral() {
	if p.check(lexer.Minus) {
		next := p.peekAt(1)
		parenLiteral := next.Kind == lexer.LParen &&
			p.peekAt(2).Kind == lexer.IntegerLiteral && p.peekAt(3).Kind == lexer.RParen
		if next.Kind == lexer.IntegerLiteral || parenLiteral {
			p.fail("array index cannot be a constant negative literal")
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	pos := p.pos_()
	switch p.cur().Kind {
	case lexer.IntegerLiteral:
		t := p.advance()
		return &ast.IntegerLiteral{Position: pos, Value: int64(parseIntText(t.Text))}
	case lexer.LongLiteral:
		t := p.advance()
		return &ast.LongLiteral{Position: pos, Value: int64(parseIntText(t.Text))}
	case lexer.FloatLiteral:
		t := p.advance()
		return &ast.FloatLiteral{Position: pos, Value: parseFloatText(t.Text)}
	case lexer.BitLiteral:
		t := p.advance()
		return &ast.BitLiteral{Position: pos, Value: parseIntText(t.Text)}
	case lexer.CharLiteral:
		t := p.advance()
		return &ast.CharLiteral{Position: pos, Value: []rune(t.Text)[0]}
	case lexer.StringLiteral:
		t := p.advance()
		return &ast.StringLiteral{Position: pos, Value: t.Text}
	case lexer.KwTrue:
		p.advance()
		return &ast.BooleanLiteral{Position: pos, Value: true}
	case lexer.KwFalse:
		p.advance()
		return &ast.BooleanLiteral{Position: pos, Value: false}
	case lexer.KwNull:
		p.advance()
		return &ast.NullLiteral{Position: pos}
	case lexer.KwThis:
		p.advance()
		return &ast.ThisExpr{Position: pos}
	case lexer.KwSuper:
		p.advance()
		return &ast.SuperExpr{Position: pos}
	case lexer.KwMeasure:
		p.advance()
		target := p.parsePostfix()
		return &ast.MeasureExpr{Position: pos, Target: target}
	case lexer.KwNew:
		return p.parseNewExpr()
	case lexer.LBrace:
		return p.parseArrayLiteral()
	case lexer.Identifier:
		t := p.advance()
		return &ast.Identifier{Position: pos, Name: t.Text}
	case lexer.LParen:
		return p.parseParenOrCast()
	default:
		p.fail("unexpected token %q in expression", p.cur().Text)
		return nil
	}
}

// parseParenOrCast disambiguates `(Type)expr` from `(expr)` (spec §4.1):
// if the first token could start a type and, after parsing one, the
// matching close-paren is followed by a token that can start an
// expression, it is a cast; otherwise it is a grouping.
func (p *Parser) parseParenOrCast() ast.Expression {
	pos := p.pos_()
	if p.looksLikeTypeStart() {
		save := p.pos
		p.advance() // consume '('
		if typ, ok := p.tryParseType(); ok && p.check(lexer.RParen) && canStartExpr(p.peekAt(1).Kind) {
			p.advance() // consume ')'
			operand := p.parseUnary()
			return &ast.CastExpr{Position: pos, TargetType: typ, Operand: operand}
		}
		p.pos = save
	}
	p.advance() // consume '('
	inner := p.ParseExpr()
	p.expect(lexer.RParen, "')'")
	return &ast.ParenExpr{Position: pos, Inner: inner}
}

// tryParseType attempts to parse a type, reporting failure via ok=false
// instead of panicking, so the caller can fall back to a grouping parse.
func (p *Parser) tryParseType() (typ ast.Type, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			typ, ok = nil, false
		}
	}()
	return p.parseType(), true
}

func canStartExpr(k lexer.Kind) bool {
	switch k {
	case lexer.IntegerLiteral, lexer.LongLiteral, lexer.FloatLiteral, lexer.BitLiteral,
		lexer.CharLiteral, lexer.StringLiteral, lexer.KwTrue, lexer.KwFalse, lexer.KwNull,
		lexer.KwThis, lexer.KwSuper, lexer.KwNew, lexer.Identifier, lexer.LParen, lexer.LBrace,
		lexer.Minus, lexer.Bang, lexer.Tilde, lexer.KwMeasure:
		return true
	default:
		return false
	}
}

func (p *Parser) parseNewExpr() ast.Expression {
	pos := p.pos_()
	p.advance() // 'new'
	classType := p.parseNamedType()
	p.expect(lexer.LParen, "'('")
	var args []ast.Expression
	for !p.check(lexer.RParen) {
		args = append(args, p.parseAssignment())
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RParen, "')'")
	return &ast.NewExpr{Position: pos, ClassType: classType, Args: args}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	pos := p.pos_()
	p.expect(lexer.LBrace, "'{'")
	var elems []ast.Expression
	for !p.check(lexer.RBrace) {
		elems = append(elems, p.parseAssignment())
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RBrace, "'}'")
	return &ast.ArrayLiteral{Position: pos, Elements: elems}
}

func parseFloatText(s string) float64 {
	var intPart, fracPart float64
	i := 0
	for i < len(s) && s[i] != '.' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		div := 1.0
		for i < len(s) {
			fracPart = fracPart*10 + float64(s[i]-'0')
			div *= 10
			i++
		}
		fracPart /= div
	}
	return intPart + fracPart
}
