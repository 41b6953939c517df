package parser

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/lexer"
)

// parseFunctionAnnotations consumes @quantum/@shots(N) annotations
// preceding a top-level function or method declaration and rejects
// @tracked in that position (spec §4.2.7).
func (p *Parser) parseFunctionAnnotations() []ast.Annotation {
	anns := p.parseAnnotations()
	for _, a := range anns {
		if a.Name != "quantum" && a.Name != "shots" {
			p.fail("invalid annotation '@%s' on a function declaration", a.Name)
		}
	}
	return anns
}

func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	anns := p.parseFunctionAnnotations()
	pos := p.pos_()
	p.expect(lexer.KwFunction, "'function'")
	name := p.expect(lexer.Identifier, "function name").Text
	fn := &ast.FunctionDecl{Position: pos, Name: name, Annotations: anns}
	for _, a := range anns {
		switch a.Name {
		case "quantum":
			fn.Quantum = true
		case "shots":
			if name != "main" {
				p.fail("@shots is only valid on 'main'")
			}
			if fn.HasShots {
				p.fail("at most one @shots annotation is allowed")
			}
			fn.HasShots = true
			fn.ShotCount = a.Arg
		}
	}
	if fn.Quantum && name == "main" {
		p.fail("@quantum is not allowed on 'main'")
	}
	fn.Params = p.parseParamList()
	p.expect(lexer.Arrow, "'->'")
	fn.ReturnType = p.parseType()
	if fn.Quantum {
		p.checkQuantumReturnType(fn.ReturnType)
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) checkQuantumReturnType(t ast.Type) {
	prim, ok := t.(*ast.PrimitiveType)
	if ok && prim.Kind == ast.BitKind {
		return
	}
	if arr, ok := t.(*ast.ArrayType); ok {
		if ep, ok := arr.ElementType.(*ast.PrimitiveType); ok && ep.Kind == ast.BitKind {
			return
		}
	}
	if _, ok := t.(*ast.VoidType); ok {
		return
	}
	p.fail("@quantum functions must return bit, bit[], or void")
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(lexer.LParen, "'('")
	var params []ast.Param
	for !p.check(lexer.RParen) {
		pos := p.pos_()
		typ := p.parseType()
		name := p.expect(lexer.Identifier, "parameter name").Text
		params = append(params, ast.Param{Position: pos, Name: name, Type: typ})
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RParen, "')'")
	return params
}

// parseClassDecl parses a class declaration, optionally preceded by
// `static`/`abstract` modifiers in any order, each at most once.
func (p *Parser) parseClassDecl() *ast.ClassDecl {
	pos := p.pos_()
	var isStatic, isAbstract bool
	for p.check(lexer.KwStatic) || p.check(lexer.KwAbstract) {
		if p.check(lexer.KwStatic) {
			if isStatic {
				p.fail("'static' may only appear once")
			}
			isStatic = true
		} else {
			if isAbstract {
				p.fail("'abstract' may only appear once")
			}
			isAbstract = true
		}
		p.advance()
	}
	p.expect(lexer.KwClass, "'class'")
	name := p.expect(lexer.Identifier, "class name").Text
	cd := &ast.ClassDecl{Position: pos, Name: name, Static: isStatic, Abstract: isAbstract}

	if p.match(lexer.Lt) {
		cd.TypeParams = append(cd.TypeParams, p.parseTypeParam())
		for p.match(lexer.Comma) {
			cd.TypeParams = append(cd.TypeParams, p.parseTypeParam())
		}
		p.expect(lexer.Gt, "'>'")
	}
	if p.match(lexer.KwExtends) {
		bpos := p.pos_()
		bname := p.expect(lexer.Identifier, "base class name").Text
		cd.Base = &ast.Identifier{Position: bpos, Name: bname}
	}

	p.expect(lexer.LBrace, "'{'")
	for !p.check(lexer.RBrace) {
		p.parseClassMember(cd, isStatic)
	}
	p.expect(lexer.RBrace, "'}'")

	for _, c := range cd.Constructors {
		if c.ReturnClassName != cd.Name {
			p.fail("constructor return type must be '%s', got '%s'", cd.Name, c.ReturnClassName)
		}
	}
	return cd
}

func (p *Parser) parseTypeParam() ast.TypeParam {
	name := p.expect(lexer.Identifier, "type parameter name").Text
	tp := ast.TypeParam{Name: name}
	if p.match(lexer.Colon) {
		tp.Bound = p.parseNamedType()
	}
	return tp
}

// classVisibilityDefault returns the default visibility for a class body:
// private for regular classes, public for static classes (spec §4.1).
func classVisibilityDefault(isStatic bool) ast.Visibility {
	if isStatic {
		return ast.Public
	}
	return ast.Private
}

func (p *Parser) parseVisibility(defaultVis ast.Visibility) ast.Visibility {
	switch p.cur().Kind {
	case lexer.KwPublic:
		p.advance()
		return ast.Public
	case lexer.KwPrivate:
		p.advance()
		return ast.Private
	case lexer.KwProtected:
		p.advance()
		return ast.Protected
	default:
		return defaultVis
	}
}

func (p *Parser) parseClassMember(cd *ast.ClassDecl, classIsStatic bool) {
	defaultVis := classVisibilityDefault(classIsStatic)
	vis := p.parseVisibility(defaultVis)

	var isStaticMember, isVirtual, isOverride, isFinal bool
	for {
		switch p.cur().Kind {
		case lexer.KwStatic:
			if isStaticMember {
				p.fail("'static' may only appear once")
			}
			isStaticMember = true
			p.advance()
			continue
		case lexer.KwVirtual:
			if isVirtual {
				p.fail("'virtual' may only appear once")
			}
			isVirtual = true
			p.advance()
			continue
		case lexer.KwOverride:
			if isOverride {
				p.fail("'override' may only appear once")
			}
			isOverride = true
			p.advance()
			continue
		case lexer.KwFinal:
			if isFinal {
				p.fail("'final' may only appear once")
			}
			isFinal = true
			p.advance()
			continue
		}
		break
	}

	switch p.cur().Kind {
	case lexer.KwConstructor:
		cd.Constructors = append(cd.Constructors, p.parseConstructor(vis))
		return
	case lexer.KwDestructor:
		if cd.Destructor != nil {
			p.fail("at most one destructor may be declared per class")
		}
		cd.Destructor = p.parseDestructor(vis)
		return
	}

	anns := p.parseFunctionAnnotations()
	if p.check(lexer.KwFunction) {
		m := p.parseMethod(vis, isStaticMember, isVirtual, isOverride, anns)
		cd.Methods = append(cd.Methods, m)
		return
	}

	// Field declaration.
	if isVirtual || isOverride {
		p.fail("'virtual'/'override' are only valid on methods")
	}
	field := p.parseFieldDecl(vis, isStaticMember, isFinal)
	cd.Fields = append(cd.Fields, field)
}

func (p *Parser) parseFieldDecl(vis ast.Visibility, isStatic, isFinal bool) *ast.FieldDecl {
	pos := p.pos_()
	tracked := false
	typ := p.parseType()
	name := p.expect(lexer.Identifier, "field name").Text
	f := &ast.FieldDecl{Position: pos, Name: name, Type: typ, Visibility: vis, Static: isStatic, Final: isFinal, Tracked: tracked}
	if p.match(lexer.Assign) {
		f.Initializer = p.ParseExpr()
	}
	p.expect(lexer.Semicolon, "';'")
	return f
}

func (p *Parser) parseMethod(vis ast.Visibility, isStatic, isVirtual, isOverride bool, anns []ast.Annotation) *ast.MethodDecl {
	pos := p.pos_()
	p.expect(lexer.KwFunction, "'function'")
	name := p.expect(lexer.Identifier, "method name").Text
	m := &ast.MethodDecl{Position: pos, Name: name, Visibility: vis, Static: isStatic, Virtual: isVirtual, Override: isOverride}
	if isStatic && (isVirtual || isOverride) {
		p.fail("static methods cannot be 'virtual' or 'override'")
	}
	for _, a := range anns {
		if a.Name == "quantum" {
			m.Quantum = true
		}
	}
	m.Params = p.parseParamList()
	p.expect(lexer.Arrow, "'->'")
	m.ReturnType = p.parseType()
	if m.Quantum {
		p.checkQuantumReturnType(m.ReturnType)
	}
	if p.check(lexer.Semicolon) {
		if !isVirtual {
			p.fail("only a 'virtual' method may omit its body")
		}
		p.advance()
		return m
	}
	m.Body = p.parseBlock()
	return m
}

func (p *Parser) parseConstructor(vis ast.Visibility) *ast.ConstructorDecl {
	pos := p.pos_()
	p.advance() // 'constructor'
	c := &ast.ConstructorDecl{Position: pos, Visibility: vis}
	c.Params = p.parseParamList()
	p.expect(lexer.Arrow, "'->'")
	// Constructor's declared return-type name must equal the enclosing
	// class name; the caller (parseClassDecl) validates this once the
	// whole class body has been parsed.
	retName := p.expect(lexer.Identifier, "class name").Text
	c.ReturnClassName = retName
	if p.match(lexer.Assign) {
		p.expect(lexer.KwDefault, "'default'")
		p.expect(lexer.Semicolon, "';'")
		c.IsDefault = true
		return c
	}
	c.Body = p.parseBlock()
	return c
}

func (p *Parser) parseDestructor(vis ast.Visibility) *ast.DestructorDecl {
	pos := p.pos_()
	p.advance() // 'destructor'
	d := &ast.DestructorDecl{Position: pos, Visibility: vis}
	p.expect(lexer.LParen, "'('")
	p.expect(lexer.RParen, "')'")
	p.expect(lexer.Arrow, "'->'")
	if !p.check(lexer.KwVoid) {
		p.fail("destructor must return 'void'")
	}
	p.advance()
	if p.match(lexer.Assign) {
		p.expect(lexer.KwDefault, "'default'")
		p.expect(lexer.Semicolon, "';'")
		d.IsDefault = true
		return d
	}
	d.Body = p.parseBlock()
	return d
}
