package semantic

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

func (c *Checker) checkBlock(b *ast.BlockStmt) {
	outer := c.scope
	c.scope = symtab.NewScope(outer)
	for _, st := range b.Statements {
		c.checkStmt(st)
	}
	c.scope = outer
}

func (c *Checker) checkStmt(st ast.Statement) {
	switch s := st.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(s)
	case *ast.BlockStmt:
		c.checkBlock(s)
	case *ast.ExpressionStmt:
		c.checkExpr(s.Expr)
	case *ast.ReturnStmt:
		if s.Value == nil {
			if !c.returnType.IsVoid {
				errs.Panic(errs.Semantic, s.Position, "missing return value; expected %s", c.returnType)
			}
			return
		}
		t := c.checkExpr(s.Value)
		if !c.isAssignable(c.returnType, t) {
			errs.Panic(errs.Semantic, s.Position, "cannot return value of type %s from a function returning %s", t, c.returnType)
		}
	case *ast.IfStmt:
		c.checkCondition(s.Cond, s.Position)
		c.checkStmt(s.Then)
		if s.Else != nil {
			c.checkStmt(s.Else)
		}
	case *ast.TernaryStmt:
		c.checkCondition(s.Cond, s.Position)
		c.checkStmt(s.Then)
		c.checkStmt(s.Else)
	case *ast.ForStmt:
		outer := c.scope
		c.scope = symtab.NewScope(outer)
		if s.Init != nil {
			c.checkStmt(s.Init)
		}
		if s.Cond != nil {
			c.checkCondition(s.Cond, s.Position)
		}
		if s.Increment != nil {
			c.checkStmt(s.Increment)
		}
		c.checkStmt(s.Body)
		c.scope = outer
	case *ast.WhileStmt:
		c.checkCondition(s.Cond, s.Position)
		c.checkStmt(s.Body)
	case *ast.EchoStmt:
		c.checkExpr(s.Value)
	case *ast.ResetStmt:
		c.checkQubitTarget(s.Target, s.Position, "reset")
	case *ast.MeasureStmt:
		c.checkQubitTarget(s.Target, s.Position, "measure")
	case *ast.DestroyStmt:
		t := c.checkExpr(s.Target)
		if t.IsPrimitive && t.Primitive == ast.QubitKind {
			return
		}
		if t.IsClassRef() {
			return
		}
		errs.Panic(errs.Semantic, s.Position, "'destroy' requires a qubit or object reference, got %s", t)
	case *ast.AssignStmt:
		v, ok := c.scope.Lookup(s.Name)
		if !ok {
			errs.Panic(errs.Semantic, s.Position, "undeclared variable '%s'", s.Name)
		}
		if v.Final {
			errs.Panic(errs.Semantic, s.Position, "cannot assign to final variable '%s'", s.Name)
		}
		t := c.checkExpr(s.Value)
		if !c.isAssignable(v.Type, t) {
			errs.Panic(errs.Semantic, s.Position, "cannot assign value of type %s to '%s' of type %s", t, s.Name, v.Type)
		}
	case *ast.ClassDecl, *ast.FunctionDecl:
		// Nested declarations are not part of the statement grammar
		// reachable here; top-level class/function lists are checked
		// directly by checkProgram.
	default:
		errs.Panic(errs.Semantic, st.Pos(), "unsupported statement")
	}
}

func (c *Checker) checkCondition(e ast.Expression, pos errs.Position) {
	t := c.checkExpr(e)
	if !t.IsBooleanLike() {
		errs.Panic(errs.Semantic, pos, "condition must be boolean or bit, got %s", t)
	}
}

func (c *Checker) checkQubitTarget(e ast.Expression, pos errs.Position, verb string) {
	t := c.checkExpr(e)
	if t.IsPrimitive && t.Primitive == ast.QubitKind {
		return
	}
	if t.IsArray && t.ElementType.IsPrimitive && t.ElementType.Primitive == ast.QubitKind {
		return
	}
	errs.Panic(errs.Semantic, pos, "'%s' requires a qubit or qubit[] target, got %s", verb, t)
}

func (c *Checker) checkVarDecl(s *ast.VarDecl) {
	if c.scope.DeclaredHere(s.Name) {
		errs.Panic(errs.Semantic, s.Position, "variable '%s' is already declared in this scope", s.Name)
	}
	declType := c.resolveAndFoldArraySize(s.Type)
	sym := &symtab.VarSymbol{Name: s.Name, Type: declType, Final: s.Final, Tracked: s.Tracked}

	if s.Tracked && !isTrackableType(declType) {
		errs.Panic(errs.Semantic, s.Position, "'@tracked' may only be applied to bit, boolean, int, or qubit-typed declarations")
	}
	if declType.IsPrimitive && declType.Primitive == ast.QubitKind && !c.inQuantum {
		errs.Panic(errs.Semantic, s.Position, "qubit declarations are only allowed inside '@quantum' code")
	}

	if s.Initializer != nil {
		t := c.checkExpr(s.Initializer)
		if !c.isAssignable(declType, t) {
			errs.Panic(errs.Semantic, s.Position, "cannot initialise '%s' of type %s with value of type %s", s.Name, declType, t)
		}
		if s.Final && declType.IsPrimitive && declType.Primitive == ast.IntKind {
			if lit, ok := s.Initializer.(*ast.IntegerLiteral); ok {
				sym.ConstInt = true
				sym.ConstValue = lit.Value
			}
		}
	} else if declType.IsPrimitive && declType.Primitive == ast.QubitKind {
		// Qubits may be declared without an initializer; the runtime
		// allocates one at the declaration (spec §4.3.6).
	} else if s.Final {
		errs.Panic(errs.Semantic, s.Position, "final variable '%s' must be initialised", s.Name)
	}

	c.scope.Define(sym)
}

// resolveAndFoldArraySize resolves t to a TypeInfo, constant-folding and
// back-patching any ArraySizeExpr array bound into a literal (spec
// §4.2.2's evaluate_const_int).
func (c *Checker) resolveAndFoldArraySize(t ast.Type) *symtab.TypeInfo {
	if arr, ok := t.(*ast.ArrayType); ok {
		if arr.SizeKind == ast.ArraySizeExpr {
			n := c.evaluateConstInt(arr.SizeExpr)
			if n < 0 {
				errs.Panic(errs.Semantic, arr.Position, "array size must not be negative")
			}
			arr.Size = n
			arr.SizeKind = ast.ArraySizeLiteral
			arr.SizeExpr = nil
		}
		return symtab.Array(c.resolveAndFoldArraySize(arr.ElementType))
	}
	return resolveType(t)
}

// evaluateConstInt folds a compile-time-constant integer expression:
// integer literals and `final int` variables with a recorded constant
// value, combined with +, -, *, unary - (spec §4.2.2).
func (c *Checker) evaluateConstInt(e ast.Expression) int {
	switch ex := e.(type) {
	case *ast.IntegerLiteral:
		return int(ex.Value)
	case *ast.Identifier:
		sym, ok := c.scope.Lookup(ex.Name)
		if !ok || !sym.ConstInt {
			errs.Panic(errs.Semantic, ex.Position, "array size must be a compile-time constant integer")
		}
		return int(sym.ConstValue)
	case *ast.PrefixExpr:
		if ex.Operator == "-" {
			return -c.evaluateConstInt(ex.Operand)
		}
	case *ast.BinaryExpr:
		l := c.evaluateConstInt(ex.Left)
		r := c.evaluateConstInt(ex.Right)
		switch ex.Operator {
		case "+":
			return l + r
		case "-":
			return l - r
		case "*":
			return l * r
		}
	case *ast.ParenExpr:
		return c.evaluateConstInt(ex.Inner)
	}
	errs.Panic(errs.Semantic, e.Pos(), "array size must be a compile-time constant integer expression")
	return 0
}
