package semantic

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

func (c *Checker) checkExpr(e ast.Expression) *symtab.TypeInfo {
	switch ex := e.(type) {
	case *ast.IntegerLiteral:
		return symtab.Int()
	case *ast.LongLiteral:
		return symtab.Long()
	case *ast.FloatLiteral:
		return symtab.Float()
	case *ast.BitLiteral:
		return symtab.Bit()
	case *ast.CharLiteral:
		return symtab.Char()
	case *ast.StringLiteral:
		return symtab.Str()
	case *ast.BooleanLiteral:
		return symtab.Boolean()
	case *ast.NullLiteral:
		return symtab.Null()
	case *ast.Identifier:
		if sym, ok := c.scope.Lookup(ex.Name); ok {
			return sym.Type
		}
		if c.currentClass != nil {
			if f, ok := c.reg.LookupField(c.currentClass.Name, ex.Name); ok {
				return f.Type
			}
		}
		errs.Panic(errs.Semantic, ex.Position, "undeclared identifier '%s'", ex.Name)
	case *ast.ThisExpr:
		if c.currentClass == nil {
			errs.Panic(errs.Semantic, ex.Position, "'this' is not valid outside a method body")
		}
		return symtab.Class(c.currentClass.Name)
	case *ast.SuperExpr:
		if c.currentClass == nil || c.currentClass.Base == "" {
			errs.Panic(errs.Semantic, ex.Position, "'super' is not valid here")
		}
		return symtab.Class(c.currentClass.Base)
	case *ast.ParenExpr:
		return c.checkExpr(ex.Inner)
	case *ast.PrefixExpr:
		return c.checkPrefix(ex)
	case *ast.PostfixExpr:
		t := c.checkExpr(ex.Operand)
		if !t.IsNumeric() {
			errs.Panic(errs.Semantic, ex.Position, "'%s' requires a numeric operand, got %s", ex.Operator, t)
		}
		return t
	case *ast.BinaryExpr:
		return c.checkBinary(ex)
	case *ast.CastExpr:
		return c.checkCast(ex)
	case *ast.CallExpr:
		return c.checkCall(ex)
	case *ast.MemberExpr:
		t, _ := c.resolveMember(ex)
		return t
	case *ast.IndexExpr:
		return c.checkIndex(ex)
	case *ast.NewExpr:
		return c.checkNew(ex)
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(ex)
	case *ast.AssignExpr:
		return c.checkAssign(ex)
	case *ast.TernaryExpr:
		return c.checkTernary(ex)
	case *ast.MeasureExpr:
		c.checkQubitTarget(ex.Target, ex.Position, "measure")
		return symtab.Bit()
	}
	errs.Panic(errs.Semantic, e.Pos(), "unsupported expression")
	return nil
}

func (c *Checker) checkPrefix(ex *ast.PrefixExpr) *symtab.TypeInfo {
	t := c.checkExpr(ex.Operand)
	switch ex.Operator {
	case "-":
		if !t.IsNumeric() {
			errs.Panic(errs.Semantic, ex.Position, "unary '-' requires a numeric operand, got %s", t)
		}
		return t
	case "!":
		if !t.IsBooleanLike() {
			errs.Panic(errs.Semantic, ex.Position, "'!' requires a boolean or bit operand, got %s", t)
		}
		return symtab.Boolean()
	case "~":
		if !t.IsPrimitive || (t.Primitive != ast.IntKind && t.Primitive != ast.LongKind && t.Primitive != ast.BitKind) {
			errs.Panic(errs.Semantic, ex.Position, "'~' requires an int, long, or bit operand, got %s", t)
		}
		return t
	}
	errs.Panic(errs.Semantic, ex.Position, "unknown unary operator '%s'", ex.Operator)
	return nil
}

func (c *Checker) checkBinary(ex *ast.BinaryExpr) *symtab.TypeInfo {
	l := c.checkExpr(ex.Left)
	r := c.checkExpr(ex.Right)
	switch ex.Operator {
	case "&&", "||":
		if !l.IsBooleanLike() || !r.IsBooleanLike() {
			errs.Panic(errs.Semantic, ex.Position, "'%s' requires boolean or bit operands", ex.Operator)
		}
		return symtab.Boolean()
	case "==", "!=":
		if !comparable(l, r) {
			errs.Panic(errs.Semantic, ex.Position, "cannot compare %s with %s", l, r)
		}
		return symtab.Boolean()
	case "<", ">", "<=", ">=":
		if !l.IsNumeric() || !r.IsNumeric() {
			errs.Panic(errs.Semantic, ex.Position, "'%s' requires numeric operands, got %s and %s", ex.Operator, l, r)
		}
		return symtab.Boolean()
	case "&", "|", "^":
		if l.IsBooleanLike() && r.IsBooleanLike() {
			return symtab.Boolean()
		}
		if l.IsNumeric() && r.IsNumeric() && l.Primitive != ast.FloatKind && r.Primitive != ast.FloatKind {
			return widenNumeric(l, r)
		}
		errs.Panic(errs.Semantic, ex.Position, "'%s' requires integral or boolean operands, got %s and %s", ex.Operator, l, r)
	case "+":
		if l.IsPrimitive && l.Primitive == ast.StringKind || r.IsPrimitive && r.Primitive == ast.StringKind {
			return symtab.Str()
		}
		fallthrough
	case "-", "*", "/", "%":
		if !l.IsNumeric() || !r.IsNumeric() {
			errs.Panic(errs.Semantic, ex.Position, "'%s' requires numeric operands, got %s and %s", ex.Operator, l, r)
		}
		return widenNumeric(l, r)
	}
	errs.Panic(errs.Semantic, ex.Position, "unknown binary operator '%s'", ex.Operator)
	return nil
}

// widenNumeric applies the arithmetic promotion order bit < int < long <
// float (spec §4.2.4).
func widenNumeric(l, r *symtab.TypeInfo) *symtab.TypeInfo {
	rank := func(t *symtab.TypeInfo) int {
		switch t.Primitive {
		case ast.BitKind:
			return 0
		case ast.IntKind:
			return 1
		case ast.LongKind:
			return 2
		case ast.FloatKind:
			return 3
		}
		return 0
	}
	if rank(l) >= rank(r) {
		if l.Primitive == ast.BitKind {
			return symtab.Int()
		}
		return l
	}
	if r.Primitive == ast.BitKind {
		return symtab.Int()
	}
	return r
}

func comparable(a, b *symtab.TypeInfo) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	if a.IsNull || b.IsNull {
		return true
	}
	return symtab.Equal(a, b)
}

func (c *Checker) checkCast(ex *ast.CastExpr) *symtab.TypeInfo {
	from := c.checkExpr(ex.Operand)
	to := resolveType(ex.TargetType)
	if from.IsNumeric() && to.IsNumeric() {
		return to
	}
	if to.IsPrimitive && to.Primitive == ast.StringKind {
		return to
	}
	if to.IsClassRef() && from.IsClassRef() && (c.reg.IsSubclassOf(from.ClassName, to.ClassName) || c.reg.IsSubclassOf(to.ClassName, from.ClassName)) {
		return to
	}
	errs.Panic(errs.Semantic, ex.Position, "cannot cast %s to %s", from, to)
	return nil
}

func (c *Checker) checkIndex(ex *ast.IndexExpr) *symtab.TypeInfo {
	col := c.checkExpr(ex.Collection)
	idx := c.checkExpr(ex.Index)
	if !idx.IsNumeric() {
		errs.Panic(errs.Semantic, ex.Position, "array index must be numeric, got %s", idx)
	}
	if !col.IsArray {
		errs.Panic(errs.Semantic, ex.Position, "cannot index non-array type %s", col)
	}
	return col.ElementType
}

func (c *Checker) checkArrayLiteral(ex *ast.ArrayLiteral) *symtab.TypeInfo {
	if len(ex.Elements) == 0 {
		errs.Panic(errs.Semantic, ex.Position, "array literal must have at least one element")
	}
	elem := c.checkExpr(ex.Elements[0])
	for _, e := range ex.Elements[1:] {
		t := c.checkExpr(e)
		if !symtab.Equal(elem, t) {
			errs.Panic(errs.Semantic, e.Pos(), "array literal elements must have a uniform type; found %s and %s", elem, t)
		}
	}
	return symtab.Array(elem)
}

func (c *Checker) checkAssign(ex *ast.AssignExpr) *symtab.TypeInfo {
	var targetType *symtab.TypeInfo
	switch tgt := ex.Target.(type) {
	case *ast.Identifier:
		sym, ok := c.scope.Lookup(tgt.Name)
		if !ok {
			if c.currentClass != nil {
				if f, ok := c.reg.LookupField(c.currentClass.Name, tgt.Name); ok {
					if f.Final {
						c.rejectFinalFieldAssign(ex.Position, tgt.Name)
					}
					targetType = f.Type
					break
				}
			}
			errs.Panic(errs.Semantic, ex.Position, "undeclared identifier '%s'", tgt.Name)
		}
		if sym.Final {
			errs.Panic(errs.Semantic, ex.Position, "cannot assign to final variable '%s'", tgt.Name)
		}
		targetType = sym.Type
	case *ast.MemberExpr:
		t, final := c.resolveMember(tgt)
		if final {
			if _, isThis := tgt.Object.(*ast.ThisExpr); !isThis || tgt.Member != c.allowedFinalField {
				c.rejectFinalFieldAssign(ex.Position, tgt.Member)
			}
		}
		targetType = t
	case *ast.IndexExpr:
		targetType = c.checkExpr(tgt)
	default:
		errs.Panic(errs.Semantic, ex.Position, "invalid assignment target")
	}
	valType := c.checkExpr(ex.Value)
	if !c.isAssignable(targetType, valType) {
		errs.Panic(errs.Semantic, ex.Position, "cannot assign value of type %s to target of type %s", valType, targetType)
	}
	return targetType
}

// rejectFinalFieldAssign raises the constructor-specific wording (spec
// §4.2.6) whenever the assignment happens inside a constructor body (even
// if it's not the one legal top-level initialisation), and the plain
// immutability wording everywhere else.
func (c *Checker) rejectFinalFieldAssign(pos errs.Position, name string) {
	if c.inConstructor {
		errs.Panic(errs.Semantic, pos, "final field '%s' must be assigned as a top-level constructor statement", name)
	}
	errs.Panic(errs.Semantic, pos, "cannot assign to final field '%s'", name)
}

func (c *Checker) checkTernary(ex *ast.TernaryExpr) *symtab.TypeInfo {
	c.checkCondition(ex.Cond, ex.Position)
	then := c.checkExpr(ex.Then)
	els := c.checkExpr(ex.Else)
	if symtab.Equal(then, els) {
		return then
	}
	if then.IsNumeric() && els.IsNumeric() {
		return widenNumeric(then, els)
	}
	errs.Panic(errs.Semantic, ex.Position, "ternary branches have incompatible types %s and %s", then, els)
	return nil
}

// resolveMember resolves Object.Member as a field access, returning its
// type and whether it is final.
func (c *Checker) resolveMember(ex *ast.MemberExpr) (*symtab.TypeInfo, bool) {
	objType := c.checkExpr(ex.Object)
	if !objType.IsClassRef() {
		errs.Panic(errs.Semantic, ex.Position, "cannot access member '%s' on non-object type %s", ex.Member, objType)
	}
	f, ok := c.reg.LookupField(objType.ClassName, ex.Member)
	if !ok {
		errs.Panic(errs.Semantic, ex.Position, "class '%s' has no field '%s'", objType.ClassName, ex.Member)
	}
	return f.Type, f.Final
}

func (c *Checker) checkNew(ex *ast.NewExpr) *symtab.TypeInfo {
	className := ex.ClassType.Name()
	ci, ok := c.reg.Get(className)
	if !ok {
		errs.Panic(errs.Semantic, ex.Position, "unknown class '%s'", className)
	}
	if ci.IsAbstract {
		errs.Panic(errs.Semantic, ex.Position, "cannot instantiate abstract class '%s'", className)
	}
	if ci.IsStatic {
		errs.Panic(errs.Semantic, ex.Position, "cannot instantiate static class '%s'", className)
	}
	argTypes := make([]*symtab.TypeInfo, len(ex.Args))
	for i, a := range ex.Args {
		argTypes[i] = c.checkExpr(a)
	}
	if len(ci.Constructors) > 0 && !constructorMatches(ci, argTypes) {
		errs.Panic(errs.Semantic, ex.Position, "no constructor of '%s' accepts the given argument types", className)
	} else if len(ci.Constructors) == 0 && len(argTypes) > 0 {
		errs.Panic(errs.Semantic, ex.Position, "class '%s' has no constructor accepting arguments", className)
	}
	return symtab.Class(className)
}

func constructorMatches(ci *symtab.ClassInfo, argTypes []*symtab.TypeInfo) bool {
	for _, ctor := range ci.Constructors {
		if paramsMatch(ctor.ParamTypes, argTypes) {
			return true
		}
	}
	return false
}

func paramsMatch(params, args []*symtab.TypeInfo) bool {
	if len(params) != len(args) {
		return false
	}
	for i := range params {
		if !assignableStatic(params[i], args[i]) {
			return false
		}
	}
	return true
}

func (c *Checker) checkCall(ex *ast.CallExpr) *symtab.TypeInfo {
	switch callee := ex.Callee.(type) {
	case *ast.SuperExpr:
		if c.currentClass == nil || c.currentClass.Base == "" {
			errs.Panic(errs.Semantic, ex.Position, "'super' is not valid here")
		}
		if !c.allowSuperCall {
			errs.Panic(errs.Semantic, ex.Position, "'super(...)' may only appear as the first statement of a constructor")
		}
		argTypes := make([]*symtab.TypeInfo, len(ex.Args))
		for i, a := range ex.Args {
			argTypes[i] = c.checkExpr(a)
		}
		baseCi, ok := c.reg.Get(c.currentClass.Base)
		if !ok || !constructorMatches(baseCi, argTypes) {
			errs.Panic(errs.Semantic, ex.Position, "no constructor of '%s' accepts the given argument types", c.currentClass.Base)
		}
		return symtab.Void()
	case *ast.Identifier:
		if gate, ok := quantumGateSignature(callee.Name); ok {
			if !c.inQuantum {
				errs.Panic(errs.Semantic, ex.Position, "'%s' may only be called inside '@quantum' code", callee.Name)
			}
			c.checkGateArgs(ex, gate)
			return symtab.Void()
		}
		fn, ok := c.functions[callee.Name]
		if !ok {
			errs.Panic(errs.Semantic, ex.Position, "call to undeclared function '%s'", callee.Name)
		}
		if len(fn.Params) != len(ex.Args) {
			errs.Panic(errs.Semantic, ex.Position, "function '%s' expects %d argument(s), got %d", callee.Name, len(fn.Params), len(ex.Args))
		}
		for i, a := range ex.Args {
			at := c.checkExpr(a)
			pt := resolveType(fn.Params[i].Type)
			if !c.isAssignable(pt, at) {
				errs.Panic(errs.Semantic, a.Pos(), "argument %d to '%s' has type %s, expected %s", i+1, callee.Name, at, pt)
			}
		}
		return resolveType(fn.ReturnType)
	case *ast.MemberExpr:
		objType := c.checkExpr(callee.Object)
		if !objType.IsClassRef() {
			errs.Panic(errs.Semantic, ex.Position, "cannot call method '%s' on non-object type %s", callee.Member, objType)
		}
		overloads := c.reg.LookupMethods(objType.ClassName, callee.Member)
		if len(overloads) == 0 {
			errs.Panic(errs.Semantic, ex.Position, "class '%s' has no method '%s'", objType.ClassName, callee.Member)
		}
		argTypes := make([]*symtab.TypeInfo, len(ex.Args))
		for i, a := range ex.Args {
			argTypes[i] = c.checkExpr(a)
		}
		for _, mi := range overloads {
			if paramsMatch(mi.ParamTypes, argTypes) {
				return mi.ReturnType
			}
		}
		errs.Panic(errs.Semantic, ex.Position, "no overload of '%s' on '%s' accepts the given argument types", callee.Member, objType.ClassName)
	}
	errs.Panic(errs.Semantic, ex.Position, "expression is not callable")
	return nil
}

// assignableStatic is a context-free assignability check used for
// overload resolution where no BlochError should be raised on mismatch.
func assignableStatic(target, src *symtab.TypeInfo) bool {
	if symtab.Equal(target, src) {
		return true
	}
	if target.IsNumeric() && src.IsNumeric() {
		return true
	}
	if target.IsClassRef() && src.IsNull {
		return true
	}
	return false
}

func (c *Checker) isAssignable(target, src *symtab.TypeInfo) bool {
	if symtab.Equal(target, src) {
		return true
	}
	if target.IsNumeric() && src.IsNumeric() {
		// Narrowing (e.g. long -> int) is rejected; only same-or-wider
		// is allowed implicitly (spec §4.2.4).
		return numericRank(target) >= numericRank(src)
	}
	if target.IsClassRef() && src.IsNull {
		return true
	}
	if target.IsClassRef() && src.IsClassRef() {
		return c.reg.IsSubclassOf(src.ClassName, target.ClassName)
	}
	if target.IsArray && src.IsArray {
		return symtab.Equal(target.ElementType, src.ElementType)
	}
	return false
}

func numericRank(t *symtab.TypeInfo) int {
	switch t.Primitive {
	case ast.BitKind:
		return 0
	case ast.IntKind:
		return 1
	case ast.LongKind:
		return 2
	case ast.FloatKind:
		return 3
	}
	return -1
}
