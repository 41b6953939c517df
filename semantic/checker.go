package semantic

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

// Checker carries Phase B's mutable state: the class registry built by
// Phase A, the global function table, and the lexical context of
// whichever function/method/constructor body is currently being
// checked (spec §4.2.2's scope-stack walk).
type Checker struct {
	reg       *symtab.ClassRegistry
	functions map[string]*ast.FunctionDecl
	shotCount int
	mainFunc  *ast.FunctionDecl

	scope        *symtab.Scope
	currentClass *symtab.ClassInfo // nil outside a method/constructor/destructor
	inQuantum    bool              // true inside a @quantum function/method body
	returnType   *symtab.TypeInfo

	inConstructor     bool   // true while checking a non-default constructor body
	allowSuperCall    bool   // true only while checking the constructor's first statement
	allowedFinalField string // final field this top-level statement may legally assign
}

func newChecker(reg *symtab.ClassRegistry) *Checker {
	return &Checker{reg: reg, functions: make(map[string]*ast.FunctionDecl)}
}

func (c *Checker) checkProgram(prog *ast.Program) {
	for _, fn := range prog.Functions {
		if _, dup := c.functions[fn.Name]; dup {
			errs.Panic(errs.Semantic, fn.Position, "function '%s' is already declared", fn.Name)
		}
		c.functions[fn.Name] = fn
		if fn.Name == "main" {
			c.mainFunc = fn
		}
	}

	c.shotCount = 1
	if c.mainFunc != nil && c.mainFunc.HasShots {
		c.shotCount = c.mainFunc.ShotCount
	} else if prog.ShotCount > 0 {
		c.shotCount = prog.ShotCount
	}

	for _, cd := range prog.Classes {
		c.checkClass(cd)
	}
	for _, fn := range prog.Functions {
		c.checkFunction(fn)
	}

	c.scope = symtab.NewScope(nil)
	for _, st := range prog.Statements {
		c.checkStmt(st)
	}
}

func (c *Checker) checkClass(cd *ast.ClassDecl) {
	ci := c.reg.Classes[cd.Name]
	c.currentClass = ci

	for _, f := range cd.Fields {
		if f.Initializer != nil {
			fi := ci.Fields[f.Name]
			c.scope = symtab.NewScope(nil)
			t := c.checkExpr(f.Initializer)
			if !c.isAssignable(fi.Type, t) {
				errs.Panic(errs.Semantic, f.Position, "cannot initialise field '%s' of type %s with value of type %s", f.Name, fi.Type, t)
			}
			c.scope = nil
		}
		if f.Tracked && !isTrackableType(resolveType(f.Type)) {
			errs.Panic(errs.Semantic, f.Position, "'@tracked' may only be applied to bit, boolean, int, or qubit-typed declarations")
		}
	}

	for _, ctor := range cd.Constructors {
		c.checkConstructor(ci, ctor)
	}
	for _, m := range cd.Methods {
		c.checkMethod(ci, m)
	}
	if cd.Destructor != nil && !cd.Destructor.IsDefault {
		c.scope = symtab.NewScope(nil)
		c.scope.Define(&symtab.VarSymbol{Name: "this", Type: symtab.Class(ci.Name)})
		c.returnType = symtab.Void()
		c.inQuantum = false
		c.checkBlock(cd.Destructor.Body)
	}

	c.currentClass = nil
}

func (c *Checker) checkConstructor(ci *symtab.ClassInfo, ctor *ast.ConstructorDecl) {
	if ctor.IsDefault {
		c.checkDefaultConstructor(ci, ctor)
		return
	}
	c.scope = symtab.NewScope(nil)
	c.scope.Define(&symtab.VarSymbol{Name: "this", Type: symtab.Class(ci.Name)})
	for _, p := range ctor.Params {
		c.declareParam(p)
	}
	c.returnType = symtab.Void()
	c.inQuantum = false
	c.inConstructor = true

	outer := c.scope
	c.scope = symtab.NewScope(outer)
	assigned := make(map[string]bool)
	for i, st := range ctor.Body.Statements {
		c.allowSuperCall = i == 0 && isSuperCallStmt(st)
		c.allowedFinalField = ""
		if name, ok := topLevelFinalFieldAssignTarget(st); ok {
			if fi, owned := ci.Fields[name]; owned && fi.Final && !fi.HasInitializer {
				if assigned[name] {
					errs.Panic(errs.Semantic, st.Pos(), "final field '%s' must be assigned as a top-level constructor statement", name)
				}
				assigned[name] = true
				c.allowedFinalField = name
			}
		}
		c.checkStmt(st)
	}
	c.scope = outer
	c.allowSuperCall = false
	c.allowedFinalField = ""
	c.inConstructor = false

	for name, fi := range ci.Fields {
		if fi.Final && !fi.HasInitializer && !assigned[name] {
			errs.Panic(errs.Semantic, ctor.Position, "final field '%s' must be assigned as a top-level constructor statement", name)
		}
	}
}

// checkDefaultConstructor validates a `= default;` constructor's implicit
// param-to-field bindings (spec §3.2): each parameter whose name matches an
// instance field of this class binds to it, provided the types match and
// the field is not qubit-typed; binding a final field requires it to have
// no declaration initialiser, and counts as that field's one assignment.
func (c *Checker) checkDefaultConstructor(ci *symtab.ClassInfo, ctor *ast.ConstructorDecl) {
	assigned := make(map[string]bool)
	for _, p := range ctor.Params {
		fi, owned := ci.Fields[p.Name]
		if !owned || fi.Static {
			continue
		}
		pt := resolveType(p.Type)
		if !symtab.Equal(pt, fi.Type) {
			errs.Panic(errs.Semantic, p.Position, "default constructor parameter '%s' of type %s does not match field '%s' of type %s", p.Name, pt, p.Name, fi.Type)
		}
		if fi.Type.IsPrimitive && fi.Type.Primitive == ast.QubitKind {
			errs.Panic(errs.Semantic, p.Position, "default constructor cannot bind qubit-typed field '%s'", p.Name)
		}
		if fi.Final {
			if fi.HasInitializer {
				errs.Panic(errs.Semantic, p.Position, "default constructor cannot bind final field '%s', which already has a declaration initialiser", p.Name)
			}
			assigned[p.Name] = true
		}
	}
	for name, fi := range ci.Fields {
		if fi.Final && !fi.HasInitializer && !assigned[name] {
			errs.Panic(errs.Semantic, ctor.Position, "final field '%s' must be assigned as a top-level constructor statement", name)
		}
	}
}

// isSuperCallStmt reports whether st is exactly `super(args);` — the one
// shape a constructor's leading statement may take to explicitly chain
// into a base constructor (spec §4.3.6).
func isSuperCallStmt(st ast.Statement) bool {
	es, ok := st.(*ast.ExpressionStmt)
	if !ok {
		return false
	}
	ce, ok := es.Expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	_, ok = ce.Callee.(*ast.SuperExpr)
	return ok
}

// topLevelFinalFieldAssignTarget reports the field name assigned by st if
// st is exactly `this.name = value;` — the only shape that counts toward a
// final field's required single top-level constructor assignment.
func topLevelFinalFieldAssignTarget(st ast.Statement) (string, bool) {
	es, ok := st.(*ast.ExpressionStmt)
	if !ok {
		return "", false
	}
	ae, ok := es.Expr.(*ast.AssignExpr)
	if !ok {
		return "", false
	}
	me, ok := ae.Target.(*ast.MemberExpr)
	if !ok {
		return "", false
	}
	if _, ok := me.Object.(*ast.ThisExpr); !ok {
		return "", false
	}
	return me.Member, true
}

func (c *Checker) checkMethod(ci *symtab.ClassInfo, m *ast.MethodDecl) {
	if m.Body == nil {
		return
	}
	c.scope = symtab.NewScope(nil)
	if !m.Static {
		c.scope.Define(&symtab.VarSymbol{Name: "this", Type: symtab.Class(ci.Name)})
	}
	for _, p := range m.Params {
		c.declareParam(p)
	}
	c.returnType = resolveType(m.ReturnType)
	c.inQuantum = m.Quantum
	c.checkBlock(m.Body)
}

func (c *Checker) checkFunction(fn *ast.FunctionDecl) {
	c.currentClass = nil
	c.scope = symtab.NewScope(nil)
	for _, p := range fn.Params {
		c.declareParam(p)
	}
	c.returnType = resolveType(fn.ReturnType)
	// main can never carry @quantum itself (forbidden by the parser) but is
	// still where quantum programs live, so it implicitly allows qubits and
	// gate calls in its own body.
	c.inQuantum = fn.Quantum || fn.Name == "main"
	c.checkBlock(fn.Body)
}

func (c *Checker) declareParam(p ast.Param) {
	c.scope.Define(&symtab.VarSymbol{Name: p.Name, Type: resolveType(p.Type)})
}

func isTrackableType(t *symtab.TypeInfo) bool {
	if t.IsArray {
		return t.ElementType != nil && t.ElementType.IsPrimitive && t.ElementType.Primitive == ast.QubitKind
	}
	if !t.IsPrimitive {
		return false
	}
	switch t.Primitive {
	case ast.BitKind, ast.BooleanKind, ast.IntKind, ast.QubitKind:
		return true
	default:
		return false
	}
}
