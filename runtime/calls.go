package runtime

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

func (ev *Evaluator) evalCall(ex *ast.CallExpr) Value {
	switch callee := ex.Callee.(type) {
	case *ast.Identifier:
		if v, handled := ev.tryGateCall(callee.Name, ex); handled {
			return v
		}
		fn, ok := ev.functions[callee.Name]
		if !ok {
			errs.Panic(errs.Runtime, ex.Position, "call to undeclared function '%s'", callee.Name)
		}
		args := ev.evalArgs(ex.Args)
		return ev.callFunctionBody(fn, args)
	case *ast.MemberExpr:
		recv := ev.eval(callee.Object)
		if recv.Kind != KindObject || recv.Obj == nil {
			errs.Panic(errs.Runtime, ex.Position, "cannot call method '%s' on a null reference", callee.Member)
		}
		args := ev.evalArgs(ex.Args)
		mi := ev.resolveMethod(recv.Obj.Class.Name, callee.Member, len(args))
		if mi == nil {
			errs.Panic(errs.Runtime, ex.Position, "no method '%s' found with %d argument(s)", callee.Member, len(args))
		}
		return ev.invokeMethod(mi, recv, args)
	}
	errs.Panic(errs.Runtime, ex.Position, "expression is not callable")
	return Value{}
}

func (ev *Evaluator) evalArgs(exprs []ast.Expression) []Value {
	args := make([]Value, len(exprs))
	for i, a := range exprs {
		args[i] = ev.eval(a)
	}
	return args
}

// resolveMethod picks the most-derived overload of name on className
// accepting argc arguments — runtime virtual dispatch (spec §4.3.5).
func (ev *Evaluator) resolveMethod(className, name string, argc int) *symtab.MethodInfo {
	for _, mi := range ev.reg.LookupMethods(className, name) {
		if len(mi.ParamTypes) == argc {
			return mi
		}
	}
	return nil
}

func (ev *Evaluator) invokeMethod(mi *symtab.MethodInfo, recv Value, args []Value) Value {
	if mi.Decl.Body == nil {
		errs.Panic(errs.Runtime, mi.Pos, "method '%s' has no implementation", mi.Signature)
	}
	outerEnv := ev.env
	ev.env = NewEnvironment(nil)
	if !mi.Static {
		ev.env.Define("this", recv)
	}
	for i, p := range mi.Decl.Params {
		ev.env.Define(p.Name, args[i])
	}
	result := ev.runBodyCatchingReturn(mi.Decl.Body)
	ev.env = outerEnv
	return result
}

func (ev *Evaluator) callFunctionBody(fn *ast.FunctionDecl, args []Value) Value {
	outerEnv := ev.env
	ev.env = NewEnvironment(nil)
	for i, p := range fn.Params {
		ev.env.Define(p.Name, args[i])
	}
	result := ev.runBodyCatchingReturn(fn.Body)
	ev.env = outerEnv
	return result
}

func (ev *Evaluator) runBodyCatchingReturn(body *ast.BlockStmt) (result Value) {
	result = VoidValue()
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(controlSignal); ok && sig.isReturn {
				result = sig.value
				return
			}
			panic(r)
		}
	}()
	ev.execBlock(body)
	return
}

func (ev *Evaluator) evalNew(ex *ast.NewExpr) Value {
	className := ex.ClassType.Name()
	rc := ev.runtimeClassFor(className)
	obj := newObject(rc)
	for _, fname := range rc.FieldOrder {
		obj.Fields[fname] = ev.zeroFieldValue(findFieldDeclIn(ev.reg, rc.Info, fname).Type)
	}
	ev.heap.Register(obj)

	args := ev.evalArgs(ex.Args)
	ctor := ev.resolveConstructor(rc.Info, len(args))
	if ctor == nil && len(args) > 0 {
		errs.Panic(errs.Runtime, ex.Position, "no constructor of '%s' accepts %d argument(s)", className, len(args))
	}
	ev.runConstructorChain(rc.Info, obj, ctor, args)
	return ObjectValue(obj)
}

func (ev *Evaluator) resolveConstructor(ci *symtab.ClassInfo, argc int) *ast.ConstructorDecl {
	for _, c := range ci.Constructors {
		if len(c.ParamTypes) == argc {
			return c.Decl
		}
	}
	return nil
}

// runConstructorChain runs one frame of the root-to-leaf constructor chain
// for ci (spec §4.3.6 step 4): it recurses into the base class first —
// either via an explicit `super(args)` leading statement or an implicit
// zero-argument base constructor — then runs ci's own field initialisers
// and constructor body (skipping the already-processed super call).
func (ev *Evaluator) runConstructorChain(ci *symtab.ClassInfo, obj *Object, ctor *ast.ConstructorDecl, args []Value) {
	outerEnv := ev.env
	ev.env = NewEnvironment(nil)
	ev.env.Define("this", ObjectValue(obj))
	if ctor != nil {
		for i, p := range ctor.Params {
			ev.env.Define(p.Name, args[i])
		}
	}

	bodyStmts := []ast.Statement(nil)
	if ctor != nil && ctor.Body != nil {
		bodyStmts = ctor.Body.Statements
	}

	if base, ok := ev.reg.Get(ci.Base); ok {
		if len(bodyStmts) > 0 {
			if superArgs, ok := superCallArgs(bodyStmts[0]); ok {
				baseArgs := ev.evalArgs(superArgs)
				baseCtor := ev.resolveConstructor(base, len(baseArgs))
				ev.runConstructorChain(base, obj, baseCtor, baseArgs)
				bodyStmts = bodyStmts[1:]
			} else {
				ev.runConstructorChain(base, obj, ev.resolveConstructor(base, 0), nil)
			}
		} else {
			ev.runConstructorChain(base, obj, ev.resolveConstructor(base, 0), nil)
		}
	}

	ev.runFieldInitializers(ci, obj)

	if ctor != nil && ctor.IsDefault {
		for _, p := range ctor.Params {
			if _, owned := ci.Fields[p.Name]; owned {
				v, _ := ev.env.Get(p.Name)
				obj.Fields[p.Name] = v
			}
		}
	} else {
		for _, st := range bodyStmts {
			ev.execStmt(st)
		}
	}

	ev.env = outerEnv
}

// superCallArgs reports whether st is `super(args);`, returning its
// argument list.
func superCallArgs(st ast.Statement) ([]ast.Expression, bool) {
	es, ok := st.(*ast.ExpressionStmt)
	if !ok {
		return nil, false
	}
	ce, ok := es.Expr.(*ast.CallExpr)
	if !ok {
		return nil, false
	}
	if _, ok := ce.Callee.(*ast.SuperExpr); !ok {
		return nil, false
	}
	return ce.Args, true
}

// runFieldInitializers evaluates ci's own field initialisers (not
// inherited ones, already defaulted by evalNew) with `this` bound to obj —
// spec §4.3.6 step 4's "run field initialisers for the current class" line.
func (ev *Evaluator) runFieldInitializers(ci *symtab.ClassInfo, obj *Object) {
	outerEnv := ev.env
	for _, fname := range ci.FieldOrder {
		fi := ci.Fields[fname]
		if fi.Static {
			continue
		}
		decl := findFieldDecl(ci, fname)
		if decl != nil && decl.Initializer != nil {
			ev.env = NewEnvironment(nil)
			ev.env.Define("this", ObjectValue(obj))
			obj.Fields[fname] = ev.eval(decl.Initializer)
		}
	}
	ev.env = outerEnv
}

// zeroFieldValue is zeroValue's object-field counterpart: a qubit-typed
// (or qubit-array-typed) field gets a fresh simulator qubit instead of
// the placeholder index zeroValue uses elsewhere (spec §4.3.6 step 2:
// "fresh tracked qubits for qubit fields").
func (ev *Evaluator) zeroFieldValue(t ast.Type) Value {
	if prim, ok := t.(*ast.PrimitiveType); ok && prim.Kind == ast.QubitKind {
		return QubitValue(ev.allocQubit())
	}
	if arr, ok := t.(*ast.ArrayType); ok && isQubitElement(arr.ElementType) {
		elems := make([]Value, arr.Size)
		for i := range elems {
			elems[i] = QubitValue(ev.allocQubit())
		}
		return ArrayValue(elems)
	}
	return zeroValue(t)
}

func findFieldDeclIn(reg *symtab.ClassRegistry, ci *symtab.ClassInfo, name string) *ast.FieldDecl {
	for cur := ci; cur != nil; {
		if decl := findFieldDecl(cur, name); decl != nil {
			return decl
		}
		next, ok := reg.Get(cur.Base)
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

func findFieldDecl(ci *symtab.ClassInfo, name string) *ast.FieldDecl {
	for _, f := range ci.Decl.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// tryGateCall dispatches a built-in quantum gate call (h, x, y, z, rx,
// ry, rz, cx) directly against the simulator, returning handled=false if
// name is not a gate so the caller falls back to user function lookup.
func (ev *Evaluator) tryGateCall(name string, ex *ast.CallExpr) (Value, bool) {
	args := ex.Args
	switch name {
	case "h":
		ev.sim.H(ev.qubitIndex(args[0]))
	case "x":
		ev.sim.X(ev.qubitIndex(args[0]))
	case "y":
		ev.sim.Y(ev.qubitIndex(args[0]))
	case "z":
		ev.sim.Z(ev.qubitIndex(args[0]))
	case "rx":
		ev.sim.RX(ev.qubitIndex(args[0]), ev.eval(args[1]).AsNumeric())
	case "ry":
		ev.sim.RY(ev.qubitIndex(args[0]), ev.eval(args[1]).AsNumeric())
	case "rz":
		ev.sim.RZ(ev.qubitIndex(args[0]), ev.eval(args[1]).AsNumeric())
	case "cx":
		ev.sim.CX(ev.qubitIndex(args[0]), ev.qubitIndex(args[1]))
	default:
		return Value{}, false
	}
	return VoidValue(), true
}
