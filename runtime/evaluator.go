package runtime

import (
	"fmt"
	"io"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/qasm"
	"github.com/bloch-labs/bloch-go/symtab"
)

// Evaluator executes one shot of a checked program: a fresh qasm
// simulator, a fresh heap, and a fresh global environment, sharing only
// the class registry and function table across shots (spec §4.3,
// §4.3.9). It is not reused across shots — RunShots creates a new one per
// shot via NewEvaluator.
type Evaluator struct {
	reg       *symtab.ClassRegistry
	functions map[string]*ast.FunctionDecl
	classes   map[string]*RuntimeClass

	sim  *qasm.Simulator
	heap *Heap
	env  *Environment

	Tracked map[string]map[string]int // label -> printable outcome -> count
	Out     io.Writer

	qubitAlloc    map[int]bool // allocated qubit indices still live (not destroyed)
	qubitMeasured map[int]bool // has this qubit been measured since allocation/reset
	qubitLastBit  map[int]int  // outcome of the most recent measurement
	freeQubits    []int        // indices released by destroy, recycled by allocQubit

	declaredQubits []qubitDecl // every named qubit/qubit[] declaration this shot, for the unmeasured-at-exit warning

	// WarnOnExit mirrors config.Config.WarnOnExit (spec §6.2's
	// set_warn_on_exit): when true, RunShots prints a warning for every
	// declared qubit left unmeasured at the end of this shot.
	WarnOnExit bool
}

// qubitDecl records one named qubit/qubit[] variable declaration so the
// shot can report it in UnmeasuredDeclared if it is never fully measured.
type qubitDecl struct {
	name    string
	indices []int
}

func NewEvaluator(reg *symtab.ClassRegistry, functions map[string]*ast.FunctionDecl, out io.Writer) *Evaluator {
	ev := &Evaluator{
		reg:           reg,
		functions:     functions,
		classes:       make(map[string]*RuntimeClass),
		sim:           qasm.New(),
		heap:          NewHeap(),
		Tracked:       make(map[string]map[string]int),
		Out:           out,
		qubitAlloc:    make(map[int]bool),
		qubitMeasured: make(map[int]bool),
		qubitLastBit:  make(map[int]int),
	}
	ev.env = NewEnvironment(nil)
	ev.heap.Start(func() []*Object {
		var roots []*Object
		for e := ev.env; e != nil; e = e.outer {
			for _, v := range e.vars {
				if v.Kind == KindObject && v.Obj != nil {
					roots = append(roots, v.Obj)
				}
			}
		}
		return roots
	})
	return ev
}

func (ev *Evaluator) Close() { ev.heap.Stop() }

// QASM returns the accumulated op-log trace text for this shot.
func (ev *Evaluator) QASM() string { return ev.sim.QASM() }

func (ev *Evaluator) runtimeClassFor(name string) *RuntimeClass {
	if rc, ok := ev.classes[name]; ok {
		return rc
	}
	ci, ok := ev.reg.Get(name)
	if !ok {
		errs.Panic(errs.Runtime, errs.Position{}, "unknown class '%s'", name)
	}
	rc := &RuntimeClass{
		Name:             name,
		Info:             ci,
		FieldOrder:       ev.reg.InstanceFieldOrder(name),
		HasTrackedFields: ev.reg.HasTrackedFields(name),
	}
	ev.classes[name] = rc
	return rc
}

// controlSignal is panicked to unwind a return statement up to the
// enclosing function call frame (spec §9: idiomatic replacement for the
// original's exception-based non-local control flow).
type controlSignal struct {
	isReturn bool
	value    Value
}

// RunMain executes one shot: every top-level statement of the program in
// source order, then main()'s body.
func (ev *Evaluator) RunMain(prog *ast.Program, mainFn *ast.FunctionDecl) {
	for _, st := range prog.Statements {
		ev.execStmt(st)
	}
	if mainFn != nil {
		ev.callFunctionBody(mainFn, nil)
	}
}

func (ev *Evaluator) execBlock(b *ast.BlockStmt) {
	outer := ev.env
	ev.env = NewEnvironment(outer)
	defer func() {
		ev.flushScopeTracked(ev.env)
		ev.env = outer
	}()
	for _, st := range b.Statements {
		ev.execStmt(st)
	}
}

// flushScopeTracked records the scope-exit outcome of every @tracked
// qubit/qubit[] binding declared directly in env, per the aggregation
// rule in recordTracked.
func (ev *Evaluator) flushScopeTracked(env *Environment) {
	for _, name := range env.trackedQubits {
		v, ok := env.vars[name]
		if !ok {
			continue
		}
		ev.recordTrackedQubit(name, *v)
	}
}

func (ev *Evaluator) qubitOutcome(idx int) string {
	if !ev.qubitMeasured[idx] {
		return "?"
	}
	return fmt.Sprintf("%d", ev.qubitLastBit[idx])
}

// recordTrackedQubit composes the outcome string for a tracked qubit or
// qubit[] binding and accumulates it under its label (spec §4.3.8).
func (ev *Evaluator) recordTrackedQubit(name string, v Value) {
	switch v.Kind {
	case KindQubit:
		ev.recordTracked("qubit "+name, StringValue(ev.qubitOutcome(v.Qubit)))
	case KindArray:
		ev.recordTracked("qubit[] "+name, StringValue(ev.qubitArrayOutcome(v.Arr)))
	}
}

// qubitArrayOutcome concatenates the per-element measurement outcome of
// arr, or "?" if any element has not been measured (spec §4.3.8).
func (ev *Evaluator) qubitArrayOutcome(arr []Value) string {
	outcome := ""
	for _, e := range arr {
		if e.Kind != KindQubit || !ev.qubitMeasured[e.Qubit] {
			return "?"
		}
		outcome += fmt.Sprintf("%d", ev.qubitLastBit[e.Qubit])
	}
	return outcome
}

// UnmeasuredDeclared returns the names of declared (non-anonymous)
// qubit/qubit[] variables that were not fully measured by the end of this
// shot (spec §7's exit-time warning).
func (ev *Evaluator) UnmeasuredDeclared() []string {
	var names []string
	for _, d := range ev.declaredQubits {
		for _, idx := range d.indices {
			if !ev.qubitMeasured[idx] {
				names = append(names, d.name)
				break
			}
		}
	}
	return names
}

func (ev *Evaluator) execStmt(st ast.Statement) {
	switch s := st.(type) {
	case *ast.VarDecl:
		ev.execVarDecl(s)
	case *ast.BlockStmt:
		ev.execBlock(s)
	case *ast.ExpressionStmt:
		ev.eval(s.Expr)
	case *ast.ReturnStmt:
		var v Value
		if s.Value != nil {
			v = ev.eval(s.Value)
		} else {
			v = VoidValue()
		}
		panic(controlSignal{isReturn: true, value: v})
	case *ast.IfStmt:
		if ev.eval(s.Cond).IsTruthy() {
			ev.execStmt(s.Then)
		} else if s.Else != nil {
			ev.execStmt(s.Else)
		}
	case *ast.TernaryStmt:
		if ev.eval(s.Cond).IsTruthy() {
			ev.execStmt(s.Then)
		} else {
			ev.execStmt(s.Else)
		}
	case *ast.ForStmt:
		outer := ev.env
		ev.env = NewEnvironment(outer)
		if s.Init != nil {
			ev.execStmt(s.Init)
		}
		for s.Cond == nil || ev.eval(s.Cond).IsTruthy() {
			ev.execStmt(s.Body)
			if s.Increment != nil {
				ev.execStmt(s.Increment)
			}
		}
		ev.env = outer
	case *ast.WhileStmt:
		for ev.eval(s.Cond).IsTruthy() {
			ev.execStmt(s.Body)
		}
	case *ast.EchoStmt:
		v := ev.eval(s.Value)
		fmt.Fprintln(ev.Out, v.Printable())
	case *ast.ResetStmt:
		ev.execReset(s.Target)
	case *ast.MeasureStmt:
		ev.execMeasure(s.Target)
	case *ast.DestroyStmt:
		ev.execDestroy(s.Target)
	case *ast.AssignStmt:
		v := ev.eval(s.Value)
		ev.env.Set(s.Name, v)
	default:
		errs.Panic(errs.Runtime, st.Pos(), "unsupported statement at runtime")
	}
}

func (ev *Evaluator) execVarDecl(s *ast.VarDecl) {
	var v Value
	if s.Initializer != nil {
		v = ev.eval(s.Initializer)
	} else if prim, ok := s.Type.(*ast.PrimitiveType); ok && prim.Kind == ast.QubitKind {
		idx := ev.allocQubit()
		v = QubitValue(idx)
		ev.declaredQubits = append(ev.declaredQubits, qubitDecl{name: s.Name, indices: []int{idx}})
	} else if arr, ok := s.Type.(*ast.ArrayType); ok && isQubitElement(arr.ElementType) {
		elems := make([]Value, arr.Size)
		indices := make([]int, arr.Size)
		for i := range elems {
			idx := ev.allocQubit()
			elems[i] = QubitValue(idx)
			indices[i] = idx
		}
		v = ArrayValue(elems)
		ev.declaredQubits = append(ev.declaredQubits, qubitDecl{name: s.Name, indices: indices})
	} else {
		v = zeroValue(s.Type)
	}
	ev.env.Define(s.Name, v)
	if s.Tracked {
		switch v.Kind {
		case KindQubit, KindArray:
			ev.env.trackedQubits = append(ev.env.trackedQubits, s.Name)
		default:
			ev.recordTracked(s.Name, v)
		}
	}
}

func isQubitElement(t ast.Type) bool {
	prim, ok := t.(*ast.PrimitiveType)
	return ok && prim.Kind == ast.QubitKind
}

func zeroValue(t ast.Type) Value {
	switch tt := t.(type) {
	case *ast.PrimitiveType:
		switch tt.Kind {
		case ast.IntKind:
			return IntValue(0)
		case ast.LongKind:
			return LongValue(0)
		case ast.FloatKind:
			return FloatValue(0)
		case ast.BitKind:
			return BitValue(0)
		case ast.BooleanKind:
			return BoolValue(false)
		case ast.StringKind:
			return StringValue("")
		case ast.CharKind:
			return CharValue(0)
		case ast.QubitKind:
			return QubitValue(0)
		}
	case *ast.ArrayType:
		return ArrayValue(nil)
	}
	return NullValue()
}

// allocQubit hands out a fresh qubit index, preferring one recycled by a
// prior releaseQubit over growing the simulator's state vector (spec
// §4.3.5's qubit allocation paragraph: "Indices are reused via a free
// list when a qubit is explicitly released").
func (ev *Evaluator) allocQubit() int {
	if n := len(ev.freeQubits); n > 0 {
		idx := ev.freeQubits[n-1]
		ev.freeQubits = ev.freeQubits[:n-1]
		ev.sim.Reset(idx)
		delete(ev.qubitMeasured, idx)
		ev.qubitAlloc[idx] = true
		return idx
	}
	idx := ev.sim.AllocateQubit()
	ev.qubitAlloc[idx] = true
	return idx
}

// releaseQubit resets idx to |0⟩, clears its measured flag, and returns it
// to the free list — the "reset and release the underlying simulator
// qubit" step of object/qubit destruction (spec §4.3.6, §4.3.5).
func (ev *Evaluator) releaseQubit(idx int) {
	if !ev.qubitAlloc[idx] {
		return
	}
	ev.sim.Reset(idx)
	delete(ev.qubitMeasured, idx)
	delete(ev.qubitAlloc, idx)
	ev.freeQubits = append(ev.freeQubits, idx)
}

// recordTracked accumulates one shot's outcome for a @tracked
// declaration, keyed by its printable value (spec §4.3.9).
func (ev *Evaluator) recordTracked(name string, v Value) {
	bucket, ok := ev.Tracked[name]
	if !ok {
		bucket = make(map[string]int)
		ev.Tracked[name] = bucket
	}
	bucket[v.Printable()]++
}

func (ev *Evaluator) qubitIndex(target ast.Expression) int {
	v := ev.eval(target)
	if v.Kind != KindQubit {
		errs.Panic(errs.Runtime, target.Pos(), "expected a qubit value")
	}
	return v.Qubit
}

func (ev *Evaluator) execReset(target ast.Expression) {
	idx := ev.qubitIndex(target)
	ev.sim.Reset(idx)
	delete(ev.qubitMeasured, idx)
}

func (ev *Evaluator) execMeasure(target ast.Expression) Value {
	idx := ev.qubitIndex(target)
	if ev.qubitMeasured[idx] {
		errs.Panic(errs.Runtime, target.Pos(), "qubit %s has already been measured", describeQubitTarget(target))
	}
	res := ev.sim.Measure(idx)
	ev.qubitMeasured[idx] = true
	ev.qubitLastBit[idx] = res
	return BitValue(res)
}

// describeQubitTarget renders a qubit-valued expression for error messages;
// an indexed element renders as "<name>[<index>]", and other targets fall
// back to a generic description.
func describeQubitTarget(target ast.Expression) string {
	if id, ok := target.(*ast.Identifier); ok {
		return id.Name
	}
	if ix, ok := target.(*ast.IndexExpr); ok {
		return ix.String()
	}
	return "<expr>"
}

func (ev *Evaluator) execDestroy(target ast.Expression) {
	v := ev.eval(target)
	switch v.Kind {
	case KindQubit:
		ev.releaseQubit(v.Qubit)
	case KindObject:
		if v.Obj != nil && !v.Obj.freed {
			ev.runDestructorChain(v.Obj)
			v.Obj.freed = true
		}
	}
	ev.clearTarget(target)
	ev.heap.RequestGC()
}

// clearTarget overwrites the binding destroy named with a cleared Value
// (spec §4.3.5: "clears the referenced variable or field binding... if e
// is an object field, the field slot is overwritten with a cleared
// Value"), so a destroyed reference reads back as null rather than its
// stale contents.
func (ev *Evaluator) clearTarget(target ast.Expression) {
	switch tgt := target.(type) {
	case *ast.Identifier:
		if ev.env.Set(tgt.Name, NullValue()) {
			return
		}
		if this, ok := ev.env.Get("this"); ok && this.Kind == KindObject {
			this.Obj.Fields[tgt.Name] = NullValue()
		}
	case *ast.MemberExpr:
		obj := ev.eval(tgt.Object)
		if obj.Kind == KindObject && obj.Obj != nil {
			obj.Obj.Fields[tgt.Member] = NullValue()
		}
	case *ast.IndexExpr:
		col := ev.eval(tgt.Collection)
		idx := ev.eval(tgt.Index)
		i := int(idx.Int)
		if i >= 0 && i < len(col.Arr) {
			col.Arr[i] = NullValue()
		}
	}
}

// runDestructorChain runs obj's destructor chain leaf-to-root unless
// skipDtor is set (spec §4.3.6's "Object destruction" bullet): each
// class's own destructor body runs first (if declared and not the
// `= default` sentinel), then that class's own tracked qubit/qubit[]
// fields are recorded and released, before recursing into the base class.
func (ev *Evaluator) runDestructorChain(obj *Object) {
	if obj.skipDtor {
		return
	}
	ev.runDestructorFrame(obj.Class.Info, obj)
}

func (ev *Evaluator) runDestructorFrame(ci *symtab.ClassInfo, obj *Object) {
	if ci.Destructor != nil && !ci.Destructor.IsDefault && ci.Destructor.Body != nil {
		outerEnv := ev.env
		ev.env = NewEnvironment(nil)
		ev.env.Define("this", ObjectValue(obj))
		ev.runBodyCatchingReturn(ci.Destructor.Body)
		ev.env = outerEnv
	}
	ev.releaseObjectFields(ci, obj)
	if base, ok := ev.reg.Get(ci.Base); ok {
		ev.runDestructorFrame(base, obj)
	}
}

// releaseObjectFields records ci's own tracked qubit/qubit[] fields under
// label "ClassName.fieldName" (spec §4.3.8) and releases every qubit
// field's simulator qubit, tracked or not.
func (ev *Evaluator) releaseObjectFields(ci *symtab.ClassInfo, obj *Object) {
	for _, fname := range ci.FieldOrder {
		fi := ci.Fields[fname]
		if fi.Static {
			continue
		}
		v, ok := obj.Fields[fname]
		if !ok {
			continue
		}
		switch v.Kind {
		case KindQubit:
			if fi.Tracked {
				ev.recordTracked(ci.Name+"."+fname, StringValue(ev.qubitOutcome(v.Qubit)))
			}
			ev.releaseQubit(v.Qubit)
		case KindArray:
			if fi.Tracked {
				ev.recordTracked(ci.Name+"."+fname, StringValue(ev.qubitArrayOutcome(v.Arr)))
			}
			for _, e := range v.Arr {
				if e.Kind == KindQubit {
					ev.releaseQubit(e.Qubit)
				}
			}
		}
	}
}

// finalizeHeap runs the destructor chain for every object still registered
// and not yet freed at shot end; this includes tracked-field objects, which
// the collector never sweeps (spec §4.3.7).
func (ev *Evaluator) finalizeHeap() {
	for _, obj := range ev.heap.AllObjects() {
		if obj.freed {
			continue
		}
		ev.runDestructorChain(obj)
		obj.freed = true
	}
}
