package semantic

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
)

// gateArity describes a built-in quantum gate's expected argument
// kinds: a run of qubit targets, optionally followed by a single float
// rotation angle (spec §4.3.6: h, x, y, z, rx, ry, rz, cx).
type gateArity struct {
	qubitArgs int
	hasAngle  bool
}

var gateSignatures = map[string]gateArity{
	"h":  {qubitArgs: 1},
	"x":  {qubitArgs: 1},
	"y":  {qubitArgs: 1},
	"z":  {qubitArgs: 1},
	"rx": {qubitArgs: 1, hasAngle: true},
	"ry": {qubitArgs: 1, hasAngle: true},
	"rz": {qubitArgs: 1, hasAngle: true},
	"cx": {qubitArgs: 2},
}

func quantumGateSignature(name string) (gateArity, bool) {
	g, ok := gateSignatures[name]
	return g, ok
}

func (c *Checker) checkGateArgs(ex *ast.CallExpr, g gateArity) {
	want := g.qubitArgs
	if g.hasAngle {
		want++
	}
	if len(ex.Args) != want {
		errs.Panic(errs.Semantic, ex.Position, "gate call expects %d argument(s), got %d", want, len(ex.Args))
	}
	for i := 0; i < g.qubitArgs; i++ {
		t := c.checkExpr(ex.Args[i])
		if !t.IsPrimitive || t.Primitive != ast.QubitKind {
			errs.Panic(errs.Semantic, ex.Args[i].Pos(), "gate argument %d must be a qubit, got %s", i+1, t)
		}
	}
	if g.hasAngle {
		t := c.checkExpr(ex.Args[g.qubitArgs])
		if !t.IsNumeric() {
			errs.Panic(errs.Semantic, ex.Args[g.qubitArgs].Pos(), "gate rotation angle must be numeric, got %s", t)
		}
	}
}
