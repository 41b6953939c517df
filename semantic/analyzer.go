package semantic

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

// Result is the full output of semantic analysis: the class registry
// (consumed by the runtime evaluator to lay out objects and dispatch
// virtual calls) plus the shot count resolved from @shots(N) on main,
// defaulting to 1 when absent (spec §4.3.9).
type Result struct {
	Registry  *symtab.ClassRegistry
	ShotCount int
	MainFunc  *ast.FunctionDecl
}

// Analyse runs both phases of semantic analysis over prog: Phase A
// builds the class registry, Phase B type-checks every function,
// method, constructor, and destructor body plus the top-level
// statement list (spec §4.2).
func Analyse(prog *ast.Program) (res *Result, err *errs.BlochError) {
	defer errs.Recover(&err)

	reg, regErr := buildRegistry(prog)
	if regErr != nil {
		return nil, regErr
	}

	c := newChecker(reg)
	c.checkProgram(prog)

	return &Result{Registry: reg, ShotCount: c.shotCount, MainFunc: c.mainFunc}, nil
}
