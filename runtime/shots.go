package runtime

import (
	"fmt"
	"io"
	"sort"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/symtab"
)

// ShotResult is the outcome of executing the program once (spec §4.3.9).
type ShotResult struct {
	Tracked map[string]map[string]int
	QASM    string
}

// RunShots executes prog's main shotCount times, each against a fresh
// Evaluator (fresh simulator, heap, and globals), and merges every
// shot's tracked-variable counts into one aggregate table keyed by
// variable label.
func RunShots(prog *ast.Program, reg *symtab.ClassRegistry, functions map[string]*ast.FunctionDecl, mainFn *ast.FunctionDecl, shotCount int, out io.Writer, warnOnExit bool) (agg map[string]map[string]int, lastQASM string, err *errs.BlochError) {
	defer errs.Recover(&err)

	agg = make(map[string]map[string]int)
	if shotCount < 1 {
		shotCount = 1
	}
	for i := 0; i < shotCount; i++ {
		ev := NewEvaluator(reg, functions, out)
		ev.WarnOnExit = warnOnExit
		ev.RunMain(prog, mainFn)
		ev.finalizeHeap()
		if ev.WarnOnExit {
			for _, name := range ev.UnmeasuredDeclared() {
				fmt.Fprintf(out, "[WARNING]: Qubit %s was left unmeasured. No classical value will be returned.\n", name)
			}
		}
		for label, counts := range ev.Tracked {
			bucket, ok := agg[label]
			if !ok {
				bucket = make(map[string]int)
				agg[label] = bucket
			}
			for outcome, n := range counts {
				bucket[outcome] += n
			}
		}
		lastQASM = ev.QASM()
		ev.Close()
	}
	return agg, lastQASM, nil
}

// OutcomeOrder sorts a tracked variable's distinct outcomes: binary
// strings ('0'/'1' runs) first ordered by ascending bit-width then
// ascending numeric value, any remaining outcomes last in lexicographic
// order (spec §6.3's aggregate-table presentation rule).
func OutcomeOrder(outcomes []string) []string {
	isBinary := func(s string) bool {
		if s == "" {
			return false
		}
		for _, r := range s {
			if r != '0' && r != '1' {
				return false
			}
		}
		return true
	}
	sorted := append([]string(nil), outcomes...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		aBin, bBin := isBinary(a), isBinary(b)
		if aBin != bBin {
			return aBin
		}
		if aBin && bBin {
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			return a < b
		}
		return a < b
	})
	return sorted
}
