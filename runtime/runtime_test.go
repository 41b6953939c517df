package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
	"github.com/bloch-labs/bloch-go/lexer"
	"github.com/bloch-labs/bloch-go/parser"
	"github.com/bloch-labs/bloch-go/semantic"
)

func compile(t *testing.T, src string) (*ast.Program, *semantic.Result) {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		t.Fatalf("unexpected parse error: %v", parseErr)
	}
	res, semErr := semantic.Analyse(prog)
	if semErr != nil {
		t.Fatalf("unexpected semantic error: %v", semErr)
	}
	return prog, res
}

func functionTable(prog *ast.Program) map[string]*ast.FunctionDecl {
	out := make(map[string]*ast.FunctionDecl, len(prog.Functions))
	for _, fn := range prog.Functions {
		out[fn.Name] = fn
	}
	return out
}

func TestRunMainEchoesOutput(t *testing.T) {
	prog, res := compile(t, `function main() -> void { echo(1 + 2); }`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	if got := strings.TrimSpace(buf.String()); got != "3" {
		t.Errorf("got output %q, want %q", got, "3")
	}
}

func TestRunMainClassMethodDispatch(t *testing.T) {
	prog, res := compile(t, `
class Animal {
  public virtual function speak() -> string { return "..."; }
}
class Dog extends Animal {
  public override function speak() -> string { return "Woof"; }
}
function main() -> void {
  Animal a = new Dog();
  echo(a.speak());
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	if got := strings.TrimSpace(buf.String()); got != "Woof" {
		t.Errorf("expected virtual dispatch to pick Dog.speak, got %q", got)
	}
}

func TestRunMainFieldMutationThroughMethod(t *testing.T) {
	prog, res := compile(t, `
class Counter {
  private int count = 0;
  public function increment() -> void { count = count + 1; }
  public function value() -> int { return count; }
}
function main() -> void {
  Counter c = new Counter();
  c.increment();
  c.increment();
  echo(c.value());
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	if got := strings.TrimSpace(buf.String()); got != "2" {
		t.Errorf("got %q, want %q", got, "2")
	}
}

func TestRunMainGateCallsLogQASM(t *testing.T) {
	prog, res := compile(t, `
function main() -> void {
  qubit q;
  h(q);
  measure q;
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	trace := ev.QASM()
	if !strings.Contains(trace, "h q[0];") {
		t.Errorf("expected QASM trace to contain the h gate, got %q", trace)
	}
	if !strings.Contains(trace, "measure q[0] -> c[0];") {
		t.Errorf("expected QASM trace to contain the measurement, got %q", trace)
	}
}

func TestRunMainMeasureAfterMeasureFails(t *testing.T) {
	prog, res := compile(t, `
function main() -> void {
  qubit q;
  h(q);
  measure q;
  x(q);
  measure q;
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()

	var caught *errs.BlochError
	func() {
		defer func() {
			if r := recover(); r != nil {
				if be, ok := r.(*errs.BlochError); ok {
					caught = be
					return
				}
				panic(r)
			}
		}()
		ev.RunMain(prog, res.MainFunc)
	}()
	if caught == nil {
		t.Fatal("expected a runtime error on the second measure of the same qubit")
	}
}

func TestRunMainResetAllowsRemeasure(t *testing.T) {
	prog, res := compile(t, `
function main() -> void {
  qubit q;
  x(q);
  measure q;
  reset q;
  bit b = measure q;
  echo(b);
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	if got := strings.TrimSpace(buf.String()); got != "0" {
		t.Errorf("expected reset qubit to measure 0, got %q", got)
	}
}

func TestRunShotsBellPairTracksMeasurementOutcomes(t *testing.T) {
	prog, res := compile(t, `
@shots(32)
function main() -> void {
  @tracked qubit a;
  @tracked qubit b;
  x(a);
  cx(a, b);
  measure a;
  measure b;
}`)
	var buf bytes.Buffer
	agg, _, err := RunShots(prog, res.Registry, functionTable(prog), res.MainFunc, res.ShotCount, &buf, false)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	aCounts, ok := agg["qubit a"]
	if !ok {
		t.Fatal("expected a tracked bucket keyed 'qubit a'")
	}
	if aCounts["1"] != 32 {
		t.Errorf("expected all 32 shots to measure 'a' as 1 after x(a), got %v", aCounts)
	}
	bCounts, ok := agg["qubit b"]
	if !ok {
		t.Fatal("expected a tracked bucket keyed 'qubit b'")
	}
	if bCounts["1"] != 32 {
		t.Errorf("expected all 32 shots to measure 'b' as 1 via cx(a, b), got %v", bCounts)
	}
}

func TestRunShotsTracksQubitArrayOutcomes(t *testing.T) {
	prog, res := compile(t, `
@shots(16)
function main() -> void {
  @tracked qubit[2] pair;
  x(pair[0]);
  cx(pair[0], pair[1]);
  measure pair[0];
  measure pair[1];
}`)
	var buf bytes.Buffer
	agg, _, err := RunShots(prog, res.Registry, functionTable(prog), res.MainFunc, res.ShotCount, &buf, false)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	counts, ok := agg["qubit[] pair"]
	if !ok {
		t.Fatalf("expected a tracked bucket keyed 'qubit[] pair', got %v", agg)
	}
	if counts["11"] != 16 {
		t.Errorf("expected all 16 shots to measure both qubits as 1, got %v", counts)
	}
}

func TestRunShotsAggregatesTrackedOutcomes(t *testing.T) {
	prog, res := compile(t, `
@shots(20)
function main() -> void {
  qubit q;
  x(q);
  @tracked bit b = measure q;
}`)
	var buf bytes.Buffer
	agg, _, err := RunShots(prog, res.Registry, functionTable(prog), res.MainFunc, res.ShotCount, &buf, false)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	counts, ok := agg["b"]
	if !ok {
		t.Fatal("expected a tracked bucket for 'b'")
	}
	if counts["1"] != 20 {
		t.Errorf("expected all 20 shots to measure 1 after x(q), got %v", counts)
	}
}

func TestOutcomeOrderBinaryFirst(t *testing.T) {
	got := OutcomeOrder([]string{"10", "0", "1", "zebra", "apple"})
	want := []string{"0", "1", "10", "apple", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestForLoopAccumulation(t *testing.T) {
	prog, res := compile(t, `
function main() -> void {
  int total = 0;
  for (int i = 0; i < 5; i++) {
    total = total + i;
  }
  echo(total);
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	if got := strings.TrimSpace(buf.String()); got != "10" {
		t.Errorf("got %q, want %q", got, "10")
	}
}

func TestArrayLiteralIndexing(t *testing.T) {
	prog, res := compile(t, `
function main() -> void {
  int[3] xs = { 10, 20, 30 };
  echo(xs[1]);
}`)
	var buf bytes.Buffer
	ev := NewEvaluator(res.Registry, functionTable(prog), &buf)
	defer ev.Close()
	ev.RunMain(prog, res.MainFunc)
	if got := strings.TrimSpace(buf.String()); got != "20" {
		t.Errorf("got %q, want %q", got, "20")
	}
}
