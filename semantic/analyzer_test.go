package semantic

import (
	"testing"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/lexer"
	"github.com/bloch-labs/bloch-go/parser"
)

func mustAnalyse(t *testing.T, src string) *Result {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		t.Fatalf("unexpected parse error: %v", parseErr)
	}
	res, err := Analyse(prog)
	if err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	return res
}

func analyseExpectError(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		t.Fatalf("unexpected parse error: %v", parseErr)
	}
	if _, err := Analyse(prog); err == nil {
		t.Fatal("expected a semantic error")
	}
	return prog
}

func TestAnalyseValidProgram(t *testing.T) {
	mustAnalyse(t, `
function main() -> void {
  int x = 1 + 2;
  echo(x);
}`)
}

func TestAnalyseDefaultShotCount(t *testing.T) {
	res := mustAnalyse(t, `function main() -> void { }`)
	if res.ShotCount != 1 {
		t.Errorf("expected default shot count 1, got %d", res.ShotCount)
	}
}

func TestAnalyseShotsFromAnnotation(t *testing.T) {
	res := mustAnalyse(t, `@shots(50) function main() -> void { }`)
	if res.ShotCount != 50 {
		t.Errorf("expected shot count 50, got %d", res.ShotCount)
	}
}

func TestAnalyseTypeMismatchRejected(t *testing.T) {
	analyseExpectError(t, `function main() -> void { int x = "hello"; }`)
}

func TestAnalyseUndeclaredIdentifierRejected(t *testing.T) {
	analyseExpectError(t, `function main() -> void { echo(undeclared); }`)
}

func TestAnalyseFinalReassignmentRejected(t *testing.T) {
	analyseExpectError(t, `function main() -> void { final int x = 1; x = 2; }`)
}

func TestAnalyseNarrowingRejected(t *testing.T) {
	analyseExpectError(t, `function main() -> void { long l = 5L; int i = l; }`)
}

func TestAnalyseWideningAccepted(t *testing.T) {
	mustAnalyse(t, `function main() -> void { int i = 5; long l = i; float f = l; }`)
}

func TestAnalyseClassFieldAndMethod(t *testing.T) {
	mustAnalyse(t, `
class Counter {
  private int count = 0;
  public function increment() -> void { count = count + 1; }
  public function value() -> int { return count; }
}
function main() -> void {
  Counter c = new Counter();
  c.increment();
}`)
}

func TestAnalyseAbstractClassCannotBeInstantiated(t *testing.T) {
	analyseExpectError(t, `
abstract class Shape {
  public virtual function area() -> float;
}
function main() -> void {
  Shape s = new Shape();
}`)
}

func TestAnalyseUnimplementedAbstractMethodRejected(t *testing.T) {
	analyseExpectError(t, `
abstract class Shape {
  public virtual function area() -> float;
}
class Circle extends Shape {
  private float radius = 1.0;
}`)
}

func TestAnalyseOverrideSatisfiesAbstractMethod(t *testing.T) {
	mustAnalyse(t, `
abstract class Shape {
  public virtual function area() -> float;
}
class Circle extends Shape {
  private float radius = 1.0;
  public override function area() -> float { return radius; }
}
function main() -> void {
  Circle c = new Circle();
}`)
}

func TestAnalyseHidingVirtualWithoutOverrideRejected(t *testing.T) {
	analyseExpectError(t, `
class Animal {
  public virtual function speak() -> string { return "..."; }
}
class Dog extends Animal {
  public function speak() -> string { return "Woof"; }
}`)
}

func TestAnalyseInheritanceCycleRejected(t *testing.T) {
	analyseExpectError(t, `
class A extends B {
}
class B extends A {
}`)
}

func TestAnalyseQuantumFunctionReturnType(t *testing.T) {
	// The bit/bit[]/void restriction on @quantum return types is enforced
	// by the parser, so the program is rejected before Analyse runs.
	tokens, lexErr := lexer.Tokenize(`@quantum function f() -> int { return 1; }`)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	if _, parseErr := parser.Parse(tokens); parseErr == nil {
		t.Fatal("expected an error for a @quantum function returning int")
	}
}

func TestAnalyseGateCallOnNonQubitRejected(t *testing.T) {
	analyseExpectError(t, `function main() -> void { int x = 0; h(x); }`)
}

func TestAnalyseGateCallOnQubitAccepted(t *testing.T) {
	mustAnalyse(t, `function main() -> void { qubit q; h(q); cx(q, q); }`)
}

func TestAnalyseGateCallRejectedInOrdinaryFunction(t *testing.T) {
	analyseExpectError(t, `
function flip() -> void { qubit q; h(q); }
function main() -> void { flip(); }`)
}

func TestAnalyseBellPairInMainWithoutQuantumAnnotation(t *testing.T) {
	res := mustAnalyse(t, `
@shots(1024)
function main() -> void {
  @tracked qubit a;
  @tracked qubit b;
  h(a);
  cx(a, b);
  measure a;
  measure b;
}`)
	if res.ShotCount != 1024 {
		t.Errorf("expected shot count 1024, got %d", res.ShotCount)
	}
}

func TestAnalyseConstArraySizeFolding(t *testing.T) {
	mustAnalyse(t, `
function main() -> void {
  final int n = 3;
  int[n] xs;
}`)
}

func TestAnalyseTrackedOnNonTrackableTypeRejected(t *testing.T) {
	analyseExpectError(t, `
class Foo {}
function main() -> void { @tracked Foo f = new Foo(); }`)
}

func TestAnalyseTrackedQubitArrayAccepted(t *testing.T) {
	mustAnalyse(t, `
function main() -> void {
  @tracked qubit[2] pair;
  h(pair[0]);
  cx(pair[0], pair[1]);
  measure pair[0];
  measure pair[1];
}`)
}
