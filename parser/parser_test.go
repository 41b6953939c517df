package parser

import (
	"testing"

	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, err := Parse(tokens)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseVarDecl(t *testing.T) {
	tests := []struct {
		input string
		name  string
		final bool
	}{
		{"int x = 5;", "x", false},
		{"final float pi = 3.14;", "pi", true},
		{"qubit q;", "q", false},
		{"bit b = 0b;", "b", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := mustParse(t, tt.input)
			if len(prog.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
			}
			vd, ok := prog.Statements[0].(*ast.VarDecl)
			if !ok {
				t.Fatalf("expected *ast.VarDecl, got %T", prog.Statements[0])
			}
			if vd.Name != tt.name {
				t.Errorf("got name %q, want %q", vd.Name, tt.name)
			}
			if vd.Final != tt.final {
				t.Errorf("got final %v, want %v", vd.Final, tt.final)
			}
		})
	}
}

func TestParseTrackedAnnotation(t *testing.T) {
	prog := mustParse(t, "@tracked bit b;")
	vd := prog.Statements[0].(*ast.VarDecl)
	if !vd.Tracked {
		t.Error("expected Tracked to be true")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := mustParse(t, "int x = 1 + 2 * 3;")
	vd := prog.Statements[0].(*ast.VarDecl)
	bin, ok := vd.Initializer.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level *ast.BinaryExpr, got %T", vd.Initializer)
	}
	if bin.Operator != "+" {
		t.Fatalf("expected top-level operator '+', got %q", bin.Operator)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected right side to be *ast.BinaryExpr, got %T", bin.Right)
	}
	if rhs.Operator != "*" {
		t.Errorf("expected nested operator '*', got %q", rhs.Operator)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, "if (x > 0) { echo(x); } else { echo(0); }")
	st, ok := prog.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", prog.Statements[0])
	}
	if st.Else == nil {
		t.Error("expected an else branch")
	}
}

func TestParseForLoop(t *testing.T) {
	prog := mustParse(t, "for (int i = 0; i < 10; i++) { echo(i); }")
	st, ok := prog.Statements[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected *ast.ForStmt, got %T", prog.Statements[0])
	}
	if st.Init == nil || st.Cond == nil || st.Increment == nil {
		t.Error("expected init/cond/increment all present")
	}
}

func TestParseFunctionDecl(t *testing.T) {
	prog := mustParse(t, "function add(int a, int b) -> int { return a + b; }")
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "add" {
		t.Errorf("got name %q, want %q", fn.Name, "add")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseShotsAnnotationOnMain(t *testing.T) {
	prog := mustParse(t, "@shots(100) function main() -> void { qubit q; }")
	fn := prog.Functions[0]
	if !fn.HasShots || fn.ShotCount != 100 {
		t.Errorf("expected HasShots+ShotCount=100, got %v/%d", fn.HasShots, fn.ShotCount)
	}
	if prog.ShotCount != 100 {
		t.Errorf("expected program-level ShotCount 100, got %d", prog.ShotCount)
	}
}

func TestParseQuantumFunction(t *testing.T) {
	prog := mustParse(t, "@quantum function flip() -> bit { qubit q; return measure q; }")
	fn := prog.Functions[0]
	if !fn.Quantum {
		t.Error("expected Quantum to be true")
	}
}

func TestParseClassWithInheritance(t *testing.T) {
	prog := mustParse(t, `
class Animal {
  protected string name;
  public virtual function speak() -> string { return "..."; }
}
class Dog extends Animal {
  public override function speak() -> string { return "Woof"; }
}`)
	if len(prog.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(prog.Classes))
	}
	dog := prog.Classes[1]
	if dog.Base == nil || dog.Base.Name != "Animal" {
		t.Fatalf("expected Dog to extend Animal, got %v", dog.Base)
	}
	if len(dog.Methods) != 1 || !dog.Methods[0].Override {
		t.Error("expected Dog.speak() to be marked override")
	}
}

func TestParseAbstractClass(t *testing.T) {
	prog := mustParse(t, `
abstract class Shape {
  public virtual function area() -> float;
}`)
	cd := prog.Classes[0]
	if !cd.Abstract {
		t.Error("expected Abstract to be true")
	}
	if cd.Methods[0].Body != nil {
		t.Error("expected a bodyless virtual method")
	}
}

func TestParseArrayType(t *testing.T) {
	prog := mustParse(t, "int[5] xs;")
	vd := prog.Statements[0].(*ast.VarDecl)
	at, ok := vd.Type.(*ast.ArrayType)
	if !ok {
		t.Fatalf("expected *ast.ArrayType, got %T", vd.Type)
	}
	if at.SizeKind != ast.ArraySizeLiteral || at.Size != 5 {
		t.Errorf("got SizeKind=%v Size=%d, want literal 5", at.SizeKind, at.Size)
	}
}

func TestParseGateCall(t *testing.T) {
	prog := mustParse(t, "qubit q; h(q); cx(q, q);")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[1].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected *ast.ExpressionStmt, got %T", prog.Statements[1])
	}
	call, ok := es.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected *ast.CallExpr, got %T", es.Expr)
	}
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok || ident.Name != "h" {
		t.Errorf("expected callee 'h', got %v", call.Callee)
	}
}

func TestParseMeasureExprAndStmt(t *testing.T) {
	prog := mustParse(t, "qubit q; bit b = measure q; measure q;")
	vd := prog.Statements[1].(*ast.VarDecl)
	if _, ok := vd.Initializer.(*ast.MeasureExpr); !ok {
		t.Fatalf("expected *ast.MeasureExpr initializer, got %T", vd.Initializer)
	}
	if _, ok := prog.Statements[2].(*ast.MeasureStmt); !ok {
		t.Fatalf("expected *ast.MeasureStmt, got %T", prog.Statements[2])
	}
}

func TestParseMultiDeclarationOverflow(t *testing.T) {
	prog := mustParse(t, "qubit a, b, c;")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 separate qubit declarations, got %d", len(prog.Statements))
	}
	for i, name := range []string{"a", "b", "c"} {
		vd, ok := prog.Statements[i].(*ast.VarDecl)
		if !ok || vd.Name != name {
			t.Errorf("statement %d: expected VarDecl %q, got %#v", i, name, prog.Statements[i])
		}
	}
}

func TestParseNewExprAndMemberAccess(t *testing.T) {
	prog := mustParse(t, `Animal a = new Animal(); a.speak();`)
	vd := prog.Statements[0].(*ast.VarDecl)
	if _, ok := vd.Initializer.(*ast.NewExpr); !ok {
		t.Fatalf("expected *ast.NewExpr, got %T", vd.Initializer)
	}
	es := prog.Statements[1].(*ast.ExpressionStmt)
	call := es.Expr.(*ast.CallExpr)
	member, ok := call.Callee.(*ast.MemberExpr)
	if !ok || member.Member != "speak" {
		t.Fatalf("expected member call 'speak', got %v", call.Callee)
	}
}

func TestParseTernaryExpression(t *testing.T) {
	prog := mustParse(t, "int x = 1 > 0 ? 1 : -1;")
	vd := prog.Statements[0].(*ast.VarDecl)
	if _, ok := vd.Initializer.(*ast.TernaryExpr); !ok {
		t.Fatalf("expected *ast.TernaryExpr, got %T", vd.Initializer)
	}
}

func TestParseSyntaxErrorReported(t *testing.T) {
	tokens, lexErr := lexer.Tokenize("int x = ;")
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	_, err := Parse(tokens)
	if err == nil {
		t.Fatal("expected a parse error for a missing expression")
	}
}
