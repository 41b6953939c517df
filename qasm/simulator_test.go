package qasm

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAllocateQubitGrowsState(t *testing.T) {
	s := New()
	if s.NumQubits() != 0 {
		t.Fatalf("expected 0 qubits initially, got %d", s.NumQubits())
	}
	q0 := s.AllocateQubit()
	q1 := s.AllocateQubit()
	if q0 != 0 || q1 != 1 {
		t.Errorf("expected indices 0,1, got %d,%d", q0, q1)
	}
	if s.NumQubits() != 2 {
		t.Errorf("expected 2 qubits, got %d", s.NumQubits())
	}
}

func TestHadamardProducesEvenSuperposition(t *testing.T) {
	s := New()
	q := s.AllocateQubit()
	zeros, ones := 0, 0
	for i := 0; i < 200; i++ {
		s.Reset(q)
		s.H(q)
		if s.Measure(q) == 0 {
			zeros++
		} else {
			ones++
		}
	}
	if zeros == 0 || ones == 0 {
		t.Errorf("expected both outcomes across 200 trials, got zeros=%d ones=%d", zeros, ones)
	}
}

func TestXGateFlipsQubit(t *testing.T) {
	s := New()
	q := s.AllocateQubit()
	s.X(q)
	if got := s.Measure(q); got != 1 {
		t.Errorf("expected X|0> to measure 1, got %d", got)
	}
}

func TestCXEntanglesQubits(t *testing.T) {
	s := New()
	c := s.AllocateQubit()
	tgt := s.AllocateQubit()
	s.X(c)
	s.CX(c, tgt)
	if got := s.Measure(tgt); got != 1 {
		t.Errorf("expected CX to flip target when control is 1, got %d", got)
	}
}

func TestCXNoOpWhenControlZero(t *testing.T) {
	s := New()
	c := s.AllocateQubit()
	tgt := s.AllocateQubit()
	s.CX(c, tgt)
	if got := s.Measure(tgt); got != 0 {
		t.Errorf("expected CX to leave target at 0 when control is 0, got %d", got)
	}
}

func TestResetForcesZero(t *testing.T) {
	s := New()
	q := s.AllocateQubit()
	s.X(q)
	s.Reset(q)
	if got := s.Measure(q); got != 0 {
		t.Errorf("expected reset qubit to measure 0, got %d", got)
	}
}

func TestTotalNormPreservedByGates(t *testing.T) {
	s := New()
	q0 := s.AllocateQubit()
	q1 := s.AllocateQubit()
	s.H(q0)
	s.RX(q1, 0.7)
	s.RY(q0, 1.2)
	s.RZ(q1, 0.3)
	s.CX(q0, q1)
	if got := s.TotalNorm(); !almostEqual(got, 1.0, 1e-9) {
		t.Errorf("expected unit norm after unitary gates, got %v", got)
	}
}

func TestQASMHeaderAndOps(t *testing.T) {
	s := New()
	q := s.AllocateQubit()
	s.H(q)
	s.Measure(q)
	out := s.QASM()
	if !strings.HasPrefix(out, "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[1];\ncreg c[1];\n") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "h q[0];\n") {
		t.Error("expected logged 'h q[0];' op")
	}
	if !strings.Contains(out, "measure q[0] -> c[0];\n") {
		t.Error("expected logged measure op")
	}
}

func TestEnsureActivePanicsOnOutOfRange(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic for an out-of-range qubit index")
		}
	}()
	s := New()
	s.Measure(0)
}
