// Package qasm implements the ideal statevector simulator the runtime
// evaluator drives (spec §4.4): a dynamically-sized complex-amplitude
// vector, single- and two-qubit gate kernels, reset/measure collapse, and
// a textual QASM 2.0 operation log. Gate matrices and op-log line formats
// are locked to the C++ reference implementation's exact conventions
// (SPEC_FULL.md "Supplemented features").
package qasm

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"strings"
)

// Simulator is an ideal, noiseless statevector simulator over n allocated
// qubits. It is not safe for concurrent use — the runtime evaluator's main
// thread is its only caller (spec §5).
type Simulator struct {
	state []complex128
	ops   []string
	rng   *rand.Rand
}

// New creates a simulator with zero qubits allocated (the state vector
// starts as the length-1 vector [1] representing the empty tensor
// product, i.e. the implicit |⟩ = 1 scalar).
func New() *Simulator {
	return &Simulator{state: []complex128{1}, rng: rand.New(rand.NewSource(1))}
}

// NumQubits returns the number of allocated qubits.
func (s *Simulator) NumQubits() int {
	n := 0
	for sz := len(s.state); sz > 1; sz >>= 1 {
		n++
	}
	return n
}

// AllocateQubit grows the state vector by a factor of two: the new
// qubit's |0⟩ subspace inherits the current amplitudes, the |1⟩ subspace
// starts at zero. Returns the new qubit's index.
func (s *Simulator) AllocateQubit() int {
	index := s.NumQubits()
	newState := make([]complex128, len(s.state)*2)
	copy(newState, s.state)
	s.state = newState
	return index
}

func (s *Simulator) ensureActive(q int) {
	if q < 0 || q >= s.NumQubits() {
		panic(fmt.Sprintf("qubit index %d is out of range", q))
	}
}

func (s *Simulator) applySingleQubitGate(q int, m [4]complex128) {
	s.ensureActive(q)
	step := 1 << uint(q)
	size := len(s.state)
	for i := 0; i < size; i += 2 * step {
		for j := 0; j < step; j++ {
			idx0 := i + j
			idx1 := idx0 + step
			a0, a1 := s.state[idx0], s.state[idx1]
			s.state[idx0] = m[0]*a0 + m[1]*a1
			s.state[idx1] = m[2]*a0 + m[3]*a1
		}
	}
}

func (s *Simulator) H(q int) {
	inv := complex(1/math.Sqrt2, 0)
	s.applySingleQubitGate(q, [4]complex128{inv, inv, inv, -inv})
	s.logOp(fmt.Sprintf("h q[%d];\n", q))
}

func (s *Simulator) X(q int) {
	s.applySingleQubitGate(q, [4]complex128{0, 1, 1, 0})
	s.logOp(fmt.Sprintf("x q[%d];\n", q))
}

func (s *Simulator) Y(q int) {
	s.applySingleQubitGate(q, [4]complex128{0, complex(0, -1), complex(0, 1), 0})
	s.logOp(fmt.Sprintf("y q[%d];\n", q))
}

func (s *Simulator) Z(q int) {
	s.applySingleQubitGate(q, [4]complex128{1, 0, 0, -1})
	s.logOp(fmt.Sprintf("z q[%d];\n", q))
}

func (s *Simulator) RX(q int, theta float64) {
	ct := complex(math.Cos(theta/2), 0)
	st := complex(0, -math.Sin(theta/2))
	s.applySingleQubitGate(q, [4]complex128{ct, st, st, ct})
	s.logOp(fmt.Sprintf("rx(%v) q[%d];\n", theta, q))
}

func (s *Simulator) RY(q int, theta float64) {
	ct := complex(math.Cos(theta/2), 0)
	st := complex(math.Sin(theta/2), 0)
	s.applySingleQubitGate(q, [4]complex128{ct, -st, st, ct})
	s.logOp(fmt.Sprintf("ry(%v) q[%d];\n", theta, q))
}

func (s *Simulator) RZ(q int, theta float64) {
	epos := cmplx.Exp(complex(0, -theta/2))
	eneg := cmplx.Exp(complex(0, theta/2))
	s.applySingleQubitGate(q, [4]complex128{epos, 0, 0, eneg})
	s.logOp(fmt.Sprintf("rz(%v) q[%d];\n", theta, q))
}

// CX applies a controlled-X: amplitudes are swapped between the
// control=1,target=0 and control=1,target=1 subspaces.
func (s *Simulator) CX(control, target int) {
	s.ensureActive(control)
	s.ensureActive(target)
	cbit := 1 << uint(control)
	tbit := 1 << uint(target)
	for i := range s.state {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			s.state[i], s.state[j] = s.state[j], s.state[i]
		}
	}
	s.logOp(fmt.Sprintf("cx q[%d],q[%d];\n", control, target))
}

// Reset projects qubit q to |0⟩. If the |0⟩ subspace has zero norm (the
// qubit is deterministically |1⟩), the |1⟩ amplitudes are swapped into
// |0⟩ instead of failing, so Reset never produces NaNs (spec §4.4).
func (s *Simulator) Reset(q int) {
	s.ensureActive(q)
	bit := 1 << uint(q)
	norm0 := 0.0
	for i, a := range s.state {
		if i&bit == 0 {
			norm0 += cmplx.Abs(a) * cmplx.Abs(a)
		}
	}
	if norm0 == 0 {
		for i, a := range s.state {
			if i&bit != 0 {
				j := i &^ bit
				s.state[j] = a
				s.state[i] = 0
			}
		}
	} else {
		inv := 1 / math.Sqrt(norm0)
		for i := range s.state {
			if i&bit != 0 {
				s.state[i] = 0
			} else {
				s.state[i] *= complex(inv, 0)
			}
		}
	}
	s.logOp(fmt.Sprintf("reset q[%d];\n", q))
}

// Measure samples the computational-basis outcome of qubit q, collapses
// the state, and returns 0 or 1.
func (s *Simulator) Measure(q int) int {
	s.ensureActive(q)
	bit := 1 << uint(q)
	p1 := 0.0
	for i, a := range s.state {
		if i&bit != 0 {
			p1 += cmplx.Abs(a) * cmplx.Abs(a)
		}
	}
	r := s.rng.Float64()
	res := 0
	if r < p1 {
		res = 1
	}
	norm := math.Sqrt(p1)
	if res == 0 {
		norm = math.Sqrt(1 - p1)
	}
	for i := range s.state {
		bitSet := 0
		if i&bit != 0 {
			bitSet = 1
		}
		if bitSet != res {
			s.state[i] = 0
		} else if norm > 0 {
			s.state[i] /= complex(norm, 0)
		}
	}
	s.logOp(fmt.Sprintf("measure q[%d] -> c[%d];\n", q, q))
	return res
}

func (s *Simulator) logOp(line string) { s.ops = append(s.ops, line) }

// QASM renders the fixed four-line header plus one recorded operation
// line per applied gate/reset/measurement, in application order,
// terminated by a trailing newline (spec §4.4, §6.4).
func (s *Simulator) QASM() string {
	var sb strings.Builder
	n := s.NumQubits()
	fmt.Fprintf(&sb, "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[%d];\ncreg c[%d];\n", n, n)
	for _, op := range s.ops {
		sb.WriteString(op)
	}
	return sb.String()
}

// TotalNorm returns Σ|S[i]|², used by tests asserting the unitarity
// invariant (spec §8).
func (s *Simulator) TotalNorm() float64 {
	total := 0.0
	for _, a := range s.state {
		total += cmplx.Abs(a) * cmplx.Abs(a)
	}
	return total
}
