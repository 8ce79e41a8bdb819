package builder

import (
	"fmt"

	"github.com/kegliz/qplay/qc/circuit"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/kegliz/qplay/qc/macro"
)

// Builder implements a *fluent* declarative DSL for building quantum circuits.
type Builder interface {
	// Single-qubit gates
	H(q int) Builder
	X(q int) Builder
	Y(q int) Builder
	Z(q int) Builder
	S(q int) Builder
	Sdg(q int) Builder
	T(q int) Builder
	Tdg(q int) Builder
	Identity(q int) Builder

	// Parametric single-qubit gates. theta/phi/lambda are plain radians.
	Rx(q int, theta float64) Builder
	Ry(q int, theta float64) Builder
	Rz(q int, theta float64) Builder
	U1(q int, lambda float64) Builder
	U3(q int, theta, phi, lambda float64) Builder

	// Multi-qubit gates
	CNOT(ctrl, tgt int) Builder
	CZ(ctrl, tgt int) Builder
	CY(ctrl, tgt int) Builder
	CH(ctrl, tgt int) Builder
	CRZ(ctrl, tgt int, theta float64) Builder
	CPhase(ctrl, tgt int, theta float64) Builder
	SWAP(q1, q2 int) Builder
	Toffoli(c1, c2, tgt int) Builder
	Fredkin(ctrl, t1, t2 int) Builder

	// Measurement
	Measure(q, cbit int) Builder
	// MeasureAll measures every qubit in ascending order into classical
	// bits 0..n-1. Passing n<0 infers n from the builder's qubit count.
	MeasureAll(n int) Builder

	// ParamMap stores parameter values that later Macro calls merge into
	// their own params map when they are called; a key passed to Macro
	// directly takes precedence.
	ParamMap(values map[string]float64) Builder

	// Macro invokes a named composite-gate factory registered in
	// qc/macro, appending its flattened instructions.
	Macro(name string, qubits []int, params map[string]float64) Builder

	// Finalise
	// BuildDAG returns a validated DAGReader interface.
	// It returns an error if the DAG is invalid.
	BuildDAG() (dag.DAGReader, error)
	BuildCircuit() (circuit.Circuit, error) // convenience façade
}

// New returns a fresh Builder with the requested qubits/classical bits.
func New(opts ...Option) Builder { return newBuilder(opts...) }

// ---------------------------- implementation -------------------------

type b struct {
	dagBuilder dag.DAGBuilder
	err        error
	built      bool
	params     map[string]float64
}

func newBuilder(opts ...Option) *b {
	cfg := config{qubits: 1}
	for _, o := range opts {
		o(&cfg)
	}
	return &b{dagBuilder: dag.New(cfg.qubits, cfg.clbits)}
}

// helper: bail-out pattern
func (b *b) bail(err error) Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Check if already built or if an error occurred
func (b *b) checkState() bool {
	return b.built || b.err != nil
}

func (b *b) H(q int) Builder        { return b.add1(gate.H(), q) }
func (b *b) X(q int) Builder        { return b.add1(gate.X(), q) }
func (b *b) Y(q int) Builder        { return b.add1(gate.Y(), q) }
func (b *b) Z(q int) Builder        { return b.add1(gate.Z(), q) }
func (b *b) S(q int) Builder        { return b.add1(gate.S(), q) }
func (b *b) Sdg(q int) Builder      { return b.add1(gate.Sdg(), q) }
func (b *b) T(q int) Builder        { return b.add1(gate.T(), q) }
func (b *b) Tdg(q int) Builder      { return b.add1(gate.Tdg(), q) }
func (b *b) Identity(q int) Builder { return b.add1(gate.Identity(), q) }

func (b *b) Rx(q int, theta float64) Builder { return b.add1(gate.Rx(gate.Concrete(theta)), q) }
func (b *b) Ry(q int, theta float64) Builder { return b.add1(gate.Ry(gate.Concrete(theta)), q) }
func (b *b) Rz(q int, theta float64) Builder { return b.add1(gate.Rz(gate.Concrete(theta)), q) }
func (b *b) U1(q int, lambda float64) Builder {
	return b.add1(gate.U1(gate.Concrete(lambda)), q)
}
func (b *b) U3(q int, theta, phi, lambda float64) Builder {
	return b.add1(gate.U3(gate.Concrete(theta), gate.Concrete(phi), gate.Concrete(lambda)), q)
}

func (b *b) CNOT(c, t int) Builder         { return b.add2(gate.CNOT(), c, t) }
func (b *b) CZ(c, t int) Builder           { return b.add2(gate.CZ(), c, t) }
func (b *b) CY(c, t int) Builder           { return b.add2(gate.CY(), c, t) }
func (b *b) CH(c, t int) Builder           { return b.add2(gate.CH(), c, t) }
func (b *b) SWAP(q1, q2 int) Builder       { return b.add2(gate.Swap(), q1, q2) }
func (b *b) Toffoli(a, bq, t int) Builder  { return b.add3(gate.Toffoli(), a, bq, t) }
func (b *b) Fredkin(c, t1, t2 int) Builder { return b.add3(gate.Fredkin(), c, t1, t2) }

func (b *b) CRZ(c, t int, theta float64) Builder {
	return b.add2(gate.CRZ(gate.Concrete(theta)), c, t)
}
func (b *b) CPhase(c, t int, theta float64) Builder {
	return b.add2(gate.CPhase(gate.Concrete(theta)), c, t)
}

func (b *b) Measure(q, cbit int) Builder {
	if b.checkState() {
		return b
	}
	if err := b.dagBuilder.AddMeasure(q, cbit); err != nil {
		return b.bail(err)
	}
	return b
}

// MeasureAll measures qubits 0..n-1 into classical bits 0..n-1. n<0
// infers n as (highest qubit touched by any gate so far)+1 by scanning
// the underlying IR, not the declared register size — a builder made
// with Q(10) that only touches {0,3,7} measures 8 qubits, not 10.
func (b *b) MeasureAll(n int) Builder {
	if b.checkState() {
		return b
	}
	if n < 0 {
		n = b.highestQubitTouched() + 1
	}
	for q := 0; q < n; q++ {
		if err := b.dagBuilder.AddMeasure(q, q); err != nil {
			return b.bail(err)
		}
	}
	return b
}

// highestQubitTouched scans the underlying IR for the highest qubit
// index any gate or measurement has touched so far, returning -1 if
// nothing has been added yet.
func (b *b) highestQubitTouched() int {
	reader, ok := b.dagBuilder.(dag.DAGReader)
	if !ok {
		return b.dagBuilder.Qubits() - 1
	}
	max := -1
	for _, node := range reader.Operations() {
		for _, q := range node.Qubits {
			if q > max {
				max = q
			}
		}
	}
	return max
}

// ParamMap binds symbolic-parameter values for subsequent Macro calls.
func (b *b) ParamMap(values map[string]float64) Builder {
	if b.checkState() {
		return b
	}
	if b.params == nil {
		b.params = make(map[string]float64, len(values))
	}
	for k, v := range values {
		b.params[k] = v
	}
	return b
}

// Macro invokes a named composite-gate factory from qc/macro, flattening
// it directly onto the builder's underlying DAG.
func (b *b) Macro(name string, qubits []int, params map[string]float64) Builder {
	if b.checkState() {
		return b
	}
	merged := params
	if len(b.params) > 0 {
		merged = make(map[string]float64, len(b.params)+len(params))
		for k, v := range b.params {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
	}
	if err := macro.Apply(name, b.dagBuilder, qubits, merged); err != nil {
		return b.bail(err)
	}
	return b
}

// BuildDAG validates the internal DAG and returns it as a DAGReader.
// The builder becomes invalid after this call.
func (b *b) BuildDAG() (dag.DAGReader, error) {
	if b.built {
		return nil, fmt.Errorf("builder: BuildDAG or BuildCircuit already called: %w", dag.ErrBuild)
	}
	if b.err != nil {
		return nil, b.err
	}

	// Validate the DAG
	if err := b.dagBuilder.Validate(); err != nil {
		return nil, err
	}

	b.built = true // Mark as built

	// The concrete type (*dag.DAG) should implement DAGReader
	reader, ok := b.dagBuilder.(dag.DAGReader)
	if !ok {
		return nil, fmt.Errorf("builder: internal error - DAG does not implement DAGReader")
	}

	return reader, nil
}

// BuildCircuit is syntactic sugar for the common case where the caller
// immediately converts the DAG into the immutable, renderer‑friendly
// Circuit façade.
func (b *b) BuildCircuit() (circuit.Circuit, error) {
	dagReader, err := b.BuildDAG() // reuse existing validation logic
	if err != nil {
		return nil, err
	}
	return circuit.FromDAG(dagReader), nil
}

// ------------------------- private helpers ---------------------------

func (b *b) add1(g gate.Gate, q int) Builder {
	if b.checkState() {
		return b
	}
	if err := b.dagBuilder.AddGate(g, []int{q}); err != nil {
		return b.bail(err)
	}
	return b
}

func (b *b) add2(g gate.Gate, q0, q1 int) Builder {
	if b.checkState() {
		return b
	}
	if err := b.dagBuilder.AddGate(g, []int{q0, q1}); err != nil {
		return b.bail(err)
	}
	return b
}

func (b *b) add3(g gate.Gate, q0, q1, q2 int) Builder {
	if b.checkState() {
		return b
	}
	if err := b.dagBuilder.AddGate(g, []int{q0, q1, q2}); err != nil {
		return b.bail(err)
	}
	return b
}

// ------------------------- options -----------------------------------

type config struct {
	qubits int
	clbits int
}
type Option func(*config)

func Q(n int) Option { return func(c *config) { c.qubits = n } }
func C(n int) Option { return func(c *config) { c.clbits = n } }
