package macro

import (
	"fmt"

	"github.com/kegliz/qplay/qc/gate"
)

// recordedOp is one gate captured by recordingTarget.
type recordedOp struct {
	gate   gate.Gate
	qubits []int
}

// recordingTarget implements Target by buffering gates instead of
// committing them, so a factory built from self-inverse gates (CNOT,
// Toffoli) can be replayed in reverse to invert it — the same trick
// used below to derive subtraction from rippleAdderFactory.
type recordingTarget struct {
	ops []recordedOp
}

func (r *recordingTarget) AddGate(g gate.Gate, qs []int) error {
	r.ops = append(r.ops, recordedOp{gate: g, qubits: append([]int{}, qs...)})
	return nil
}
func (r *recordingTarget) AddMeasure(int, int) error {
	return fmt.Errorf("macro: measurement not supported while recording for inversion")
}
func (r *recordingTarget) Validate() error { return nil }
func (r *recordingTarget) Qubits() int     { return 0 }
func (r *recordingTarget) Clbits() int     { return 0 }

func replayReversed(t Target, ops []recordedOp) error {
	for i := len(ops) - 1; i >= 0; i-- {
		if err := t.AddGate(ops[i].gate, ops[i].qubits); err != nil {
			return err
		}
	}
	return nil
}

// subtractionFactory computes bReg -= a in place by recording
// rippleAdderFactory's gate sequence and replaying it in reverse order:
// CNOT and Toffoli are involutions, so reversing the order of a
// circuit built only from them inverts the circuit as a whole, turning
// "bReg += a" into "bReg -= a".
//
// qubits = [a_0..a_{n-1}, b_0..b_{n-1}, carry_0..carry_n], params["bits"]=n.
func subtractionFactory(t Target, qubits []int, params map[string]float64) error {
	rec := &recordingTarget{}
	if err := rippleAdderFactory(rec, qubits, params); err != nil {
		return err
	}
	return replayReversed(t, rec.ops)
}

// controlledRippleAdd is rippleAdderFactory with every gate gated by an
// extra control qubit: each CNOT becomes a Toffoli with ctrl as the
// extra control, each Toffoli becomes a multi-controlled-X with ctrl
// added to its controls — so the whole adder is a no-op when ctrl=0.
func controlledRippleAdd(t Target, ctrl int, a, bReg, c []int) error {
	n := len(a)
	for i := 0; i < n; i++ {
		if err := multiControlledX(t, []int{ctrl, a[i], bReg[i]}, c[i+1]); err != nil {
			return err
		}
		if err := multiControlledX(t, []int{ctrl, a[i]}, bReg[i]); err != nil {
			return err
		}
		if err := multiControlledX(t, []int{ctrl, c[i], bReg[i]}, c[i+1]); err != nil {
			return err
		}
	}
	for i := n - 1; i >= 0; i-- {
		if err := multiControlledX(t, []int{ctrl, c[i]}, bReg[i]); err != nil {
			return err
		}
	}
	return nil
}

// controlledRippleSub is controlledRippleAdd's inverse, by the same
// record-and-replay-reversed trick subtractionFactory uses.
func controlledRippleSub(t Target, ctrl int, a, bReg, c []int) error {
	rec := &recordingTarget{}
	if err := controlledRippleAdd(rec, ctrl, a, bReg, c); err != nil {
		return err
	}
	return replayReversed(t, rec.ops)
}

// multiplicationFactory computes acc = a*b via shift-and-add: for each
// bit i of b, conditionally ripple-adds a into acc[i:i+n], gated by
// b_i, then folds that step's carry-out into acc's next bit. Each
// iteration gets its own carry segment so one shift-add's leftover
// carry bits never leak into the next.
//
// qubits = [a_0..a_{n-1}, b_0..b_{n-1}, acc_0..acc_{2n-1}, carry...]
// where carry holds n*(n+1) ancillas; params["bits"]=n.
func multiplicationFactory(t Target, qubits []int, params map[string]float64) error {
	n := int(params["bits"])
	if n <= 0 {
		return fmt.Errorf("macro: multiplication requires params[\"bits\"]>0")
	}
	want := 4*n + n*(n+1)
	if len(qubits) != want {
		return fmt.Errorf("macro: multiplication expects %d qubits, got %d", want, len(qubits))
	}
	a := qubits[0:n]
	bReg := qubits[n : 2*n]
	acc := qubits[2*n : 4*n]
	carryAll := qubits[4*n:]

	for i := 0; i < n; i++ {
		carry := carryAll[i*(n+1) : (i+1)*(n+1)]
		dest := acc[i : i+n]
		if err := controlledRippleAdd(t, bReg[i], a, dest, carry); err != nil {
			return err
		}
		if err := t.AddGate(gate.CNOT(), []int{carry[n], acc[i+n]}); err != nil {
			return err
		}
	}
	return nil
}

// divisionFactory computes a simplified restoring-division quotient:
// each step copies the (untouched) divisor into a fresh scratch
// register, derives an a>=b flag from comparatorFactory, conditionally
// subtracts the divisor from the running remainder when the flag is
// set, and copies the flag into the matching quotient bit. This
// fixed-width variant re-compares the full registers every step rather
// than implementing the textbook shifting window, trading bit-serial
// shifting for reuse of the adder/comparator primitives above — enough
// for proper fractions (dividend < divisor), where the quotient
// settles after n steps.
//
// qubits = [a_0..a_{n-1} (dividend -> remainder), b_0..b_{n-1}
// (divisor), q_0..q_{n-1} (quotient), scratch (n*n ancillas, one copy
// of b per step), carry (n*(n+1) ancillas, one segment per step),
// flag_0..flag_{n-1}]; params["bits"]=n.
func divisionFactory(t Target, qubits []int, params map[string]float64) error {
	n := int(params["bits"])
	if n <= 0 {
		return fmt.Errorf("macro: division requires params[\"bits\"]>0")
	}
	want := 3*n + n*n + n*(n+1) + n
	if len(qubits) != want {
		return fmt.Errorf("macro: division expects %d qubits, got %d", want, len(qubits))
	}
	a := qubits[0:n]
	b := qubits[n : 2*n]
	q := qubits[2*n : 3*n]
	scratchAll := qubits[3*n : 3*n+n*n]
	carryAll := qubits[3*n+n*n : 3*n+n*n+n*(n+1)]
	flags := qubits[3*n+n*n+n*(n+1):]

	for i := 0; i < n; i++ {
		scratch := scratchAll[i*n : (i+1)*n]
		carry := carryAll[i*(n+1) : (i+1)*(n+1)]
		flag := flags[i]

		for j := 0; j < n; j++ {
			if err := t.AddGate(gate.CNOT(), []int{b[j], scratch[j]}); err != nil {
				return err
			}
		}
		cmpQubits := append(append([]int{}, a...), scratch...)
		cmpQubits = append(cmpQubits, carry...)
		cmpQubits = append(cmpQubits, flag)
		if err := comparatorFactory(t, cmpQubits, params); err != nil {
			return err
		}
		if err := controlledRippleSub(t, flag, b, a, carry); err != nil {
			return err
		}
		if err := t.AddGate(gate.CNOT(), []int{flag, q[i]}); err != nil {
			return err
		}
	}
	return nil
}

// encodingFactory prepares the computational-basis state |value> over
// qubits by flipping exactly the wires that should read 1 — the
// efficient (basis) encoding: O(n) gates, no ancilla, assuming the
// register starts at |0...0>.
//
// params["value"] is an MSB-first bitmask over qubits.
func encodingFactory(t Target, qubits []int, params map[string]float64) error {
	value := int(params["value"])
	n := len(qubits)
	for i, q := range qubits {
		if (value>>(n-1-i))&1 == 1 {
			if err := t.AddGate(gate.X(), []int{q}); err != nil {
				return err
			}
		}
	}
	return nil
}

// multiControlledUFactory realises a rotation U (here RZ(theta))
// controlled on every qubit in controls, via compute/uncompute ancilla:
// AND the controls into the ancilla with a multi-controlled-X, apply a
// single controlled rotation from the ancilla to target, then
// uncompute the ancilla back to |0>.
//
// qubits = [control_0..control_{n-1}, ancilla, target]; params["theta"].
func multiControlledUFactory(t Target, qubits []int, params map[string]float64) error {
	if len(qubits) < 3 {
		return fmt.Errorf("macro: multi_controlled_u needs >=1 control, 1 ancilla, 1 target")
	}
	theta, ok := params["theta"]
	if !ok {
		return fmt.Errorf("macro: multi_controlled_u requires params[\"theta\"]")
	}
	target := qubits[len(qubits)-1]
	ancilla := qubits[len(qubits)-2]
	controls := qubits[:len(qubits)-2]

	if err := multiControlledX(t, controls, ancilla); err != nil {
		return err
	}
	if err := t.AddGate(gate.CRZ(gate.Concrete(theta)), []int{ancilla, target}); err != nil {
		return err
	}
	return multiControlledX(t, controls, ancilla)
}

// controlledFactory realises a controlled-SWAP (Fredkin gate) via the
// standard CNOT-Toffoli-CNOT decomposition — the textbook controlled
// variant of an existing two-qubit gate, built the same way CY/CH add a
// control to a fixed base gate.
//
// qubits = [control, a, b].
func controlledFactory(t Target, qubits []int, _ map[string]float64) error {
	if len(qubits) != 3 {
		return fmt.Errorf("macro: controlled expects exactly 3 qubits (control, a, b)")
	}
	ctrl, a, b := qubits[0], qubits[1], qubits[2]
	if err := t.AddGate(gate.CNOT(), []int{b, a}); err != nil {
		return err
	}
	if err := t.AddGate(gate.Toffoli(), []int{ctrl, a, b}); err != nil {
		return err
	}
	return t.AddGate(gate.CNOT(), []int{b, a})
}
