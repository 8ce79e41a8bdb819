package macro

import (
	"fmt"
	"math"

	"github.com/kegliz/qplay/qc/gate"
)

// qftFactory applies the quantum Fourier transform to qubits, in the
// order given, followed by the final bit-reversal swaps.
func qftFactory(t Target, qubits []int, _ map[string]float64) error {
	n := len(qubits)
	for i := 0; i < n; i++ {
		if err := t.AddGate(gate.H(), []int{qubits[i]}); err != nil {
			return err
		}
		for j := i + 1; j < n; j++ {
			angle := twoPi / math.Pow(2, float64(j-i+1))
			if err := t.AddGate(gate.CPhase(gate.Concrete(angle)), []int{qubits[j], qubits[i]}); err != nil {
				return err
			}
		}
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		if err := t.AddGate(gate.Swap(), []int{qubits[i], qubits[j]}); err != nil {
			return err
		}
	}
	return nil
}

// iqftFactory is the adjoint of qftFactory: reverse the swaps first,
// then undo the controlled-phase/Hadamard ladder with negated angles.
func iqftFactory(t Target, qubits []int, _ map[string]float64) error {
	n := len(qubits)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		if err := t.AddGate(gate.Swap(), []int{qubits[i], qubits[j]}); err != nil {
			return err
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := n - 1; j > i; j-- {
			angle := -twoPi / math.Pow(2, float64(j-i+1))
			if err := t.AddGate(gate.CPhase(gate.Concrete(angle)), []int{qubits[j], qubits[i]}); err != nil {
				return err
			}
		}
		if err := t.AddGate(gate.H(), []int{qubits[i]}); err != nil {
			return err
		}
	}
	return nil
}

// qpeFactory estimates the phase of a fixed Z-rotation eigenvalue
// e^{2*pi*i*phase} using the standard controlled-U-power ladder,
// followed by an inverse QFT on the counting register.
//
// qubits = [counting_0 .. counting_{m-1}, target]; params["phase"] sets
// the simulated unitary's phase (in units of 2*pi).
func qpeFactory(t Target, qubits []int, params map[string]float64) error {
	if len(qubits) < 2 {
		return fmt.Errorf("macro: qpe needs >=1 counting qubit plus 1 target qubit")
	}
	phase, ok := params["phase"]
	if !ok {
		return fmt.Errorf("macro: qpe requires params[\"phase\"]")
	}
	counting := qubits[:len(qubits)-1]
	target := qubits[len(qubits)-1]

	for _, q := range counting {
		if err := t.AddGate(gate.H(), []int{q}); err != nil {
			return err
		}
	}
	for k, q := range counting {
		power := math.Pow(2, float64(len(counting)-1-k))
		angle := twoPi * phase * power
		if err := t.AddGate(gate.CPhase(gate.Concrete(angle)), []int{q, target}); err != nil {
			return err
		}
	}
	return iqftFactory(t, counting, nil)
}

// groverDiffuserFactory applies the standard Grover diffusion operator
// (inversion about the mean) over qubits, using a Toffoli ladder to
// realise the multi-controlled Z.
func groverDiffuserFactory(t Target, qubits []int, _ map[string]float64) error {
	n := len(qubits)
	if n == 0 {
		return fmt.Errorf("macro: grover_diffuser needs at least 1 qubit")
	}
	for _, q := range qubits {
		if err := t.AddGate(gate.H(), []int{q}); err != nil {
			return err
		}
		if err := t.AddGate(gate.X(), []int{q}); err != nil {
			return err
		}
	}
	if err := multiControlledZ(t, qubits); err != nil {
		return err
	}
	for _, q := range qubits {
		if err := t.AddGate(gate.X(), []int{q}); err != nil {
			return err
		}
		if err := t.AddGate(gate.H(), []int{q}); err != nil {
			return err
		}
	}
	return nil
}

// multiControlledZ realises a Z gate controlled on all but the last
// qubit, acting on the last, via an H-sandwiched Toffoli ladder that
// chains ancilla-free pairwise Toffolis when more than 2 controls are
// present (n<=3 uses Toffoli directly; larger n chains via the last
// qubit, matching the textbook recursive construction for small n).
func multiControlledZ(t Target, qubits []int) error {
	n := len(qubits)
	target := qubits[n-1]
	controls := qubits[:n-1]

	if err := t.AddGate(gate.H(), []int{target}); err != nil {
		return err
	}
	switch len(controls) {
	case 0:
		if err := t.AddGate(gate.X(), []int{target}); err != nil {
			return err
		}
	case 1:
		if err := t.AddGate(gate.CNOT(), []int{controls[0], target}); err != nil {
			return err
		}
	default:
		c0, c1 := controls[0], controls[1]
		for _, c := range controls[2:] {
			c1 = c
			if err := t.AddGate(gate.Toffoli(), []int{c0, c1, target}); err != nil {
				return err
			}
			c0 = target
		}
		if err := t.AddGate(gate.Toffoli(), []int{controls[0], controls[1], target}); err != nil {
			return err
		}
	}
	return t.AddGate(gate.H(), []int{target})
}

// rippleAdderFactory computes b += a in place (mod 2^n, index 0 least
// significant) with a ripple-carry construction; the carry register,
// assumed to start at 0, is left holding the carries.
//
// qubits = [a_0..a_{n-1}, b_0..b_{n-1}, carry_0..carry_n] (2n+(n+1) wires).
func rippleAdderFactory(t Target, qubits []int, params map[string]float64) error {
	n := int(params["bits"])
	if n <= 0 {
		return fmt.Errorf("macro: ripple_adder requires params[\"bits\"]>0")
	}
	if len(qubits) != 3*n+1 {
		return fmt.Errorf("macro: ripple_adder expects %d qubits, got %d", 3*n+1, len(qubits))
	}
	a := qubits[0:n]
	bReg := qubits[n : 2*n]
	c := qubits[2*n : 3*n+1]

	for i := 0; i < n; i++ {
		if err := t.AddGate(gate.Toffoli(), []int{a[i], bReg[i], c[i+1]}); err != nil {
			return err
		}
		if err := t.AddGate(gate.CNOT(), []int{a[i], bReg[i]}); err != nil {
			return err
		}
		if err := t.AddGate(gate.Toffoli(), []int{c[i], bReg[i], c[i+1]}); err != nil {
			return err
		}
	}
	for i := n - 1; i >= 0; i-- {
		if err := t.AddGate(gate.CNOT(), []int{c[i], bReg[i]}); err != nil {
			return err
		}
	}
	return nil
}

// equalityFactory sets flag to 1 iff registers a and b are bitwise
// equal. qubits = [a_0..a_{n-1}, b_0..b_{n-1}, flag]; b is restored.
func equalityFactory(t Target, qubits []int, params map[string]float64) error {
	n := int(params["bits"])
	if n <= 0 || len(qubits) != 2*n+1 {
		return fmt.Errorf("macro: equality expects params[\"bits\"]>0 and 2*bits+1 qubits")
	}
	a := qubits[0:n]
	bReg := qubits[n : 2*n]
	flag := qubits[2*n]

	for i := 0; i < n; i++ {
		if err := t.AddGate(gate.CNOT(), []int{a[i], bReg[i]}); err != nil {
			return err
		}
		if err := t.AddGate(gate.X(), []int{bReg[i]}); err != nil {
			return err
		}
	}
	if err := multiControlledX(t, bReg, flag); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := t.AddGate(gate.X(), []int{bReg[i]}); err != nil {
			return err
		}
		if err := t.AddGate(gate.CNOT(), []int{a[i], bReg[i]}); err != nil {
			return err
		}
	}
	return nil
}

// comparatorFactory sets flag to 1 iff a > b (unsigned, MSB-first),
// using the same ripple-carry adder run on b's two's complement of a.
// qubits = [a_0..a_{n-1}, b_0..b_{n-1}, carry_0..carry_n, flag].
func comparatorFactory(t Target, qubits []int, params map[string]float64) error {
	n := int(params["bits"])
	if n <= 0 || len(qubits) != 3*n+2 {
		return fmt.Errorf("macro: comparator expects params[\"bits\"]>0 and 3*bits+2 qubits")
	}
	c := qubits[2*n : 3*n+1]
	flag := qubits[3*n+1]

	if err := rippleAdderFactory(t, qubits[:3*n+1], params); err != nil {
		return err
	}
	return t.AddGate(gate.CNOT(), []int{c[n], flag})
}

// multiControlledX realises an X on target controlled on every qubit in
// controls being |1>, via the same Toffoli-ladder strategy used by
// multiControlledZ (omitting the H sandwich).
func multiControlledX(t Target, controls []int, target int) error {
	switch len(controls) {
	case 0:
		return t.AddGate(gate.X(), []int{target})
	case 1:
		return t.AddGate(gate.CNOT(), []int{controls[0], target})
	case 2:
		return t.AddGate(gate.Toffoli(), []int{controls[0], controls[1], target})
	default:
		c0, c1 := controls[0], controls[1]
		for _, c := range controls[2:] {
			c1 = c
			if err := t.AddGate(gate.Toffoli(), []int{c0, c1, target}); err != nil {
				return err
			}
			c0 = target
		}
		return t.AddGate(gate.Toffoli(), []int{controls[0], controls[1], target})
	}
}
