package macro

import (
	"fmt"

	"github.com/kegliz/qplay/qc/gate"
)

// applyControlledX applies X to target, controlled by ctrl when ctrl>=0,
// or unconditionally when ctrl<0 — the same "ctrl<0 means uncontrolled"
// convention used throughout this file so a single code path can build
// both the bare and the controlled form of an operator.
func applyControlledX(t Target, ctrl, target int) error {
	if ctrl < 0 {
		return t.AddGate(gate.X(), []int{target})
	}
	return t.AddGate(gate.CNOT(), []int{ctrl, target})
}

// applyControlledH is applyControlledX's analogue for H.
func applyControlledH(t Target, ctrl, target int) error {
	if ctrl < 0 {
		return t.AddGate(gate.H(), []int{target})
	}
	return t.AddGate(gate.CH(), []int{ctrl, target})
}

// phaseOracle flips the phase of the computational basis state matching
// target (an MSB-first bitmask over qubits), optionally controlled by
// ctrl. It is the mark step of the Grover operator: flip the bits that
// should read 0, apply a multi-controlled Z across the (now all-one)
// register, then undo the flips.
func phaseOracle(t Target, ctrl int, qubits []int, target int) error {
	n := len(qubits)
	for i, q := range qubits {
		if (target>>(n-1-i))&1 == 0 {
			if err := applyControlledX(t, ctrl, q); err != nil {
				return err
			}
		}
	}
	mcz := append(append([]int{}, qubits...))
	if ctrl >= 0 {
		mcz = append(mcz, ctrl)
	}
	if err := multiControlledZ(t, mcz); err != nil {
		return err
	}
	for i, q := range qubits {
		if (target>>(n-1-i))&1 == 0 {
			if err := applyControlledX(t, ctrl, q); err != nil {
				return err
			}
		}
	}
	return nil
}

// groverOperator applies one iteration of the Grover operator (phase
// oracle marking target, then the diffuser) over qubits, optionally
// controlled by ctrl. Controlling every constituent gate by ctrl (rather
// than trying to control the composite as a block) is what makes a
// whole Grover iteration controllable with only the base gate set.
func groverOperator(t Target, ctrl int, qubits []int, target int) error {
	if err := phaseOracle(t, ctrl, qubits, target); err != nil {
		return err
	}
	for _, q := range qubits {
		if err := applyControlledH(t, ctrl, q); err != nil {
			return err
		}
		if err := applyControlledX(t, ctrl, q); err != nil {
			return err
		}
	}
	mcz := append([]int{}, qubits...)
	if ctrl >= 0 {
		mcz = append(mcz, ctrl)
	}
	if err := multiControlledZ(t, mcz); err != nil {
		return err
	}
	for _, q := range qubits {
		if err := applyControlledX(t, ctrl, q); err != nil {
			return err
		}
		if err := applyControlledH(t, ctrl, q); err != nil {
			return err
		}
	}
	return nil
}

// amplitudeEstimationFactory realises canonical (Brassard-Høyer-Mosca-
// Tapp) amplitude estimation: Hadamard the counting register, apply
// controlled powers of the Grover operator (oracle marking target,
// then diffuser) for each counting qubit, then inverse-QFT the counting
// register — exactly qpeFactory's ladder, specialised to the Grover
// operator as the estimated unitary.
//
// qubits = [counting_0..counting_{m-1}, search_0..search_{k-1}];
// params["counting_bits"]=m, params["target"] (bitmask over search).
func amplitudeEstimationFactory(t Target, qubits []int, params map[string]float64) error {
	m := int(params["counting_bits"])
	if m <= 0 {
		return fmt.Errorf("macro: amplitude_estimation requires params[\"counting_bits\"]>0")
	}
	if len(qubits) <= m {
		return fmt.Errorf("macro: amplitude_estimation needs counting_bits+search qubits")
	}
	counting := qubits[:m]
	search := qubits[m:]
	target := int(params["target"])

	for _, q := range counting {
		if err := t.AddGate(gate.H(), []int{q}); err != nil {
			return err
		}
	}
	for k, c := range counting {
		reps := 1 << uint(len(counting)-1-k)
		for i := 0; i < reps; i++ {
			if err := groverOperator(t, c, search, target); err != nil {
				return err
			}
		}
	}
	return iqftFactory(t, counting, nil)
}

// exponentialSearchFactory builds one trial circuit of Boyer-Brassard-
// Høyer-Tapp exponential search: a uniform superposition over qubits
// followed by params["iterations"] Grover iterations marking target.
// BBHT's "exponential" part is the classical outer loop that doubles
// the iteration count between measurements until a hit is found; that
// loop lives outside DAG construction (it needs the measured outcome to
// decide whether to continue), so this factory is the single-trial
// building block the loop calls with an escalating iteration count.
//
// qubits = search register; params["target"], params["iterations"].
func exponentialSearchFactory(t Target, qubits []int, params map[string]float64) error {
	if len(qubits) == 0 {
		return fmt.Errorf("macro: exponential_search needs at least 1 qubit")
	}
	target := int(params["target"])
	iterations := int(params["iterations"])
	if iterations < 0 {
		return fmt.Errorf("macro: exponential_search requires params[\"iterations\"]>=0")
	}
	for _, q := range qubits {
		if err := t.AddGate(gate.H(), []int{q}); err != nil {
			return err
		}
	}
	for i := 0; i < iterations; i++ {
		if err := groverOperator(t, -1, qubits, target); err != nil {
			return err
		}
	}
	return nil
}
