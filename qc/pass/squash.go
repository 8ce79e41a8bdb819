package pass

import (
	"fmt"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

// TwoQubitSquash rewrites every CNOT into the chosen backend-native
// two-qubit gate. Only "cz" is implemented: CNOT(control, target) =
// H(target) . CZ(control, target) . H(target), the standard
// change-of-basis identity. Requesting "cnot" is a no-op pass-through
// (CNOT is already native). Applying with the same Native value twice
// is idempotent: once every CNOT has been rewritten, there is nothing
// left to squash.
type TwoQubitSquash struct {
	Native string // "cz" or "cnot"
}

func (s TwoQubitSquash) Name() string { return "two-qubit-squash" }
func (s TwoQubitSquash) Description() string {
	return "decomposes CNOT into the target backend's native two-qubit gate"
}

func (s TwoQubitSquash) Apply(d *dag.DAG) (*dag.DAG, error) {
	native := s.Native
	if native == "" {
		native = "cnot"
	}
	if native != "cz" && native != "cnot" {
		return nil, fmt.Errorf("pass: two-qubit-squash: unsupported native gate %q", native)
	}

	ops := opsFromDAG(d)
	if native == "cnot" {
		return replay(d.Qubits(), d.Clbits(), ops)
	}

	out := make([]rewriteOp, 0, len(ops)*2)
	for _, op := range ops {
		if op.cbit < 0 && op.g.Name() == "CNOT" {
			ctrl, tgt := op.qubits[0], op.qubits[1]
			out = append(out,
				rewriteOp{g: gate.H(), qubits: []int{tgt}, cbit: -1},
				rewriteOp{g: gate.CZ(), qubits: []int{ctrl, tgt}, cbit: -1},
				rewriteOp{g: gate.H(), qubits: []int{tgt}, cbit: -1},
			)
			continue
		}
		out = append(out, op)
	}
	return replay(d.Qubits(), d.Clbits(), out)
}
