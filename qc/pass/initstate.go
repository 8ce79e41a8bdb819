package pass

import "github.com/kegliz/qplay/qc/dag"

// diagonalOnZero names single-qubit gates that are diagonal in the
// computational basis and fix |0> exactly up to a global phase: Z|0>,
// S|0>, T|0>, Rz(t)|0>, U1(t)|0> are all e^{i*phi}|0> for some phi. A
// global phase factors out of the whole register's state vector
// regardless of what the qubit later entangles with, so dropping one of
// these gates when it is the very first operation ever applied to its
// qubit changes nothing observable.
var diagonalOnZero = map[string]bool{
	"Z": true, "S": true, "SDG": true, "T": true, "TDG": true,
	"RZ": true, "U1": true, "IDENTITY": true,
}

// InitialStateSimplify drops single-qubit diagonal-phase gates that are
// the first operation ever applied to their qubit, since every qubit
// starts in |0> and such a gate only contributes an unobservable global
// phase in that position.
type InitialStateSimplify struct{}

func (InitialStateSimplify) Name() string { return "initial-state-simplify" }
func (InitialStateSimplify) Description() string {
	return "drops leading diagonal-phase gates that only act on the provable |0> initial state"
}

func (InitialStateSimplify) Apply(d *dag.DAG) (*dag.DAG, error) {
	ops := opsFromDAG(d)
	everTouched := make([]bool, d.Qubits())
	alive := make([]bool, len(ops))
	for i := range alive {
		alive[i] = true
	}

	for i, op := range ops {
		if op.cbit < 0 && len(op.qubits) == 1 && diagonalOnZero[op.g.Name()] && !everTouched[op.qubits[0]] {
			alive[i] = false
			// Dropping the gate means the qubit is still untouched for
			// the purpose of this rule, so a run of several leading
			// diagonal gates on the same qubit all get dropped.
			continue
		}
		for _, q := range op.qubits {
			everTouched[q] = true
		}
	}

	kept := ops[:0]
	for i, a := range alive {
		if a {
			kept = append(kept, ops[i])
		}
	}
	return replay(d.Qubits(), d.Clbits(), kept)
}
