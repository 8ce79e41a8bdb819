package pass

import (
	"math"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

// selfInverse lists fixed gates that are their own inverse: applying the
// same gate twice in a row to the same qubits is the identity.
var selfInverse = map[string]bool{
	"H": true, "X": true, "Y": true, "Z": true, "IDENTITY": true,
	"CNOT": true, "CZ": true, "CY": true, "CH": true, "SWAP": true,
	"TOFFOLI": true, "FREDKIN": true,
}

// mutualInverse pairs named gates that cancel each other (but not
// themselves): S undoes Sdg and vice versa, T undoes Tdg and vice versa.
var mutualInverse = map[string]string{
	"S": "SDG", "SDG": "S",
	"T": "TDG", "TDG": "T",
}

// sameAxisRotation names the parametric gates whose single Param is a
// rotation angle on a fixed axis, so two consecutive applications on the
// same qubits commute and their angles add.
var sameAxisRotation = map[string]bool{
	"RX": true, "RY": true, "RZ": true, "U1": true, "CRZ": true, "CPHASE": true,
}

// RedundancyRemoval cancels adjacent mutually-inverse gate pairs and
// merges adjacent same-axis rotations (dropping the merged gate entirely
// when the summed angle is, up to tolerance, a multiple of a full
// 4*pi rotation, which restores the identity operator exactly rather
// than merely the same measurement statistics). It iterates to a fixed
// point internally, so a single Apply call is already idempotent.
type RedundancyRemoval struct {
	// AngleTol is the tolerance (radians) for treating a merged rotation
	// angle as an exact identity. Zero means DefaultAngleTol.
	AngleTol float64
}

const DefaultAngleTol = 1e-9

func (r RedundancyRemoval) Name() string { return "redundancy-removal" }
func (r RedundancyRemoval) Description() string {
	return "cancels adjacent mutually-inverse gates and merges same-axis rotations, to a fixed point"
}

func (r RedundancyRemoval) tol() float64 {
	if r.AngleTol > 0 {
		return r.AngleTol
	}
	return DefaultAngleTol
}

func (r RedundancyRemoval) Apply(d *dag.DAG) (*dag.DAG, error) {
	ops := opsFromDAG(d)
	tol := r.tol()

	for {
		alive := make([]bool, len(ops))
		for i := range alive {
			alive[i] = true
		}
		// last[q] = index of the most recently seen alive op touching
		// qubit q, or -1 if none since the last cancellation reset it.
		last := make([]int, d.Qubits())
		for i := range last {
			last[i] = -1
		}
		changed := false

		for i := range ops {
			if !alive[i] {
				continue
			}
			op := &ops[i]
			if op.cbit >= 0 {
				for _, q := range op.qubits {
					last[q] = i
				}
				continue
			}

			j, allSame := candidateIndex(last, op.qubits)
			if allSame && j >= 0 && alive[j] && sameQubitSet(ops[j].qubits, op.qubits) {
				if merged, cancel, ok := combine(ops[j].g, op.g, tol); ok {
					alive[j] = false
					alive[i] = false
					changed = true
					if !cancel {
						// Re-synthesize the merge as a new live op in
						// place of j, so later ops still see it as the
						// most recent touch on these qubits.
						ops[j] = rewriteOp{g: merged, qubits: op.qubits, cbit: -1}
						alive[j] = true
					}
					for _, q := range op.qubits {
						last[q] = -1
					}
					if alive[j] {
						for _, q := range op.qubits {
							last[q] = j
						}
					}
					continue
				}
			}
			for _, q := range op.qubits {
				last[q] = i
			}
		}

		if !changed {
			break
		}
		kept := ops[:0]
		for i, a := range alive {
			if a {
				kept = append(kept, ops[i])
			}
		}
		ops = kept
	}

	return replay(d.Qubits(), d.Clbits(), ops)
}

// candidateIndex reports the single common "last touched" index shared
// by every qubit in qubits, or (-1, false) if they disagree or any qubit
// has no recent op.
func candidateIndex(last []int, qubits []int) (int, bool) {
	if len(qubits) == 0 {
		return -1, false
	}
	j := last[qubits[0]]
	if j < 0 {
		return -1, false
	}
	for _, q := range qubits[1:] {
		if last[q] != j {
			return -1, false
		}
	}
	return j, true
}

func sameQubitSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// combine decides what happens when two gates back-to-back touch
// exactly the same qubits in the same order. ok is false if the pair
// doesn't interact in a way this pass understands. cancel is true if
// both should simply be dropped; otherwise merged is the replacement
// for the pair.
func combine(prev, cur gate.Gate, tol float64) (merged gate.Gate, cancel bool, ok bool) {
	pn, cn := prev.Name(), cur.Name()

	if pn == cn && selfInverse[pn] {
		return nil, true, true
	}
	if mutualInverse[pn] == cn {
		return nil, true, true
	}
	if pn == cn && sameAxisRotation[pn] {
		pp, cp := prev.Params(), cur.Params()
		if len(pp) == 1 && len(cp) == 1 && !pp[0].IsSymbolic() && !cp[0].IsSymbolic() {
			sum := pp[0].Value() + cp[0].Value()
			if isIdentityAngle(sum, tol) {
				return nil, true, true
			}
			return rebuildRotation(pn, sum), false, true
		}
	}
	return nil, false, false
}

func isIdentityAngle(theta, tol float64) bool {
	const fullTurn = 4 * math.Pi
	k := math.Round(theta / fullTurn)
	return math.Abs(theta-k*fullTurn) < tol
}

func rebuildRotation(name string, angle float64) gate.Gate {
	p := gate.Concrete(angle)
	switch name {
	case "RX":
		return gate.Rx(p)
	case "RY":
		return gate.Ry(p)
	case "RZ":
		return gate.Rz(p)
	case "U1":
		return gate.U1(p)
	case "CRZ":
		return gate.CRZ(p)
	case "CPHASE":
		return gate.CPhase(p)
	default:
		panic("pass: rebuildRotation: unknown rotation gate " + name)
	}
}
