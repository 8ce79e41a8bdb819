package pass

import "github.com/kegliz/qplay/qc/dag"

// Peephole scans fixed-size windows of adjacent same-qubit operations
// and rewrites any window matching a known pattern. It ships with a
// single rule beyond what RedundancyRemoval's generic inverse table
// already covers: a CNOT immediately re-applied to the same (control,
// target) pair, which RedundancyRemoval also catches via its "CNOT is
// self-inverse" entry - Peephole is kept as the place future windowed
// (3-qubit, pattern-specific) rewrite rules get added, rather than
// growing RedundancyRemoval's generic table with rules that only apply
// to a specific gate sequence shape.
type Peephole struct{}

func (Peephole) Name() string { return "peephole" }
func (Peephole) Description() string {
	return "fixed-window pattern rewriter for multi-qubit gate sequences"
}

func (Peephole) Apply(d *dag.DAG) (*dag.DAG, error) {
	ops := opsFromDAG(d)
	alive := make([]bool, len(ops))
	for i := range alive {
		alive[i] = true
	}
	last := make([]int, d.Qubits())
	for i := range last {
		last[i] = -1
	}

	for i := range ops {
		op := &ops[i]
		if op.cbit >= 0 {
			for _, q := range op.qubits {
				last[q] = i
			}
			continue
		}
		j, allSame := candidateIndex(last, op.qubits)
		if allSame && j >= 0 && alive[j] &&
			sameQubitSet(ops[j].qubits, op.qubits) &&
			op.g.Name() == "CNOT" && ops[j].g.Name() == "CNOT" {
			alive[j] = false
			alive[i] = false
			for _, q := range op.qubits {
				last[q] = -1
			}
			continue
		}
		for _, q := range op.qubits {
			last[q] = i
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
