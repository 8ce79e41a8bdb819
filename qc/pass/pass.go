// Package pass implements the DAG-to-DAG rewrite pipeline: optimisation
// passes that each consume a validated dag.DAG and produce a fresh one.
// Because dag.DAG has no node-removal API once built, every pass here
// replays the surviving (and possibly rewritten) operations into a new
// dag.New(...) rather than mutating its input in place.
package pass

import (
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

// Pass rewrites a validated DAG into an equivalent (or deliberately
// approximated, for noise-aware placement) one.
type Pass interface {
	Name() string
	Description() string
	Apply(d *dag.DAG) (*dag.DAG, error)
}

// Pipeline runs passes in order, feeding each one the previous pass's
// output.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds a Pipeline running passes in the given order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Apply runs every pass in order and returns the final DAG.
func (p *Pipeline) Apply(d *dag.DAG) (*dag.DAG, error) {
	cur := d
	for _, ps := range p.passes {
		next, err := ps.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Names lists the passes in this pipeline, in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.Name()
	}
	return names
}

// replay rebuilds a fresh, validated DAG from a list of ops, in order.
// ops whose Cbit is >= 0 are replayed as measurements.
func replay(qubits, clbits int, ops []rewriteOp) (*dag.DAG, error) {
	d := dag.New(qubits, clbits)
	for _, op := range ops {
		if op.cbit >= 0 {
			if err := d.AddMeasure(op.qubits[0], op.cbit); err != nil {
				return nil, err
			}
			continue
		}
		if err := d.AddGate(op.g, op.qubits); err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// rewriteOp is a pass-local, mutable stand-in for a dag.Node: passes
// build a slice of these, cancel/merge/rewrite entries in place, then
// replay the survivors.
type rewriteOp struct {
	g      gate.Gate
	qubits []int
	cbit   int // -1 if not a measurement
}

// opsFromDAG copies a validated DAG's topological operation list into a
// mutable rewriteOp slice.
func opsFromDAG(d *dag.DAG) []rewriteOp {
	nodes := d.Operations()
	ops := make([]rewriteOp, len(nodes))
	for i, n := range nodes {
		ops[i] = rewriteOp{g: n.G, qubits: n.Qubits, cbit: n.Cbit}
	}
	return ops
}
