// Package ir models the circuit instruction tree: a Primitive is a
// single gate application, a Composite is a named sub-circuit with its
// own free-variable declarations and ordered child instructions.
// Flatten lowers a tree into the flat qc/dag.DAG the pass pipeline and
// simulators consume, expanding composites in declaration order.
package ir

import (
	"fmt"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

// Instruction is a tagged variant: exactly one of Primitive or Composite
// is non-nil.
type Instruction struct {
	Primitive *Primitive
	Composite *Composite
}

// Primitive applies a single gate to absolute qubit indices, with an
// optional classical-bit target (-1 if not a measurement).
type Primitive struct {
	Gate   gate.Gate
	Qubits []int
	Cbit   int
}

// Composite is a named sub-circuit: its FreeVars are the symbolic
// parameter names its children may reference; Children are appended in
// order during Flatten (composite-within-composite flattens
// depth-first, in declaration order, matching the builder's append semantics).
type Composite struct {
	Name     string
	FreeVars []string
	Children []Instruction
}

// NewPrimitive wraps a single gate application as an Instruction.
func NewPrimitive(g gate.Gate, qubits []int, cbit int) Instruction {
	return Instruction{Primitive: &Primitive{Gate: g, Qubits: qubits, Cbit: cbit}}
}

// NewComposite creates an empty named composite declaring freeVars.
func NewComposite(name string, freeVars []string) *Composite {
	return &Composite{Name: name, FreeVars: freeVars}
}

// checkedAppend validates invariants (i)-(iii) before appending child:
//
//	(i)   a Primitive's qubit count matches its gate's QubitSpan
//	(ii)  a Primitive referencing symbolic params only uses names
//	      declared in an enclosing composite's FreeVars
//	(iii) a Composite child's FreeVars are a subset of a name the
//	      parent can resolve (declared here, or themselves free -
//	      i.e. deferred to this composite's own caller)
func (c *Composite) checkedAppend(child Instruction, declared map[string]bool) error {
	switch {
	case child.Primitive != nil:
		p := child.Primitive
		if len(p.Qubits) != p.Gate.QubitSpan() {
			return fmt.Errorf("ir: gate %s expects %d qubits, got %d", p.Gate.Name(), p.Gate.QubitSpan(), len(p.Qubits))
		}
		for _, param := range p.Gate.Params() {
			if param.IsSymbolic() && !declared[param.Symbol()] {
				return fmt.Errorf("ir: composite %q: undeclared free variable %q", c.Name, param.Symbol())
			}
		}
	case child.Composite != nil:
		for _, fv := range child.Composite.FreeVars {
			if !declared[fv] {
				return fmt.Errorf("ir: composite %q: child %q references undeclared free variable %q", c.Name, child.Composite.Name, fv)
			}
		}
	default:
		return fmt.Errorf("ir: empty instruction")
	}
	c.Children = append(c.Children, child)
	return nil
}

// Append validates and appends child, using this composite's own
// FreeVars as the declared set.
func (c *Composite) Append(child Instruction) error {
	declared := make(map[string]bool, len(c.FreeVars))
	for _, fv := range c.FreeVars {
		declared[fv] = true
	}
	return c.checkedAppend(child, declared)
}

// Flatten lowers the composite tree into a fresh dag.DAG of the given
// size, expanding children depth-first in declaration order, and
// returns it validated. env resolves any remaining symbolic parameters
// to concrete values; pass nil if the tree is already fully concrete.
func Flatten(root *Composite, qubits, clbits int, env map[string]float64) (*dag.DAG, error) {
	d := dag.New(qubits, clbits)
	if err := flattenInto(d, root, env); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func flattenInto(d *dag.DAG, c *Composite, env map[string]float64) error {
	for _, child := range c.Children {
		switch {
		case child.Primitive != nil:
			g, err := bindGate(child.Primitive.Gate, env)
			if err != nil {
				return fmt.Errorf("ir: composite %q: %w", c.Name, err)
			}
			if child.Primitive.Cbit >= 0 {
				if len(child.Primitive.Qubits) != 1 {
					return fmt.Errorf("ir: measurement must target exactly 1 qubit")
				}
				if err := d.AddMeasure(child.Primitive.Qubits[0], child.Primitive.Cbit); err != nil {
					return err
				}
				continue
			}
			if err := d.AddGate(g, child.Primitive.Qubits); err != nil {
				return err
			}
		case child.Composite != nil:
			if err := flattenInto(d, child.Composite, env); err != nil {
				return err
			}
		}
	}
	return nil
}

// bindGate resolves any symbolic Params on g against env, returning a
// new gate instance if resolution changed anything, or g unchanged if
// it has no symbolic parameters.
func bindGate(g gate.Gate, env map[string]float64) (gate.Gate, error) {
	params := g.Params()
	if len(params) == 0 {
		return g, nil
	}
	needsBind := false
	for _, p := range params {
		if p.IsSymbolic() {
			needsBind = true
			break
		}
	}
	if !needsBind {
		return g, nil
	}
	bound := make([]gate.Param, len(params))
	for i, p := range params {
		b, err := p.Bind(env)
		if err != nil {
			return nil, err
		}
		bound[i] = b
	}
	return rebind(g, bound)
}

// rebind constructs a fresh gate of the same kind as g with bound
// parameter values substituted in. Only parametric gate kinds need
// this; fixed gates never reach here since Params() is empty for them.
func rebind(g gate.Gate, bound []gate.Param) (gate.Gate, error) {
	switch g.Name() {
	case "RX":
		return gate.Rx(bound[0]), nil
	case "RY":
		return gate.Ry(bound[0]), nil
	case "RZ":
		return gate.Rz(bound[0]), nil
	case "U1":
		return gate.U1(bound[0]), nil
	case "U3":
		return gate.U3(bound[0], bound[1], bound[2]), nil
	case "CRZ":
		return gate.CRZ(bound[0]), nil
	case "CPHASE":
		return gate.CPhase(bound[0]), nil
	default:
		return nil, fmt.Errorf("ir: unknown parametric gate %q", g.Name())
	}
}
