// Package xasm lowers a dag.DAG to the remote protocol's XASM gate-line
// dialect and parses it back, for symmetry and for the remote protocol
// path's own needs (qc/remote only needs the Write direction, but the
// parser exists so XASM can be used as a qc/format input like the
// others).
package xasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

// Write renders a DAG's gate operations (not measurements) as
// "NAME(q[i],q[j],...)" lines, in topological order, and separately
// returns the measurement list [[qubit,classical_bit],...] in the
// same topological order — exactly the split the
// remote wire protocol's envelope needs (circuit + measure fields).
func Write(d dag.DAGReader) (circuit []string, measures [][2]int, err error) {
	for _, n := range d.Operations() {
		if n.Cbit >= 0 {
			measures = append(measures, [2]int{n.Qubits[0], n.Cbit})
			continue
		}
		line, err := writeGate(n.G, n.Qubits)
		if err != nil {
			return nil, nil, err
		}
		circuit = append(circuit, line)
	}
	return circuit, measures, nil
}

func writeGate(g gate.Gate, qubits []int) (string, error) {
	var b strings.Builder
	b.WriteString(g.Name())
	b.WriteByte('(')
	for i, q := range qubits {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "q[%d]", q)
	}
	for _, p := range g.Params() {
		if p.IsSymbolic() {
			return "", fmt.Errorf("xasm: cannot lower unbound symbolic parameter %q", p.Symbol())
		}
		fmt.Fprintf(&b, ",%s", strconv.FormatFloat(p.Value(), 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String(), nil
}

// Parse lowers a list of XASM gate lines (plus a separate measure list,
// matching Write's split) back into a fresh dag.DAG of the given size.
func Parse(circuitLines []string, measures [][2]int, qubits, clbits int) (*dag.DAG, error) {
	d := dag.New(qubits, clbits)
	for _, line := range circuitLines {
		name, args, err := splitGateLine(line)
		if err != nil {
			return nil, err
		}
		qs, params, err := splitArgs(args)
		if err != nil {
			return nil, err
		}
		g, err := resolveGate(name, params)
		if err != nil {
			return nil, err
		}
		if err := d.AddGate(g, qs); err != nil {
			return nil, err
		}
	}
	for _, m := range measures {
		if err := d.AddMeasure(m[0], m[1]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func splitGateLine(line string) (name string, args string, err error) {
	open := strings.IndexByte(line, '(')
	if open < 0 || !strings.HasSuffix(line, ")") {
		return "", "", fmt.Errorf("xasm: malformed gate line %q", line)
	}
	return strings.TrimSpace(line[:open]), line[open+1 : len(line)-1], nil
}

func splitArgs(args string) (qubits []int, params []float64, err error) {
	if strings.TrimSpace(args) == "" {
		return nil, nil, nil
	}
	for _, tok := range strings.Split(args, ",") {
		tok = strings.TrimSpace(tok)
		if strings.HasPrefix(tok, "q[") && strings.HasSuffix(tok, "]") {
			idx, err := strconv.Atoi(tok[2 : len(tok)-1])
			if err != nil {
				return nil, nil, fmt.Errorf("xasm: bad qubit ref %q: %w", tok, err)
			}
			qubits = append(qubits, idx)
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("xasm: bad argument %q: %w", tok, err)
		}
		params = append(params, v)
	}
	return qubits, params, nil
}

func resolveGate(name string, params []float64) (gate.Gate, error) {
	switch strings.ToLower(name) {
	case "rx":
		return gate.Rx(gate.Concrete(params[0])), nil
	case "ry":
		return gate.Ry(gate.Concrete(params[0])), nil
	case "rz":
		return gate.Rz(gate.Concrete(params[0])), nil
	case "u1":
		return gate.U1(gate.Concrete(params[0])), nil
	case "u3":
		return gate.U3(gate.Concrete(params[0]), gate.Concrete(params[1]), gate.Concrete(params[2])), nil
	case "crz":
		return gate.CRZ(gate.Concrete(params[0])), nil
	case "cphase":
		return gate.CPhase(gate.Concrete(params[0])), nil
	default:
		return gate.Factory(name)
	}
}
