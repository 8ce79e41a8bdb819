// Package quil is a minimal parser for the Quil 1.0 gate vocabulary
// spec.md §6 names as the SDK's third input format. It accepts the
// gate.Factory names plus RX, RY, RZ, PHASE and CPHASE; other parametric
// gates are not recognised. Quil addresses
// qubits as bare integers and classical bits via a declared "ro"
// register (DECLARE ro BIT[n]) rather than qreg/creg blocks.
package quil

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

type pendingGate struct {
	name   string
	params []float64
	qubits []int
}

type pendingMeasure struct {
	qubit, cbit int
}

// Parse parses Quil 1.0 source into a validated dag.DAG. Qubit and
// classical-bit counts are inferred from the highest index referenced
// (or from a "DECLARE ro BIT[n]" line, if present, for classical width).
func Parse(src string) (*dag.DAG, error) {
	var gates []pendingGate
	var measures []pendingMeasure
	maxQubit := -1
	maxCbit := -1
	declaredCbits := -1

	for _, raw := range strings.Split(src, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		head := strings.ToUpper(fields[0])

		switch {
		case head == "DECLARE":
			n, err := parseDeclare(fields)
			if err != nil {
				return nil, err
			}
			declaredCbits = n
		case head == "MEASURE":
			if len(fields) < 2 {
				return nil, fmt.Errorf("quil: malformed MEASURE line %q", line)
			}
			q, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("quil: bad qubit index in %q: %w", line, err)
			}
			cbit := q
			if len(fields) >= 3 {
				cbit, err = parseClassicalRef(fields[2])
				if err != nil {
					return nil, err
				}
			}
			if q > maxQubit {
				maxQubit = q
			}
			if cbit > maxCbit {
				maxCbit = cbit
			}
			measures = append(measures, pendingMeasure{qubit: q, cbit: cbit})
		default:
			name, params, err := parseGateHead(fields[0])
			if err != nil {
				return nil, err
			}
			var qubits []int
			for _, tok := range fields[1:] {
				q, err := strconv.Atoi(tok)
				if err != nil {
					return nil, fmt.Errorf("quil: bad qubit index %q in %q: %w", tok, line, err)
				}
				qubits = append(qubits, q)
				if q > maxQubit {
					maxQubit = q
				}
			}
			gates = append(gates, pendingGate{name: name, params: params, qubits: qubits})
		}
	}

	nQubits := maxQubit + 1
	nCbits := maxCbit + 1
	if declaredCbits > nCbits {
		nCbits = declaredCbits
	}

	d := dag.New(nQubits, nCbits)
	for _, g := range gates {
		gg, err := resolveGate(g.name, g.params)
		if err != nil {
			return nil, err
		}
		if err := d.AddGate(gg, g.qubits); err != nil {
			return nil, err
		}
	}
	for _, m := range measures {
		if err := d.AddMeasure(m.qubit, m.cbit); err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseDeclare(fields []string) (int, error) {
	// DECLARE ro BIT[n]
	if len(fields) < 3 {
		return 0, fmt.Errorf("quil: malformed DECLARE line")
	}
	spec := fields[2]
	open := strings.IndexByte(spec, '[')
	close := strings.IndexByte(spec, ']')
	if open < 0 || close < 0 || close < open {
		return 0, fmt.Errorf("quil: malformed DECLARE size %q", spec)
	}
	n, err := strconv.Atoi(spec[open+1 : close])
	if err != nil {
		return 0, fmt.Errorf("quil: bad DECLARE size %q: %w", spec, err)
	}
	return n, nil
}

func parseClassicalRef(tok string) (int, error) {
	// "ro[3]" or a bare integer.
	if open := strings.IndexByte(tok, '['); open >= 0 {
		close := strings.IndexByte(tok, ']')
		if close < open {
			return 0, fmt.Errorf("quil: malformed classical ref %q", tok)
		}
		return strconv.Atoi(tok[open+1 : close])
	}
	return strconv.Atoi(tok)
}

func parseGateHead(head string) (name string, params []float64, err error) {
	open := strings.IndexByte(head, '(')
	if open < 0 {
		return head, nil, nil
	}
	if !strings.HasSuffix(head, ")") {
		return "", nil, fmt.Errorf("quil: malformed gate head %q", head)
	}
	name = head[:open]
	for _, tok := range strings.Split(head[open+1:len(head)-1], ",") {
		v, err := evalQuilExpr(strings.TrimSpace(tok))
		if err != nil {
			return "", nil, err
		}
		params = append(params, v)
	}
	return name, params, nil
}

// evalQuilExpr evaluates the small set of parameter expressions Quil
// programs actually use: a signed float literal, "pi", or "pi" scaled
// by a single "*"/"/" factor (e.g. "pi/2", "-pi/4").
func evalQuilExpr(s string) (float64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v float64
	switch {
	case strings.Contains(s, "/"):
		parts := strings.SplitN(s, "/", 2)
		num, err := evalQuilAtom(parts[0])
		if err != nil {
			return 0, err
		}
		den, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("quil: bad expression %q: %w", s, err)
		}
		v = num / den
	case strings.Contains(s, "*"):
		parts := strings.SplitN(s, "*", 2)
		a, err := evalQuilAtom(parts[0])
		if err != nil {
			return 0, err
		}
		b, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("quil: bad expression %q: %w", s, err)
		}
		v = a * b
	default:
		a, err := evalQuilAtom(s)
		if err != nil {
			return 0, err
		}
		v = a
	}
	if neg {
		v = -v
	}
	return v, nil
}

func evalQuilAtom(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "pi") {
		return math.Pi, nil
	}
	return strconv.ParseFloat(s, 64)
}

func resolveGate(name string, params []float64) (gate.Gate, error) {
	switch strings.ToUpper(name) {
	case "RX":
		return gate.Rx(gate.Concrete(params[0])), nil
	case "RY":
		return gate.Ry(gate.Concrete(params[0])), nil
	case "RZ":
		return gate.Rz(gate.Concrete(params[0])), nil
	case "PHASE":
		return gate.U1(gate.Concrete(params[0])), nil
	case "CPHASE":
		return gate.CPhase(gate.Concrete(params[0])), nil
	default:
		return gate.Factory(name)
	}
}
