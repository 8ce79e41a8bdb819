// Package openqasm is a real recursive-descent parser for the OpenQASM 2.0
// gate vocabulary spec.md §4.1 names as the SDK's default input format
// (spec.md §6: "Default is OpenQASM"). It understands the qelib1.inc gate
// set, register declarations, measurement, and the QBCIRCUIT kernel-name
// convention original_source's circuit_builder.cpp wraps raw OpenQASM in.
package openqasm

import (
	"fmt"
	"math"
	"strings"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

type parser struct {
	toks    []token
	pos     int
	qregs   map[string]int // register name -> starting absolute qubit offset
	cregs   map[string]int
	nQubits int
	nClbits int
	err     error
}

// Parse parses OpenQASM 2.0 source (optionally wrapped in the
// "__qpu__ void QBCIRCUIT(qreg q) { ... }" kernel convention) into a
// validated dag.DAG.
func Parse(src string) (*dag.DAG, error) {
	src = unwrapQBCircuit(src)
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, qregs: map[string]int{}, cregs: map[string]int{}}

	type pendingOp struct {
		gateName string
		params   []float64
		qubits   []int
		isMeasure bool
		measureCbit int
	}
	var ops []pendingOp

	for p.peek().kind != tokEOF {
		switch {
		case p.matchIdent("OPENQASM"):
			p.expect(tokNumber)
			p.expect(tokSemi)
		case p.matchIdent("include"):
			p.expect(tokString)
			p.expect(tokSemi)
		case p.matchIdent("qreg"):
			name := p.expectIdentText()
			p.expect(tokLBracket)
			n := int(p.expectNumber())
			p.expect(tokRBracket)
			p.expect(tokSemi)
			p.qregs[name] = p.nQubits
			p.nQubits += n
		case p.matchIdent("creg"):
			name := p.expectIdentText()
			p.expect(tokLBracket)
			n := int(p.expectNumber())
			p.expect(tokRBracket)
			p.expect(tokSemi)
			p.cregs[name] = p.nClbits
			p.nClbits += n
		case p.matchIdent("measure"):
			qreg, qidx := p.parseRegRef()
			p.expect(tokArrow)
			creg, cidx := p.parseRegRef()
			p.expect(tokSemi)
			qoff, ok := p.qregs[qreg]
			if !ok {
				return nil, fmt.Errorf("openqasm: measure references unknown qreg %q", qreg)
			}
			coff, ok := p.cregs[creg]
			if !ok {
				return nil, fmt.Errorf("openqasm: measure references unknown creg %q", creg)
			}
			ops = append(ops, pendingOp{isMeasure: true, qubits: []int{qoff + qidx}, measureCbit: coff + cidx})
		case p.matchIdent("gate") || p.matchIdent("opaque"):
			return nil, fmt.Errorf("openqasm: custom gate definitions are not supported")
		case p.matchIdent("barrier"):
			for p.peek().kind != tokSemi && p.peek().kind != tokEOF {
				p.pos++
			}
			p.expect(tokSemi)
		default:
			name := p.expectIdentText()
			var params []float64
			if p.peek().kind == tokLParen {
				p.pos++
				if p.peek().kind != tokRParen {
					for {
						params = append(params, p.parseExpr())
						if p.peek().kind != tokComma {
							break
						}
						p.pos++
					}
				}
				p.expect(tokRParen)
			}
			var qubits []int
			for {
				reg, idx := p.parseRegRef()
				off, ok := p.qregs[reg]
				if !ok {
					return nil, fmt.Errorf("openqasm: gate %q references unknown qreg %q", name, reg)
				}
				qubits = append(qubits, off+idx)
				if p.peek().kind != tokComma {
					break
				}
				p.pos++
			}
			p.expect(tokSemi)
			ops = append(ops, pendingOp{gateName: name, params: params, qubits: qubits})
		}
		if p.err != nil {
			return nil, p.err
		}
	}
	if p.err != nil {
		return nil, p.err
	}

	d := dag.New(p.nQubits, p.nClbits)
	for _, op := range ops {
		if op.isMeasure {
			if err := d.AddMeasure(op.qubits[0], op.measureCbit); err != nil {
				return nil, err
			}
			continue
		}
		g, err := resolveGate(op.gateName, op.params)
		if err != nil {
			return nil, err
		}
		if err := d.AddGate(g, op.qubits); err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// unwrapQBCircuit strips the
// "__qpu__ void QBCIRCUIT(qreg q) { <body> }" kernel wrapper down to
// its OpenQASM body, per original_source's circuit_builder.cpp
// convention; source without the wrapper passes through unchanged.
func unwrapQBCircuit(src string) string {
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, "__qpu__") {
		return src
	}
	open := strings.IndexByte(trimmed, '{')
	if open < 0 {
		return src
	}
	body := trimmed[open+1:]
	if last := strings.LastIndexByte(body, '}'); last >= 0 {
		body = body[:last]
	}
	return body
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) matchIdent(kw string) bool {
	if p.peek().kind == tokIdent && strings.EqualFold(p.peek().text, kw) {
		p.pos++
		return true
	}
	return false
}

// err (field on parser) records the first parse error encountered so the
// helper methods below (used inline in expressions) don't need individual
// error returns; Parse checks p.err after every statement.

func (p *parser) expect(k tokenKind) {
	if p.peek().kind != k {
		p.setErr(fmt.Errorf("openqasm: unexpected token at position %d", p.pos))
		return
	}
	p.pos++
}

func (p *parser) expectIdentText() string {
	if p.peek().kind != tokIdent {
		p.setErr(fmt.Errorf("openqasm: expected identifier at position %d", p.pos))
		return ""
	}
	t := p.peek().text
	p.pos++
	return t
}

func (p *parser) expectNumber() float64 {
	if p.peek().kind != tokNumber {
		p.setErr(fmt.Errorf("openqasm: expected number at position %d", p.pos))
		return 0
	}
	v := p.peek().num
	p.pos++
	return v
}

func (p *parser) parseRegRef() (name string, idx int) {
	name = p.expectIdentText()
	p.expect(tokLBracket)
	idx = int(p.expectNumber())
	p.expect(tokRBracket)
	return name, idx
}

func (p *parser) setErr(err error) {
	if p.err == nil {
		p.err = err
	}
}

// --- recursive-descent expression parser for gate parameters (pi, +, -, *, /) ---

func (p *parser) parseExpr() float64 {
	v := p.parseTerm()
	for {
		switch p.peek().kind {
		case tokPlus:
			p.pos++
			v += p.parseTerm()
		case tokMinus:
			p.pos++
			v -= p.parseTerm()
		default:
			return v
		}
	}
}

func (p *parser) parseTerm() float64 {
	v := p.parseUnary()
	for {
		switch p.peek().kind {
		case tokStar:
			p.pos++
			v *= p.parseUnary()
		case tokSlash:
			p.pos++
			v /= p.parseUnary()
		default:
			return v
		}
	}
}

func (p *parser) parseUnary() float64 {
	if p.peek().kind == tokMinus {
		p.pos++
		return -p.parseUnary()
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() float64 {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.pos++
		return t.num
	case tokIdent:
		p.pos++
		if strings.EqualFold(t.text, "pi") {
			return math.Pi
		}
		p.setErr(fmt.Errorf("openqasm: unsupported identifier %q in expression", t.text))
		return 0
	case tokLParen:
		p.pos++
		v := p.parseExpr()
		p.expect(tokRParen)
		return v
	default:
		p.setErr(fmt.Errorf("openqasm: unexpected token in expression at position %d", p.pos))
		return 0
	}
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
	case "u2":
		// u2(phi, lambda) = U3(pi/2, phi, lambda)
		return gate.U3(gate.Concrete(math.Pi/2), gate.Concrete(params[0]), gate.Concrete(params[1])), nil
	case "u3", "u":
		return gate.U3(gate.Concrete(params[0]), gate.Concrete(params[1]), gate.Concrete(params[2])), nil
	case "crz":
		return gate.CRZ(gate.Concrete(params[0])), nil
	case "cu1", "cphase", "cp":
		return gate.CPhase(gate.Concrete(params[0])), nil
	case "cx":
		return gate.Factory("cnot")
	case "id", "u0":
		return gate.Factory("identity")
	default:
		return gate.Factory(name)
	}
}
