package openqasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bellSource = `
OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

func TestParseBellCircuit(t *testing.T) {
	require := require.New(t)
	d, err := Parse(bellSource)
	require.NoError(err)
	require.Equal(2, d.Qubits())
	require.Equal(2, d.Clbits())
	ops := d.Operations()
	require.Len(ops, 4)
	assert.Equal(t, "H", ops[0].G.Name())
	assert.Equal(t, "CNOT", ops[1].G.Name())
}

func TestParseRotationWithPiExpression(t *testing.T) {
	require := require.New(t)
	src := `
OPENQASM 2.0;
qreg q[1];
creg c[1];
rz(pi/2) q[0];
measure q[0] -> c[0];
`
	d, err := Parse(src)
	require.NoError(err)
	ops := d.Operations()
	require.Len(ops, 2)
	require.Equal("RZ", ops[0].G.Name())
	require.InDelta(1.5707963267948966, ops[0].G.Params()[0].Value(), 1e-9)
}

func TestParseUnwrapsQBCircuitKernel(t *testing.T) {
	require := require.New(t)
	src := "__qpu__ void QBCIRCUIT(qreg q) {\nOPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[1];\ncreg c0[1];\nx q[0];\nmeasure q[0] -> c0[0];\n}\n"
	d, err := Parse(src)
	require.NoError(err)
	require.Equal(1, d.Qubits())
	require.Len(d.Operations(), 2)
}

func TestParseRejectsCustomGateDefinitions(t *testing.T) {
	require := require.New(t)
	src := `
OPENQASM 2.0;
gate foo a { h a; }
qreg q[1];
`
	_, err := Parse(src)
	require.Error(err)
}

func TestParseRejectsUnknownRegister(t *testing.T) {
	require := require.New(t)
	src := `
OPENQASM 2.0;
qreg q[1];
h p[0];
`
	_, err := Parse(src)
	require.Error(err)
}
