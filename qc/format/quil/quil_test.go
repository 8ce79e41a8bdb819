package quil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bellSource = `
# Bell state
DECLARE ro BIT[2]
H 0
CNOT 0 1
MEASURE 0 ro[0]
MEASURE 1 ro[1]
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
DECLARE ro BIT[1]
RZ(pi/2) 0
MEASURE 0 ro[0]
`
	d, err := Parse(src)
	require.NoError(err)
	ops := d.Operations()
	require.Len(ops, 2)
	require.Equal("RZ", ops[0].G.Name())
	require.InDelta(1.5707963267948966, ops[0].G.Params()[0].Value(), 1e-9)
}

func TestParseInfersQubitCountWithoutDeclare(t *testing.T) {
	require := require.New(t)
	src := `
X 0
MEASURE 0
`
	d, err := Parse(src)
	require.NoError(err)
	require.Equal(1, d.Qubits())
	require.Equal(1, d.Clbits())
}

func TestParseRejectsMalformedQubitIndex(t *testing.T) {
	require := require.New(t)
	_, err := Parse("H abc\n")
	require.Error(err)
}
