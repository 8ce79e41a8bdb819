package xasm

import (
	"testing"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteParseRoundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := dag.New(2, 1)
	require.NoError(d.AddGate(gate.H(), []int{0}))
	require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
	require.NoError(d.AddGate(gate.Rz(gate.Concrete(0.25)), []int{1}))
	require.NoError(d.AddMeasure(1, 0))
	require.NoError(d.Validate())

	lines, measures, err := Write(d)
	require.NoError(err)
	require.Len(lines, 3)
	require.Equal([][2]int{{1, 0}}, measures)

	parsed, err := Parse(lines, measures, 2, 1)
	require.NoError(err)
	require.NoError(parsed.Validate())

	ops := parsed.Operations()
	require.Len(ops, 4)
	assert.Equal("H", ops[0].G.Name())
	assert.Equal("CNOT", ops[1].G.Name())
	assert.Equal("RZ", ops[2].G.Name())
	assert.InDelta(0.25, ops[2].G.Params()[0].Value(), 1e-12)
	assert.Equal(0, ops[3].Cbit)
}

func TestWriteRejectsUnboundSymbolicParam(t *testing.T) {
	require := require.New(t)

	d := dag.New(1, 0)
	require.NoError(d.AddGate(gate.Rz(gate.Symbolic("theta")), []int{0}))
	require.NoError(d.Validate())

	_, _, err := Write(d)
	require.Error(err)
}
