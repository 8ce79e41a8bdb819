package ir

import (
	"testing"

	"github.com/kegliz/qplay/qc/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenSimpleTree(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	root := NewComposite("bell", nil)
	require.NoError(root.Append(NewPrimitive(gate.H(), []int{0}, -1)))
	require.NoError(root.Append(NewPrimitive(gate.CNOT(), []int{0, 1}, -1)))
	require.NoError(root.Append(Instruction{Primitive: &Primitive{Gate: gate.Measure(), Qubits: []int{0}, Cbit: 0}}))

	d, err := Flatten(root, 2, 1, nil)
	require.NoError(err)
	require.NoError(d.Validate())
	assert.Len(d.Operations(), 3)
}

func TestFlattenRejectsBadSpan(t *testing.T) {
	require := require.New(t)
	root := NewComposite("bad", nil)
	err := root.Append(NewPrimitive(gate.CNOT(), []int{0}, -1))
	require.Error(err)
}

func TestFlattenBindsSymbolicParams(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	root := NewComposite("rot", []string{"theta"})
	require.NoError(root.Append(NewPrimitive(gate.Rx(gate.Symbolic("theta")), []int{0}, -1)))

	d, err := Flatten(root, 1, 0, map[string]float64{"theta": 1.57})
	require.NoError(err)
	ops := d.Operations()
	require.Len(ops, 1)
	assert.Equal("RX", ops[0].G.Name())
	assert.InDelta(1.57, ops[0].G.Params()[0].Value(), 1e-9)
}

func TestFlattenNestedComposite(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	inner := NewComposite("pair", nil)
	require.NoError(inner.Append(NewPrimitive(gate.H(), []int{0}, -1)))
	require.NoError(inner.Append(NewPrimitive(gate.X(), []int{1}, -1)))

	outer := NewComposite("outer", nil)
	require.NoError(outer.Append(Instruction{Composite: inner}))

	d, err := Flatten(outer, 2, 0, nil)
	require.NoError(err)
	assert.Len(d.Operations(), 2)
}
