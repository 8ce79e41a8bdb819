package placement

import (
	"testing"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteKeepsAlreadyAdjacentGateUnchanged(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := dag.New(2, 0)
	require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
	require.NoError(d.Validate())

	topo := LinearChain(2)
	out, pl, err := Route(d, topo)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 1)
	assert.Equal("CNOT", ops[0].G.Name())
	assert.Equal([]int{0, 1}, pl.LogicalToPhysical)
}

func TestRouteInsertsSwapsOnLinearChain(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// logical qubits 0 and 2 are not adjacent on a 0-1-2 line.
	d := dag.New(3, 0)
	require.NoError(d.AddGate(gate.CNOT(), []int{0, 2}))
	require.NoError(d.Validate())

	topo := LinearChain(3)
	out, _, err := Route(d, topo)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 2)
	assert.Equal("SWAP", ops[0].G.Name())

	last := ops[len(ops)-1]
	require.Len(last.Qubits, 2)
	assert.True(topo.Adjacent(last.Qubits[0], last.Qubits[1]))
}

func TestRouteRejectsGateWiderThanTwoQubits(t *testing.T) {
	require := require.New(t)

	d := dag.New(3, 0)
	require.NoError(d.AddGate(gate.Toffoli(), []int{0, 1, 2}))
	require.NoError(d.Validate())

	topo := LinearChain(3)
	_, _, err := Route(d, topo)
	require.Error(err)
}

func TestRoutePreservesMeasurementClbit(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := dag.New(3, 1)
	require.NoError(d.AddGate(gate.CNOT(), []int{0, 2}))
	require.NoError(d.AddMeasure(2, 0))
	require.NoError(d.Validate())

	topo := LinearChain(3)
	out, pl, err := Route(d, topo)
	require.NoError(err)

	ops := out.Operations()
	last := ops[len(ops)-1]
	assert.Equal(0, last.Cbit)
	assert.Equal(pl.LogicalToPhysical[2], last.Qubits[0])
}

func TestRouteNoiseAwarePrefersHighFidelityPath(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// 0-1-2-3 chain plus a direct, low-fidelity 0-3 shortcut: the
	// noise-aware router should still take the long way if the
	// shortcut is bad enough, since -log(fidelity) dominates hop count.
	topo, err := NewTopology(4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}})
	require.NoError(err)
	device := &Device{
		Topo: topo,
		EdgeFidelity: map[[2]int]float64{
			{0, 1}: 0.999, {1, 2}: 0.999, {2, 3}: 0.999,
			{0, 3}: 0.10,
		},
	}

	d := dag.New(4, 0)
	require.NoError(d.AddGate(gate.CNOT(), []int{0, 3}))
	require.NoError(d.Validate())

	out, _, err := RouteNoiseAware(d, device)
	require.NoError(err)
	ops := out.Operations()
	// the long way (via 1,2) costs 3 cheap hops; the shortcut costs one
	// very lossy hop. Expect routing through the chain, i.e. more than
	// one SWAP before the final 2-qubit gate.
	swaps := 0
	for _, op := range ops {
		if op.G.Name() == "SWAP" {
			swaps++
		}
	}
	assert.GreaterOrEqual(swaps, 2)
}
