package pass

import (
	"testing"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDAG(t *testing.T, qubits, clbits int, add func(d *dag.DAG)) *dag.DAG {
	t.Helper()
	d := dag.New(qubits, clbits)
	add(d)
	require.NoError(t, d.Validate())
	return d
}

func TestRedundancyRemovalCancelsSelfInverse(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 1, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.H(), []int{0}))
		require.NoError(d.AddGate(gate.H(), []int{0}))
		require.NoError(d.AddGate(gate.X(), []int{0}))
	})

	out, err := (RedundancyRemoval{}).Apply(d)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 1)
	assert.Equal("X", ops[0].G.Name())
}

func TestRedundancyRemovalCancelsChain(t *testing.T) {
	require := require.New(t)

	d := buildDAG(t, 1, 0, func(d *dag.DAG) {
		for i := 0; i < 4; i++ {
			require.NoError(d.AddGate(gate.X(), []int{0}))
		}
	})

	out, err := (RedundancyRemoval{}).Apply(d)
	require.NoError(err)
	assert.Len(t, out.Operations(), 0)
}

func TestRedundancyRemovalIsIdempotent(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 2, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.H(), []int{0}))
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
		require.NoError(d.AddGate(gate.H(), []int{0}))
	})

	pass := RedundancyRemoval{}
	once, err := pass.Apply(d)
	require.NoError(err)
	assert.Len(once.Operations(), 0)

	twice, err := pass.Apply(once)
	require.NoError(err)
	assert.Len(twice.Operations(), 0)
}

func TestRedundancyRemovalMergesRotations(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 1, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.Rz(gate.Concrete(0.3)), []int{0}))
		require.NoError(d.AddGate(gate.Rz(gate.Concrete(0.4)), []int{0}))
	})

	out, err := (RedundancyRemoval{}).Apply(d)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 1)
	assert.Equal("RZ", ops[0].G.Name())
	assert.InDelta(0.7, ops[0].G.Params()[0].Value(), 1e-12)
}

func TestRedundancyRemovalDropsFullTurnRotation(t *testing.T) {
	require := require.New(t)

	d := buildDAG(t, 1, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.Rz(gate.Concrete(2*3.14159265358979)), []int{0}))
		require.NoError(d.AddGate(gate.Rz(gate.Concrete(2*3.14159265358979)), []int{0}))
	})

	out, err := (RedundancyRemoval{}).Apply(d)
	require.NoError(err)
	assert.Len(t, out.Operations(), 0)
}

func TestRedundancyRemovalPreservesMeasurements(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 1, 1, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.X(), []int{0}))
		require.NoError(d.AddMeasure(0, 0))
	})

	out, err := (RedundancyRemoval{}).Apply(d)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 2)
	assert.Equal(0, ops[1].Cbit)
}

func TestTwoQubitSquashDecomposesCNOT(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 2, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
	})

	out, err := (TwoQubitSquash{Native: "cz"}).Apply(d)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 3)
	assert.Equal("H", ops[0].G.Name())
	assert.Equal("CZ", ops[1].G.Name())
	assert.Equal("H", ops[2].G.Name())
}

func TestTwoQubitSquashIdempotentOnceNative(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 2, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
	})

	squash := TwoQubitSquash{Native: "cz"}
	once, err := squash.Apply(d)
	require.NoError(err)
	twice, err := squash.Apply(once)
	require.NoError(err)
	assert.Equal(len(once.Operations()), len(twice.Operations()))
	for i, op := range twice.Operations() {
		assert.Equal(once.Operations()[i].G.Name(), op.G.Name())
	}
}

func TestPeepholeCancelsDuplicateCNOT(t *testing.T) {
	require := require.New(t)

	d := buildDAG(t, 2, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
	})

	out, err := (Peephole{}).Apply(d)
	require.NoError(err)
	assert.Len(t, out.Operations(), 0)
}

func TestInitialStateSimplifyDropsLeadingPhaseGates(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 1, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.Z(), []int{0}))
		require.NoError(d.AddGate(gate.H(), []int{0}))
	})

	out, err := (InitialStateSimplify{}).Apply(d)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 1)
	assert.Equal("H", ops[0].G.Name())
}

func TestInitialStateSimplifyKeepsGateAfterFirstTouch(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 1, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.H(), []int{0}))
		require.NoError(d.AddGate(gate.Z(), []int{0}))
	})

	out, err := (InitialStateSimplify{}).Apply(d)
	require.NoError(err)
	ops := out.Operations()
	require.Len(ops, 2)
	assert.Equal("Z", ops[1].G.Name())
}

func TestPipelineRunsPassesInOrder(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := buildDAG(t, 2, 0, func(d *dag.DAG) {
		require.NoError(d.AddGate(gate.Z(), []int{0}))
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
		require.NoError(d.AddGate(gate.CNOT(), []int{0, 1}))
	})

	pipeline := NewPipeline(InitialStateSimplify{}, RedundancyRemoval{})
	out, err := pipeline.Apply(d)
	require.NoError(err)
	assert.Len(out.Operations(), 0)
	assert.Equal([]string{"initial-state-simplify", "redundancy-removal"}, pipeline.Names())
}
