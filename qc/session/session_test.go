package session

import (
	"testing"

	"github.com/kegliz/qplay/internal/logger"
	"github.com/kegliz/qplay/qc/backend"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bellDAG(t *testing.T) *dag.DAG {
	t.Helper()
	d := dag.New(2, 2)
	require.NoError(t, d.AddGate(gate.H(), []int{0}))
	require.NoError(t, d.AddGate(gate.CNOT(), []int{0, 1}))
	require.NoError(t, d.AddMeasure(0, 0))
	require.NoError(t, d.AddMeasure(1, 1))
	require.NoError(t, d.Validate())
	return d
}

func testPool(t *testing.T, name string) *backend.Pool {
	t.Helper()
	factory := func() backend.Backend {
		b, err := backend.Create(name)
		require.NoError(t, err)
		return b
	}
	p, err := backend.NewPool(factory, 2, backend.Config{})
	require.NoError(t, err)
	return p
}

func TestSetCreatesCellOnFirstAssignment(t *testing.T) {
	assert := assert.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	tbl.Set(0, 0, RunConfig{})
	c, ok := tbl.Get(0, 0)
	assert.True(ok)
	assert.NotEmpty(c.ID)
	assert.Equal(StatePending, c.State)
}

func TestGetMissingCellIsDefault(t *testing.T) {
	assert := assert.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	_, ok := tbl.Get(9, 9)
	assert.False(ok)
}

func TestRunAtExecutesCellAgainstStatevectorBackend(t *testing.T) {
	require := require.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	tbl.RegisterPool("statevector", testPool(t, "statevector"))

	tbl.Set(0, 0, RunConfig{
		NumQubits: 2,
		Shots:     100,
		Backend:   "statevector",
		Source:    bellDAG(t),
	})

	err := tbl.RunAt(0, 0)
	require.NoError(err)

	c, ok := tbl.Get(0, 0)
	require.True(ok)
	require.Equal(StateSucceeded, c.State)
	require.NotNil(c.Result.RawCounts)
	total := 0
	for _, v := range c.Result.IntCounts {
		total += v
	}
	require.Equal(100, total)
}

func TestRunAtUnknownCellErrors(t *testing.T) {
	require := require.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	require.Error(tbl.RunAt(3, 3))
}

func TestRunAtMissingBackendPoolErrors(t *testing.T) {
	require := require.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	tbl.Set(0, 0, RunConfig{
		NumQubits: 2,
		Shots:     10,
		Backend:   "not-registered",
		Source:    bellDAG(t),
	})
	err := tbl.RunAt(0, 0)
	require.Error(err)
}

func TestRunAsyncSynchronisesViaHandle(t *testing.T) {
	require := require.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	tbl.RegisterPool("statevector", testPool(t, "statevector"))
	tbl.Set(1, 1, RunConfig{
		NumQubits: 2,
		Shots:     50,
		Backend:   "statevector",
		Source:    bellDAG(t),
	})

	h := tbl.RunAsync(1, 1)
	require.NoError(h.Wait())

	c, ok := tbl.Get(1, 1)
	require.True(ok)
	require.Equal(StateSucceeded, c.State)
}

func TestRunExecutesEveryCell(t *testing.T) {
	require := require.New(t)
	tbl := NewTable(logger.NewLogger(logger.LoggerOptions{}))
	tbl.RegisterPool("statevector", testPool(t, "statevector"))
	for i := 0; i < 3; i++ {
		tbl.Set(i, 0, RunConfig{
			NumQubits: 2,
			Shots:     10,
			Backend:   "statevector",
			Source:    bellDAG(t),
		})
	}

	errs := tbl.Run()
	require.Len(errs, 3)
	for _, err := range errs {
		require.NoError(err)
	}
}
