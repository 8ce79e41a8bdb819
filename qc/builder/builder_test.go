package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMeasureAllInfersFromTouchedQubits is the spec's boundary property:
// a builder declared with 10 qubits that only touches {0,3,7} measures
// exactly 8 qubits (highest touched + 1) when MeasureAll is called with
// a negative n, not the full declared register size.
func TestMeasureAllInfersFromTouchedQubits(t *testing.T) {
	require := require.New(t)

	bd := New(Q(10), C(10))
	bd.H(0).X(3).CNOT(3, 7).MeasureAll(-1)

	d, err := bd.BuildDAG()
	require.NoError(err)
	require.Equal(10, d.Qubits())

	measured := 0
	for _, n := range d.Operations() {
		if n.Cbit >= 0 {
			measured++
		}
	}
	require.Equal(8, measured)
}

func TestMeasureAllInfersFromTouchedQubitsEmptyCircuit(t *testing.T) {
	require := require.New(t)

	bd := New(Q(5), C(5))
	bd.MeasureAll(-1)

	d, err := bd.BuildDAG()
	require.NoError(err)

	measured := 0
	for _, n := range d.Operations() {
		if n.Cbit >= 0 {
			measured++
		}
	}
	require.Zero(measured)
}

func TestMeasureAllExplicitN(t *testing.T) {
	require := require.New(t)

	bd := New(Q(10), C(10))
	bd.H(0).MeasureAll(3)

	d, err := bd.BuildDAG()
	require.NoError(err)

	measured := 0
	for _, n := range d.Operations() {
		if n.Cbit >= 0 {
			measured++
		}
	}
	require.Equal(3, measured)
}
