package macro

import (
	"testing"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/stretchr/testify/require"
)

func TestListCoversAllFifteenMacros(t *testing.T) {
	want := []string{
		"amplitude_estimation", "comparator", "controlled", "division",
		"encoding", "equality", "exponential_search", "grover_diffuser",
		"iqft", "multi_controlled_u", "multiply", "qft", "qpe",
		"ripple_adder", "subtract",
	}
	require.ElementsMatch(t, want, List())
}

func TestQFTRoundTrip(t *testing.T) {
	d := dag.New(3, 0)
	require.NoError(t, Apply("qft", d, []int{0, 1, 2}, nil))
	require.NoError(t, Apply("iqft", d, []int{0, 1, 2}, nil))
	require.NoError(t, d.Validate())
	require.NotEmpty(t, d.Operations())
}

func TestAmplitudeEstimation(t *testing.T) {
	d := dag.New(4, 0)
	qubits := []int{0, 1, 2, 3} // 2 counting + 2 search
	params := map[string]float64{"counting_bits": 2, "target": 1}
	require.NoError(t, Apply("amplitude_estimation", d, qubits, params))
	require.NoError(t, d.Validate())
}

func TestExponentialSearch(t *testing.T) {
	d := dag.New(3, 0)
	params := map[string]float64{"target": 5, "iterations": 2}
	require.NoError(t, Apply("exponential_search", d, []int{0, 1, 2}, params))
	require.NoError(t, d.Validate())
}

func TestMultiControlledU(t *testing.T) {
	d := dag.New(4, 0)
	params := map[string]float64{"theta": 0.5}
	// controls = {0,1}, ancilla = 2, target = 3
	require.NoError(t, Apply("multi_controlled_u", d, []int{0, 1, 2, 3}, params))
	require.NoError(t, d.Validate())

	require.EqualError(t, Apply("multi_controlled_u", dag.New(2, 0), []int{0, 1}, params),
		"macro: multi_controlled_u needs >=1 control, 1 ancilla, 1 target")
}

func TestEncoding(t *testing.T) {
	d := dag.New(3, 0)
	require.NoError(t, Apply("encoding", d, []int{0, 1, 2}, map[string]float64{"value": 5}))
	require.NoError(t, d.Validate())
	// value=5 (binary 101) flips qubits 0 and 2, not 1: 2 gates.
	require.Len(t, d.Operations(), 2)
}

func TestControlledSwap(t *testing.T) {
	d := dag.New(3, 0)
	require.NoError(t, Apply("controlled", d, []int{0, 1, 2}, nil))
	require.NoError(t, d.Validate())
	require.Len(t, d.Operations(), 3)

	require.Error(t, Apply("controlled", dag.New(2, 0), []int{0, 1}, nil))
}

func TestRippleAdderAndSubtractAreInverses(t *testing.T) {
	// a(2) + b(2) + carry(3) = 7 qubits.
	qubits := []int{0, 1, 2, 3, 4, 5, 6}
	params := map[string]float64{"bits": 2}

	add := dag.New(7, 0)
	require.NoError(t, Apply("ripple_adder", add, qubits, params))
	require.NoError(t, add.Validate())

	sub := dag.New(7, 0)
	require.NoError(t, Apply("subtract", sub, qubits, params))
	require.NoError(t, sub.Validate())

	// Same gate count: subtraction is the adder's circuit reversed, not
	// shortened or lengthened.
	require.Len(t, sub.Operations(), len(add.Operations()))
}

func TestMultiplication(t *testing.T) {
	n := 2
	qubits := make([]int, 4*n+n*(n+1))
	for i := range qubits {
		qubits[i] = i
	}
	d := dag.New(len(qubits), 0)
	require.NoError(t, Apply("multiply", d, qubits, map[string]float64{"bits": float64(n)}))
	require.NoError(t, d.Validate())

	require.Error(t, Apply("multiply", dag.New(3, 0), []int{0, 1, 2}, map[string]float64{"bits": 2}))
}

func TestDivision(t *testing.T) {
	n := 2
	qubits := make([]int, 3*n+n*n+n*(n+1)+n)
	for i := range qubits {
		qubits[i] = i
	}
	d := dag.New(len(qubits), 0)
	require.NoError(t, Apply("division", d, qubits, map[string]float64{"bits": float64(n)}))
	require.NoError(t, d.Validate())

	require.Error(t, Apply("division", dag.New(3, 0), []int{0, 1, 2}, map[string]float64{"bits": 2}))
}

func TestApplyUnknownMacro(t *testing.T) {
	d := dag.New(1, 0)
	err := Apply("not-a-macro", d, []int{0}, nil)
	require.Error(t, err)
}
