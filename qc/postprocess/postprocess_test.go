package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBitstringCountsReversesLSBFirst(t *testing.T) {
	assert := assert.New(t)
	raw := map[string]int{"01": 10, "10": 5}
	ints, overflowed := BitstringCounts(raw, true)
	assert.Empty(overflowed)
	// "01" reversed -> "10" -> 2; "10" reversed -> "01" -> 1
	assert.Equal(10, ints[2])
	assert.Equal(5, ints[1])
}

func TestBitstringCountsGuardsOverflow(t *testing.T) {
	assert := assert.New(t)
	long := ""
	for i := 0; i < 32; i++ {
		long += "1"
	}
	raw := map[string]int{long: 3, "0": 7}
	ints, overflowed := BitstringCounts(raw, false)
	assert.Contains(overflowed, long)
	assert.Equal(7, ints[0])
	assert.NotContains(ints, 1<<31-1)
}

func TestZExpectationAllZerosIsPlusOne(t *testing.T) {
	assert := assert.New(t)
	counts := map[int]int{0: 100}
	z := ZExpectation(counts, 2)
	assert.InDelta(1.0, z[0], 1e-9)
	assert.InDelta(1.0, z[1], 1e-9)
}

func TestZExpectationEvenSplitIsZero(t *testing.T) {
	assert := assert.New(t)
	counts := map[int]int{0: 50, 1: 50}
	z := ZExpectation(counts, 1)
	assert.InDelta(0.0, z[0], 1e-9)
}

func TestJensenShannonDivergenceIdenticalDistributionsIsZero(t *testing.T) {
	assert := assert.New(t)
	amps := []Complex{{R: 0.7071067811865476}, {R: 0}, {R: 0}, {R: 0.7071067811865476}}
	counts := map[int]int{0: 500, 3: 500}
	d := JensenShannonDivergence(amps, counts)
	assert.InDelta(0.0, d, 1e-6)
}

func TestCheckJSDExceedsThresholdReturnsTypedError(t *testing.T) {
	require := require.New(t)
	amps := []Complex{{R: 1}, {R: 0}}
	counts := map[int]int{0: 1, 1: 999}
	_, err := CheckJSD(amps, counts, 0.01)
	require.Error(err)
	var exceeded *ErrThresholdExceeded
	require.ErrorAs(err, &exceeded)
}

func TestMitigateReadoutInvertsKnownConfusion(t *testing.T) {
	require := require.New(t)
	// Perfect readout: confusion matrix is identity, mitigation is a no-op.
	identity := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	out, err := MitigateReadout(identity, []float64{0.3, 0.7})
	require.NoError(err)
	require.InDelta(0.3, out[0], 1e-9)
	require.InDelta(0.7, out[1], 1e-9)
}

func TestBuildConfusionMatrixFromSyntheticOneQubit(t *testing.T) {
	require := require.New(t)
	prepared := []PreparedCounts{
		{PreparedState: 0, Counts: map[int]int{0: 950, 1: 50}},
		{PreparedState: 1, Counts: map[int]int{0: 40, 1: 960}},
	}
	m, err := BuildConfusionMatrix(1, prepared)
	require.NoError(err)
	require.InDelta(0.95, m.At(0, 0), 1e-9)
	require.InDelta(0.05, m.At(1, 0), 1e-9)
	require.InDelta(0.04, m.At(0, 1), 1e-9)
	require.InDelta(0.96, m.At(1, 1), 1e-9)
}

func TestPreparationBitsEncodesBasisState(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]int{0, 2}, PreparationBits(5, 3)) // 5 = 0b101
}

func TestRichardsonExtrapolateLinearTrend(t *testing.T) {
	require := require.New(t)
	// value = 1.0 - 0.1*level, intercept at level 0 should recover 1.0.
	levels := []int{1, 3, 5}
	values := []float64{0.9, 0.7, 0.5}
	z0, err := RichardsonExtrapolate(levels, values, 1)
	require.NoError(err)
	require.InDelta(1.0, z0, 1e-6)
}

func TestRichardsonExtrapolateRejectsUnderdeterminedFit(t *testing.T) {
	require := require.New(t)
	_, err := RichardsonExtrapolate([]int{1, 3}, []float64{1, 2}, 3)
	require.Error(err)
}
