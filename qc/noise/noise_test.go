package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelFactoriesAreCPTP(t *testing.T) {
	require := require.New(t)

	channels := map[string]Channel{
		"amplitude_damping":            AmplitudeDamping(0.2),
		"phase_damping":                PhaseDamping(0.3),
		"generalized_amplitude_damping": GeneralizedAmplitudeDamping(0.1, 0.4),
		"depolarizing_1q":              Depolarizing1Q(0.05),
		"depolarizing_2q":              Depolarizing2Q(0.1),
		"identity":                     Identity(1),
	}

	for name, c := range channels {
		t.Run(name, func(t *testing.T) {
			require.NoError(c.Validate(1e-9), "channel %s must satisfy completeness relation", name)
		})
	}
}

func maxAbsEntry(m Matrix) float64 {
	var max float64
	for _, row := range m {
		for _, v := range row {
			if a := math.Hypot(real(v), imag(v)); a > max {
				max = a
			}
		}
	}
	return max
}

func TestDepolarizing2QWeights(t *testing.T) {
	require := require.New(t)

	p := 0.16
	c := Depolarizing2Q(p)
	require.Len(c.Kraus, 16)

	wantIdentity := math.Sqrt(1 - 15*p/16)
	gotIdentity := real(c.Kraus[0][0][0])
	require.InDelta(wantIdentity, gotIdentity, 1e-12)

	wantPauli := math.Sqrt(p / 16)
	gotPauli := maxAbsEntry(c.Kraus[1])
	require.InDelta(wantPauli, gotPauli, 1e-12)
}

func TestKrausChoiRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	orig := AmplitudeDamping(0.25)
	choi := KrausToChoi(orig)

	rebuilt, err := ChoiToKraus(choi, orig.Dim, 1e-9)
	require.NoError(err)

	choi2 := KrausToChoi(rebuilt)
	require.Equal(choi.dim(), choi2.dim())
	for i := 0; i < choi.dim(); i++ {
		for j := 0; j < choi.dim(); j++ {
			diff := choi[i][j] - choi2[i][j]
			assert.Less(real(diff)*real(diff)+imag(diff)*imag(diff), 1e-10,
				"choi matrix mismatch at (%d,%d)", i, j)
		}
	}
}

func TestChoiSuperoperatorRoundTrip(t *testing.T) {
	assert := assert.New(t)

	orig := Depolarizing1Q(0.1)
	choi := KrausToChoi(orig)
	sup := ChoiToSuperoperator(choi, orig.Dim)
	back := SuperoperatorToChoi(sup, orig.Dim)

	for i := 0; i < choi.dim(); i++ {
		for j := 0; j < choi.dim(); j++ {
			diff := choi[i][j] - back[i][j]
			assert.Less(real(diff)*real(diff)+imag(diff)*imag(diff), 1e-18,
				"reshuffle round trip mismatch at (%d,%d)", i, j)
		}
	}
}

func TestProcessChoiRoundTrip(t *testing.T) {
	assert := assert.New(t)

	orig := PhaseDamping(0.4)
	choi := KrausToChoi(orig)
	chi := ChoiToProcess(choi, 1)
	back := ProcessToChoi(chi, 1)

	for i := 0; i < choi.dim(); i++ {
		for j := 0; j < choi.dim(); j++ {
			diff := choi[i][j] - back[i][j]
			assert.Less(real(diff)*real(diff)+imag(diff)*imag(diff), 1e-12,
				"process<->choi round trip mismatch at (%d,%d)", i, j)
		}
	}
}

func TestProcessFidelityIdentityIsOne(t *testing.T) {
	assert := assert.New(t)
	ideal := Identity(1)
	f := ProcessFidelity(ideal, ideal)
	assert.InDelta(1.0, f, 1e-9)
}

func TestProcessFidelityDecreasesWithNoise(t *testing.T) {
	assert := assert.New(t)
	ideal := Identity(1)
	light := AmplitudeDamping(0.05)
	heavy := AmplitudeDamping(0.5)

	fLight := ProcessFidelity(light, ideal)
	fHeavy := ProcessFidelity(heavy, ideal)
	assert.Greater(fLight, fHeavy, "more damping should reduce process fidelity")
	assert.True(math.Abs(fLight-1) < math.Abs(fHeavy-1))
}
