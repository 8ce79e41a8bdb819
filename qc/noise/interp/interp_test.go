package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearInterpolation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	samples := []Sample{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 4}}
	m := Linear(samples)

	y, err := m.Predict(0.5)
	require.NoError(err)
	assert.InDelta(1.0, y, 1e-9)

	_, err = m.Predict(5)
	require.Error(err)
}

func TestPolynomialFitExact(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// y = 1 + 2x + 3x^2
	samples := []Sample{{X: 0, Y: 1}, {X: 1, Y: 6}, {X: 2, Y: 17}}
	m, err := Polynomial(samples, 2)
	require.NoError(err)

	y, err := m.Predict(1)
	require.NoError(err)
	assert.InDelta(6.0, y, 1e-6)
}

func TestAverageModel(t *testing.T) {
	assert := assert.New(t)
	m := Average([]Sample{{X: 0, Y: 1}, {X: 1, Y: 3}})
	y, err := m.Predict(100)
	assert.Error(err)
	assert.InDelta(2.0, y, 1e-9)
}
