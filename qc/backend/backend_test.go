package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinBackendsAreRegistered(t *testing.T) {
	assert := assert.New(t)
	names := List()
	for _, want := range []string{"statevector", "qsim", "density-matrix", "mps", "sparse", "braket", "hardware"} {
		assert.Contains(names, want)
	}
}

func TestCreateUnknownBackendErrors(t *testing.T) {
	require := require.New(t)
	_, err := Create("not-a-real-backend")
	require.Error(err)
}

func TestDensityMatrixRejectsUnknownPreset(t *testing.T) {
	require := require.New(t)
	b, err := Create("density-matrix")
	require.NoError(err)
	err = b.Initialise(Config{"noise_preset": "bogus"})
	require.Error(err)
}

func TestDensityMatrixAcceptsKnownPresets(t *testing.T) {
	require := require.New(t)
	for _, preset := range []string{"", "none", "light", "heavy"} {
		b, err := Create("density-matrix")
		require.NoError(err)
		require.NoError(b.Initialise(Config{"noise_preset": preset}))
	}
}

func TestRemoteBackendRequiresEndpoint(t *testing.T) {
	require := require.New(t)
	b, err := Create("hardware")
	require.NoError(err)
	require.Error(b.Initialise(Config{}))
	require.NoError(b.Initialise(Config{"endpoint": "https://example.invalid"}))
}

func TestRegistryDoubleRegisterFails(t *testing.T) {
	require := require.New(t)
	r := NewRegistry()
	require.NoError(r.Register("x", newStatevectorBackend))
	require.Error(r.Register("x", newStatevectorBackend))
}
