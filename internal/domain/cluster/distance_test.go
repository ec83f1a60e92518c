package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/errors"
)

func fingerprints(t *testing.T, smiles ...string) []*molecule.Fingerprint {
	t.Helper()
	fps := make([]*molecule.Fingerprint, len(smiles))
	for i, s := range smiles {
		g, err := molecule.ParseSMILES(s)
		require.NoError(t, err)
		fps[i], err = molecule.MorganFingerprint(g, molecule.DefaultMorganRadius, molecule.DefaultFingerprintBits)
		require.NoError(t, err)
	}
	return fps
}

func TestLowerTriangleIndex(t *testing.T) {
	// Row-major walk of the lower triangle is contiguous from zero.
	idx := 0
	for i := 1; i < 6; i++ {
		for j := 0; j < i; j++ {
			assert.Equal(t, idx, LowerTriangleIndex(i, j))
			idx++
		}
	}
}

func TestBuildDistances_Length(t *testing.T) {
	fps := fingerprints(t, "CCO", "CCN", "CCC", "c1ccccc1", "CC(=O)O")
	dm, err := BuildDistances(fps)
	require.NoError(t, err)
	assert.Equal(t, 5, dm.N)
	assert.Equal(t, 5*4/2, dm.Len())
}

func TestBuildDistances_Values(t *testing.T) {
	fps := fingerprints(t, "CCO", "OCC", "c1ccccc1")
	dm, err := BuildDistances(fps)
	require.NoError(t, err)

	// Equivalent spellings are at distance zero.
	assert.Equal(t, 0.0, dm.Get(1, 0))
	// Benzene is far from ethanol.
	assert.Greater(t, dm.Get(2, 0), 0.65)

	for i := 0; i < dm.N; i++ {
		assert.Equal(t, 0.0, dm.Get(i, i))
		for j := 0; j < dm.N; j++ {
			d := dm.Get(i, j)
			assert.Equal(t, d, dm.Get(j, i))
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, 1.0)
		}
	}
}

func TestBuildDistances_SmallInputs(t *testing.T) {
	dm, err := BuildDistances(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, dm.N)
	assert.Equal(t, 0, dm.Len())

	dm, err = BuildDistances(fingerprints(t, "CCO"))
	require.NoError(t, err)
	assert.Equal(t, 1, dm.N)
	assert.Equal(t, 0, dm.Len())
}

func TestBuildDistances_MixedTypes(t *testing.T) {
	g, err := molecule.ParseSMILES("CCO")
	require.NoError(t, err)
	morgan, err := molecule.MorganFingerprint(g, molecule.DefaultMorganRadius, molecule.DefaultFingerprintBits)
	require.NoError(t, err)
	maccs, err := molecule.MACCSFingerprint(g)
	require.NoError(t, err)

	_, err = BuildDistances([]*molecule.Fingerprint{morgan, maccs})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeClusteringFailed))
}

func TestDistancesFromSlice(t *testing.T) {
	dm, err := DistancesFromSlice(3, []float64{0.1, 0.9, 0.8})
	require.NoError(t, err)
	assert.Equal(t, 0.1, dm.Get(1, 0))
	assert.Equal(t, 0.9, dm.Get(2, 0))
	assert.Equal(t, 0.8, dm.Get(2, 1))

	_, err = DistancesFromSlice(3, []float64{0.1, 0.9})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDistanceMismatch))
}
