package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGraph(t *testing.T, smiles string) *Graph {
	t.Helper()
	g, err := ParseSMILES(smiles)
	require.NoError(t, err)
	return g
}

func TestMorganFingerprint_Deterministic(t *testing.T) {
	g := mustGraph(t, "CCO")

	fp1, err := MorganFingerprint(g, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)
	fp2, err := MorganFingerprint(g, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)

	assert.Equal(t, fp1.Bits, fp2.Bits)
	assert.Equal(t, DefaultFingerprintBits, fp1.Length)
	assert.Greater(t, fp1.NumOnBits, 0)
}

func TestMorganFingerprint_AtomOrderInvariant(t *testing.T) {
	// Ethanol written from either end is the same molecule and must
	// yield identical fingerprints.
	a := mustGraph(t, "CCO")
	b := mustGraph(t, "OCC")

	fpA, err := MorganFingerprint(a, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)
	fpB, err := MorganFingerprint(b, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)

	assert.Equal(t, fpA.Bits, fpB.Bits)
}

func TestMorganFingerprint_DistinguishesStructures(t *testing.T) {
	ethanol := mustGraph(t, "CCO")
	benzene := mustGraph(t, "c1ccccc1")

	fpE, err := MorganFingerprint(ethanol, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)
	fpB, err := MorganFingerprint(benzene, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)

	assert.NotEqual(t, fpE.Bits, fpB.Bits)
}

func TestMorganFingerprint_ArgumentNormalization(t *testing.T) {
	g := mustGraph(t, "CCO")

	// Out-of-range parameters fall back to defaults.
	fp, err := MorganFingerprint(g, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFingerprintBits, fp.Length)

	ref, err := MorganFingerprint(g, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)
	assert.Equal(t, ref.Bits, fp.Bits)

	_, err = MorganFingerprint(nil, DefaultMorganRadius, DefaultFingerprintBits)
	assert.Error(t, err)
}

func TestMACCSFingerprint_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		on     []int
		off    []int
	}{
		{
			name:   "benzene",
			smiles: "c1ccccc1",
			on:     []int{10, 12}, // aromatic ring, any ring
			off:    []int{21, 34}, // no oxygen, no hydroxyl
		},
		{
			name:   "phenol",
			smiles: "c1ccccc1O",
			on:     []int{10, 21, 34},
		},
		{
			name:   "acetic_acid",
			smiles: "CC(=O)O",
			on:     []int{21, 30, 31}, // oxygen, carbonyl, carboxyl
			off:    []int{10, 12},
		},
		{
			name:   "acetonitrile",
			smiles: "CC#N",
			on:     []int{20, 33}, // nitrogen, nitrile
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.smiles)
			fp, err := MACCSFingerprint(g)
			require.NoError(t, err)
			assert.Equal(t, maccsBits, fp.Length)

			for _, bit := range tt.on {
				assert.True(t, fp.GetBit(bit), "bit %d should be set", bit)
			}
			for _, bit := range tt.off {
				assert.False(t, fp.GetBit(bit), "bit %d should be clear", bit)
			}
		})
	}
}

func TestTopologicalFingerprint_OrderInvariant(t *testing.T) {
	a := mustGraph(t, "CCO")
	b := mustGraph(t, "OCC")

	fpA, err := TopologicalFingerprint(a, 1, DefaultMaxPathLength, DefaultFingerprintBits)
	require.NoError(t, err)
	fpB, err := TopologicalFingerprint(b, 1, DefaultMaxPathLength, DefaultFingerprintBits)
	require.NoError(t, err)

	assert.Equal(t, fpA.Bits, fpB.Bits)
	assert.Greater(t, fpA.NumOnBits, 0)
}

func TestFingerprintFromBytes_RoundTrip(t *testing.T) {
	g := mustGraph(t, "c1ccccc1O")
	fp, err := MorganFingerprint(g, DefaultMorganRadius, DefaultFingerprintBits)
	require.NoError(t, err)

	restored := FingerprintFromBytes(fp.Type, fp.Bits, fp.Length)
	assert.Equal(t, fp.NumOnBits, restored.NumOnBits)
	assert.Equal(t, fp.Bits, restored.Bits)
}
