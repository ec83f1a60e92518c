package molecule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

func TestNew_Valid(t *testing.T) {
	m, err := New("  CCO  ")
	require.NoError(t, err)

	assert.Equal(t, "CCO", m.SMILES)
	assert.NotNil(t, m.Graph)
	assert.NoError(t, m.ID.Validate())
	require.Len(t, m.StructureKey, 27)
	parts := strings.Split(m.StructureKey, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 14)
	assert.Len(t, parts[1], 10)
	assert.Len(t, parts[2], 1)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"bad_chars", "CC{O}"},
		{"unparseable", "C1CC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.smiles)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSMILES))
		})
	}
}

func TestStructureKey_Stable(t *testing.T) {
	m1, err := New("CCO")
	require.NoError(t, err)
	m2, err := New("CCO")
	require.NoError(t, err)
	m3, err := New("CCN")
	require.NoError(t, err)

	assert.Equal(t, m1.StructureKey, m2.StructureKey)
	assert.NotEqual(t, m1.StructureKey, m3.StructureKey)
}

func TestCalculateFingerprint_Memoized(t *testing.T) {
	m, err := New("c1ccccc1O")
	require.NoError(t, err)

	fp1, err := m.CalculateFingerprint(chem.FPMorgan)
	require.NoError(t, err)
	fp2, err := m.CalculateFingerprint(chem.FPMorgan)
	require.NoError(t, err)
	assert.Same(t, fp1, fp2)

	_, err = m.CalculateFingerprint(chem.FingerprintType("pharmacophore"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFingerprintUnsupported))
}

func TestCalculateFingerprint_AllTypes(t *testing.T) {
	m, err := New("CC(=O)O")
	require.NoError(t, err)

	for _, fpType := range chem.AllFingerprintTypes() {
		fp, err := m.CalculateFingerprint(fpType)
		require.NoError(t, err, "type %s", fpType)
		assert.Equal(t, fpType, fp.Type)
		assert.Greater(t, fp.NumOnBits, 0)
	}
}

func TestCalculateDescriptors_Memoized(t *testing.T) {
	m, err := New("CCO")
	require.NoError(t, err)

	d1 := m.CalculateDescriptors()
	d2 := m.CalculateDescriptors()
	assert.Same(t, d1, d2)
	assert.InDelta(t, 46.069, d1.MolecularWeight, 0.01)
}

func TestSimilarityTo(t *testing.T) {
	a, err := New("CCO")
	require.NoError(t, err)
	b, err := New("OCC")
	require.NoError(t, err)
	c, err := New("c1ccccc1")
	require.NoError(t, err)

	s, err := a.SimilarityTo(b, chem.FPMorgan)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s)

	s, err = a.SimilarityTo(c, chem.FPMorgan)
	require.NoError(t, err)
	assert.Less(t, s, 0.35)
}

func TestToDTO(t *testing.T) {
	m, err := New("CCO")
	require.NoError(t, err)
	m.Name = "ethanol"
	m.Active = true
	m.CalculateDescriptors()
	_, err = m.CalculateFingerprint(chem.FPMorgan)
	require.NoError(t, err)

	dto := m.ToDTO()
	assert.Equal(t, m.SMILES, dto.SMILES)
	assert.Equal(t, m.StructureKey, dto.StructureKey)
	assert.Equal(t, "ethanol", dto.Name)
	assert.True(t, dto.Active)
	assert.NotNil(t, dto.Descriptors)
	require.Contains(t, dto.Fingerprints, chem.FPMorgan)
	assert.NotEmpty(t, dto.Fingerprints[chem.FPMorgan])
}
