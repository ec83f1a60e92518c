package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

func TestParseSMILES_Linear(t *testing.T) {
	g, err := ParseSMILES("CCO")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 3)
	require.Len(t, g.Bonds, 2)

	assert.Equal(t, "C", g.Atoms[0].Symbol)
	assert.Equal(t, "C", g.Atoms[1].Symbol)
	assert.Equal(t, "O", g.Atoms[2].Symbol)

	// Implicit hydrogens from default valences.
	assert.Equal(t, 3, g.Atoms[0].ImplicitH)
	assert.Equal(t, 2, g.Atoms[1].ImplicitH)
	assert.Equal(t, 1, g.Atoms[2].ImplicitH)

	assert.Equal(t, 1, g.Degree(0))
	assert.Equal(t, 2, g.Degree(1))
}

func TestParseSMILES_Benzene(t *testing.T) {
	g, err := ParseSMILES("c1ccccc1")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 6)
	require.Len(t, g.Bonds, 6)

	for i, a := range g.Atoms {
		assert.True(t, a.Aromatic, "atom %d should be aromatic", i)
		assert.True(t, a.InRing, "atom %d should be in ring", i)
		assert.Equal(t, 1, a.ImplicitH, "atom %d hydrogen count", i)
	}
	for i, b := range g.Bonds {
		assert.True(t, b.Aromatic, "bond %d should be aromatic", i)
		assert.True(t, b.InRing, "bond %d should be a ring bond", i)
	}
}

func TestParseSMILES_Branches(t *testing.T) {
	// Acetic acid: C with a double-bonded O branch and a hydroxyl O.
	g, err := ParseSMILES("CC(=O)O")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 4)
	require.Len(t, g.Bonds, 3)

	assert.Equal(t, 2, g.Bonds[1].Order)
	assert.Equal(t, 0, g.Atoms[2].ImplicitH) // carbonyl oxygen
	assert.Equal(t, 1, g.Atoms[3].ImplicitH) // hydroxyl oxygen
	assert.Equal(t, 3, g.Degree(1))
}

func TestParseSMILES_TwoLetterElements(t *testing.T) {
	g, err := ParseSMILES("ClCBr")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 3)
	assert.Equal(t, "Cl", g.Atoms[0].Symbol)
	assert.Equal(t, "C", g.Atoms[1].Symbol)
	assert.Equal(t, "Br", g.Atoms[2].Symbol)
}

func TestParseSMILES_BracketAtoms(t *testing.T) {
	g, err := ParseSMILES("[NH4+]")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 1)
	a := g.Atoms[0]
	assert.Equal(t, "N", a.Symbol)
	assert.Equal(t, 4, a.ImplicitH)
	assert.Equal(t, 1, a.Charge)

	g, err = ParseSMILES("C[O-]")
	require.NoError(t, err)
	assert.Equal(t, -1, g.Atoms[1].Charge)
	assert.Equal(t, 0, g.Atoms[1].ImplicitH)
}

func TestParseSMILES_RingClosure(t *testing.T) {
	g, err := ParseSMILES("C1CCCCC1")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 6)
	require.Len(t, g.Bonds, 6)
	for i, b := range g.Bonds {
		assert.True(t, b.InRing, "bond %d", i)
		assert.False(t, b.Aromatic)
	}
}

func TestParseSMILES_PercentRingClosure(t *testing.T) {
	g, err := ParseSMILES("C%10CCCCC%10")
	require.NoError(t, err)
	assert.Len(t, g.Bonds, 6)
}

func TestParseSMILES_FusedAromatics(t *testing.T) {
	// Naphthalene has ten aromatic atoms and eleven aromatic bonds.
	g, err := ParseSMILES("c1ccc2ccccc2c1")
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 10)
	assert.Len(t, g.Bonds, 11)
	assert.Equal(t, 2, countAromaticRings(g))
}

func TestParseSMILES_Disconnected(t *testing.T) {
	g, err := ParseSMILES("C.C")
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 2)
	assert.Len(t, g.Bonds, 0)
}

func TestParseSMILES_StereoMarkersIgnored(t *testing.T) {
	g, err := ParseSMILES(`F/C=C/F`)
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 4)
	assert.Equal(t, 2, g.Bonds[1].Order)

	g, err = ParseSMILES("N[C@@H](C)C(=O)O")
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 6)
	assert.Equal(t, 1, g.Atoms[1].ImplicitH)
}

func TestParseSMILES_Errors(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"unclosed_branch", "C(C"},
		{"unmatched_close", "C)C"},
		{"unclosed_ring", "C1CCC"},
		{"unterminated_bracket", "C[NH2"},
		{"empty_bracket", "C[]C"},
		{"leading_bond", "=CC"},
		{"bond_after_dot", "C.=C"},
		{"leading_bond_bracket", "#[NH4+]"},
		{"bad_percent_closure", "C%1C"},
		{"unknown_element", "CXC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSMILES(tt.smiles)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSMILES), "got %v", err)
		})
	}
}

func TestParseSMILES_RotatableRingDistinction(t *testing.T) {
	// Biphenyl: the inter-ring bond is the only non-ring bond.
	g, err := ParseSMILES("c1ccccc1-c1ccccc1")
	require.NoError(t, err)

	nonRing := 0
	for _, b := range g.Bonds {
		if !b.InRing {
			nonRing++
		}
	}
	assert.Equal(t, 1, nonRing)
}
