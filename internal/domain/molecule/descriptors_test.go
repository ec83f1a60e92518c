package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDescriptors_Ethanol(t *testing.T) {
	d := ComputeDescriptors(mustGraph(t, "CCO"))

	assert.InDelta(t, 46.069, d.MolecularWeight, 0.01)
	assert.InDelta(t, 20.23, d.TPSA, 0.01)
	assert.Equal(t, 1, d.HBondDonors)
	assert.Equal(t, 1, d.HBondAcceptors)
	assert.Equal(t, 0, d.RotatableBonds)
	assert.Equal(t, 0, d.AromaticRings)
	assert.Equal(t, 3, d.HeavyAtoms)
}

func TestComputeDescriptors_Benzene(t *testing.T) {
	d := ComputeDescriptors(mustGraph(t, "c1ccccc1"))

	assert.InDelta(t, 78.114, d.MolecularWeight, 0.01)
	assert.InDelta(t, 0.0, d.TPSA, 0.01)
	assert.Equal(t, 0, d.HBondDonors)
	assert.Equal(t, 0, d.HBondAcceptors)
	assert.Equal(t, 1, d.AromaticRings)
	assert.Equal(t, 6, d.HeavyAtoms)
	// Aromatic carbons dominate the lipophilicity estimate.
	assert.Greater(t, d.LogP, 2.0)
}

func TestComputeDescriptors_Methoxide(t *testing.T) {
	// The bracket oxygen carries no written hydrogen, so the anion has no
	// donor despite the O-C single bond.
	d := ComputeDescriptors(mustGraph(t, "C[O-]"))

	assert.Equal(t, 0, d.HBondDonors)
	assert.Equal(t, 1, d.HBondAcceptors)
	assert.Equal(t, 2, d.HeavyAtoms)
}

func TestComputeDescriptors_AceticAcid(t *testing.T) {
	d := ComputeDescriptors(mustGraph(t, "CC(=O)O"))

	assert.InDelta(t, 60.052, d.MolecularWeight, 0.01)
	// Carbonyl oxygen plus hydroxyl oxygen.
	assert.InDelta(t, 17.07+20.23, d.TPSA, 0.01)
	assert.Equal(t, 1, d.HBondDonors)
	assert.Equal(t, 2, d.HBondAcceptors)
	assert.Equal(t, 0, d.RotatableBonds)
	// Two polar oxygens pull the partition estimate below zero.
	assert.Less(t, d.LogP, 0.0)
}

func TestComputeDescriptors_RotatableBonds(t *testing.T) {
	tests := []struct {
		smiles string
		want   int
	}{
		{"CCCCC", 2},      // pentane: two internal C-C bonds
		{"C1CCCCC1", 0},   // cyclohexane: ring bonds excluded
		{"CCOCC", 2},      // diethyl ether
		{"c1ccccc1CC", 1}, // ethylbenzene: only the internal chain bond
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			d := ComputeDescriptors(mustGraph(t, tt.smiles))
			assert.Equal(t, tt.want, d.RotatableBonds)
		})
	}
}

func TestComputeDescriptors_Naphthalene(t *testing.T) {
	d := ComputeDescriptors(mustGraph(t, "c1ccc2ccccc2c1"))
	assert.Equal(t, 2, d.AromaticRings)
	assert.Equal(t, 10, d.HeavyAtoms)
	assert.InDelta(t, 128.174, d.MolecularWeight, 0.01)
}

func TestComputeDescriptors_TPSAEnvironments(t *testing.T) {
	// Methylamine: one primary amine.
	d := ComputeDescriptors(mustGraph(t, "CN"))
	assert.InDelta(t, 26.02, d.TPSA, 0.01)

	// Dimethyl ether: one ether oxygen.
	d = ComputeDescriptors(mustGraph(t, "COC"))
	assert.InDelta(t, 9.23, d.TPSA, 0.01)

	// Pyridine: one aromatic nitrogen.
	d = ComputeDescriptors(mustGraph(t, "c1ccncc1"))
	assert.InDelta(t, 12.89, d.TPSA, 0.01)
}

func TestComputeDescriptors_Deterministic(t *testing.T) {
	g := mustGraph(t, "CC(=O)Nc1ccc(O)cc1")
	d1 := ComputeDescriptors(g)
	d2 := ComputeDescriptors(g)
	require.Equal(t, d1, d2)
}
