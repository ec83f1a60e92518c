package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintType_IsValid(t *testing.T) {
	tests := []struct {
		ft   FingerprintType
		want bool
	}{
		{FPMorgan, true},
		{FPMACCS, true},
		{FPTopological, true},
		{FingerprintType("atom_pair"), false},
		{FingerprintType(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.ft), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ft.IsValid())
		})
	}
}

func TestParseFingerprintType(t *testing.T) {
	got, err := ParseFingerprintType("morgan")
	assert.NoError(t, err)
	assert.Equal(t, FPMorgan, got)

	_, err = ParseFingerprintType("invalid")
	assert.Error(t, err)
}

func TestAllFingerprintTypes(t *testing.T) {
	types := AllFingerprintTypes()
	assert.Len(t, types, 3)
	assert.Contains(t, types, FPMorgan)
}

func TestDescriptors_LipinskiPass(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptors
		want bool
	}{
		{"drug_like", Descriptors{MolecularWeight: 320, LogP: 2.1, HBondDonors: 2, HBondAcceptors: 5}, true},
		{"too_heavy", Descriptors{MolecularWeight: 612, LogP: 2.1, HBondDonors: 2, HBondAcceptors: 5}, false},
		{"too_greasy", Descriptors{MolecularWeight: 320, LogP: 6.3, HBondDonors: 2, HBondAcceptors: 5}, false},
		{"too_many_donors", Descriptors{MolecularWeight: 320, LogP: 2.1, HBondDonors: 6, HBondAcceptors: 5}, false},
		{"boundary", Descriptors{MolecularWeight: 500, LogP: 5, HBondDonors: 5, HBondAcceptors: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.LipinskiPass())
		})
	}
}
