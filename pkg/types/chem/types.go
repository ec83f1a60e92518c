// Package chem defines the chemistry-domain enumerations and Data Transfer
// Objects shared across every layer of ChemSAR.  No domain logic lives here,
// only plain data types that are safe to import from any layer without
// creating circular dependencies.
package chem

import (
	"fmt"

	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// FingerprintType identifies which fingerprint algorithm was used to generate
// a particular bit vector for a molecule.
type FingerprintType string

const (
	// FPMorgan is the circular Morgan / ECFP-style fingerprint
	// (default radius 2, 2048 bits).
	FPMorgan FingerprintType = "morgan"

	// FPMACCS is the 166-bit MACCS-style structural keys fingerprint.
	FPMACCS FingerprintType = "maccs"

	// FPTopological is the Daylight-style path fingerprint.
	FPTopological FingerprintType = "topological"
)

// AllFingerprintTypes returns every supported fingerprint type.
func AllFingerprintTypes() []FingerprintType {
	return []FingerprintType{FPMorgan, FPMACCS, FPTopological}
}

// IsValid reports whether the fingerprint type is supported.
func (t FingerprintType) IsValid() bool {
	switch t {
	case FPMorgan, FPMACCS, FPTopological:
		return true
	default:
		return false
	}
}

// String returns the string representation of the fingerprint type.
func (t FingerprintType) String() string { return string(t) }

// ParseFingerprintType parses a string into a FingerprintType.
func ParseFingerprintType(s string) (FingerprintType, error) {
	t := FingerprintType(s)
	if t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("unsupported fingerprint type: %q", s)
}

// Descriptors holds the computed physicochemical descriptor set for a
// molecule.  Values are estimates produced by the built-in atom-contribution
// models, not exact reference implementations.
type Descriptors struct {
	// MolecularWeight is the molecular weight in g/mol including implicit
	// hydrogens.
	MolecularWeight float64 `json:"molecular_weight"`

	// LogP is the estimated octanol-water partition coefficient.
	LogP float64 `json:"log_p"`

	// TPSA is the estimated topological polar surface area in A^2.
	TPSA float64 `json:"tpsa"`

	// HBondDonors is the number of hydrogen-bond donor groups (NH, OH).
	HBondDonors int `json:"h_bond_donors"`

	// HBondAcceptors is the number of hydrogen-bond acceptor atoms (N, O).
	HBondAcceptors int `json:"h_bond_acceptors"`

	// RotatableBonds is the number of non-ring single bonds between heavy
	// atoms that each carry at least one further heavy-atom neighbor.
	RotatableBonds int `json:"rotatable_bonds"`

	// AromaticRings is the number of detected aromatic rings.
	AromaticRings int `json:"aromatic_rings"`

	// HeavyAtoms is the number of non-hydrogen atoms.
	HeavyAtoms int `json:"heavy_atoms"`
}

// LipinskiPass reports whether the descriptor set satisfies Lipinski's rule
// of five (MW <= 500, LogP <= 5, donors <= 5, acceptors <= 10).
func (d Descriptors) LipinskiPass() bool {
	return d.MolecularWeight <= 500 &&
		d.LogP <= 5 &&
		d.HBondDonors <= 5 &&
		d.HBondAcceptors <= 10
}

// MoleculeDTO is the cross-layer representation of a molecule.
type MoleculeDTO struct {
	common.BaseEntity

	SMILES       string                     `json:"smiles"`
	StructureKey string                     `json:"structure_key"`
	Name         string                     `json:"name,omitempty"`
	Active       bool                       `json:"active"`
	Descriptors  *Descriptors               `json:"descriptors,omitempty"`
	Fingerprints map[FingerprintType][]byte `json:"fingerprints,omitempty"`
	ClusterLabel int                        `json:"cluster_label"`
}

// ClusterRequest carries the parameters for a clustering run.
type ClusterRequest struct {
	// SMILES is the ordered list of structures to cluster.
	SMILES []string `json:"smiles"`

	// Names optionally parallels SMILES; missing entries are auto-numbered.
	Names []string `json:"names,omitempty"`

	// Cutoff is the Tanimoto distance threshold in (0, 1]; 0 selects the
	// default of 0.35.
	Cutoff float64 `json:"cutoff,omitempty"`

	// FingerprintType selects the fingerprint; empty selects Morgan.
	FingerprintType FingerprintType `json:"fingerprint_type,omitempty"`
}

// ClusterMember describes one molecule's placement after clustering.
type ClusterMember struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	SMILES string `json:"smiles"`
	Label  int    `json:"label"`
}

// ClusterResponse is the result of a clustering run.
type ClusterResponse struct {
	Cutoff       float64         `json:"cutoff"`
	NumClusters  int             `json:"num_clusters"`
	NumMolecules int             `json:"num_molecules"`
	Members      []ClusterMember `json:"members"`
}

// SimilarityRequest carries the parameters for a one-vs-many similarity
// search.
type SimilarityRequest struct {
	Query           string          `json:"query"`
	Targets         []string        `json:"targets"`
	Threshold       float64         `json:"threshold,omitempty"`
	Limit           int             `json:"limit,omitempty"`
	FingerprintType FingerprintType `json:"fingerprint_type,omitempty"`
}

// SimilarityHit is a single match in a similarity search, ordered by
// descending score.
type SimilarityHit struct {
	Index  int     `json:"index"`
	SMILES string  `json:"smiles"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// SimilarityResponse is the result of a similarity search.
type SimilarityResponse struct {
	Query string          `json:"query"`
	Hits  []SimilarityHit `json:"hits"`
}

// IngestRequest carries a dataset to cluster and persist.
type IngestRequest struct {
	SMILES          []string        `json:"smiles"`
	Names           []string        `json:"names,omitempty"`
	Cutoff          float64         `json:"cutoff,omitempty"`
	FingerprintType FingerprintType `json:"fingerprint_type,omitempty"`

	// Replace deletes any existing rows of the dataset first.
	Replace bool `json:"replace,omitempty"`
}

// IngestResponse reports the outcome of a dataset ingestion.
type IngestResponse struct {
	Dataset      string `json:"dataset"`
	NumMolecules int    `json:"num_molecules"`
	NumClusters  int    `json:"num_clusters"`
}

// DatasetListResponse is a page of stored molecules.
type DatasetListResponse struct {
	Dataset   string        `json:"dataset"`
	Total     int64         `json:"total"`
	Molecules []MoleculeDTO `json:"molecules"`
}

// DescriptorRequest carries structures to annotate with descriptors.
type DescriptorRequest struct {
	SMILES []string `json:"smiles"`
}

// DescriptorRow pairs one input structure with its computed descriptors.
type DescriptorRow struct {
	Index       int         `json:"index"`
	SMILES      string      `json:"smiles"`
	Descriptors Descriptors `json:"descriptors"`
	Lipinski    bool        `json:"lipinski_pass"`
}

// DescriptorResponse is the result of a descriptor computation.
type DescriptorResponse struct {
	Rows []DescriptorRow `json:"rows"`
}
