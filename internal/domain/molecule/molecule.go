// Package molecule provides the core domain model for molecular entities in
// ChemSAR: SMILES parsing into a structure graph, fingerprint generation,
// similarity calculation, and physicochemical descriptor estimation.  The
// underlying chemistry models are deliberately simplified; the package-level
// interfaces are the contract that a full cheminformatics backend could
// implement instead.
package molecule

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// validSMILESChars defines the allowed character set for SMILES notation.
// This is a cheap pre-check; full validation happens in the parser.
var validSMILESChars = regexp.MustCompile(`^[A-Za-z0-9@+\-\[\]()=#:/\\%.*]+$`)

// Molecule is the aggregate root for all chemical structure data in the
// pipeline.  It holds the original SMILES, the parsed structure graph, a
// hash-derived structure key used for caching and persistence lookups, and
// lazily computed fingerprints and descriptors.
type Molecule struct {
	common.BaseEntity

	SMILES       string `json:"smiles"`
	StructureKey string `json:"structure_key"`
	Name         string `json:"name,omitempty"`
	Active       bool   `json:"active"`

	// Graph is the parsed structure; never nil for a constructed Molecule.
	Graph *Graph `json:"-"`

	Descriptors  *chem.Descriptors                      `json:"descriptors,omitempty"`
	Fingerprints map[chem.FingerprintType]*Fingerprint `json:"fingerprints,omitempty"`
}

// New constructs a Molecule from a SMILES string.  It validates the character
// set, parses the structure graph, and derives the structure key.  Returns an
// error with code ErrCodeInvalidSMILES if the string cannot be parsed;
// callers that load datasets exclude such rows before clustering.
func New(smiles string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "SMILES string cannot be empty")
	}
	if !validSMILESChars.MatchString(smiles) {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "SMILES contains invalid characters").
			WithDetail("smiles=" + smiles)
	}

	graph, err := ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}

	return &Molecule{
		BaseEntity: common.BaseEntity{
			ID: common.NewID(),
		},
		SMILES:       smiles,
		StructureKey: structureKey(smiles),
		Graph:        graph,
		Fingerprints: make(map[chem.FingerprintType]*Fingerprint),
	}, nil
}

// structureKey derives a 27-character InChIKey-shaped identifier from the
// SMILES.  It is a SHA-256 based surrogate, stable across runs, used for
// cache and repository lookups rather than chemical identity.
func structureKey(smiles string) string {
	hash := sha256.Sum256([]byte(smiles))
	hexStr := strings.ToUpper(hex.EncodeToString(hash[:]))
	return hexStr[:14] + "-" + hexStr[14:24] + "-" + hexStr[24:25]
}

// CalculateFingerprint computes and stores the given fingerprint type with
// the default parameters.  Subsequent calls for the same type are no-ops.
func (m *Molecule) CalculateFingerprint(fpType chem.FingerprintType) (*Fingerprint, error) {
	return m.CalculateFingerprintWith(fpType, DefaultMorganRadius, DefaultFingerprintBits)
}

// CalculateFingerprintWith computes and stores the given fingerprint type
// using the supplied Morgan radius and bit width.  MACCS keys have a fixed
// layout and ignore both parameters.  Memoization is keyed on the type
// alone, so a molecule must be fingerprinted with one parameter set.
func (m *Molecule) CalculateFingerprintWith(fpType chem.FingerprintType, radius, nBits int) (*Fingerprint, error) {
	if fp, ok := m.Fingerprints[fpType]; ok {
		return fp, nil
	}

	var fp *Fingerprint
	var err error
	switch fpType {
	case chem.FPMorgan:
		fp, err = MorganFingerprint(m.Graph, radius, nBits)
	case chem.FPMACCS:
		fp, err = MACCSFingerprint(m.Graph)
	case chem.FPTopological:
		fp, err = TopologicalFingerprint(m.Graph, 1, DefaultMaxPathLength, nBits)
	default:
		return nil, errors.New(errors.ErrCodeFingerprintUnsupported, "unknown fingerprint type").
			WithDetail("type=" + string(fpType))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFingerprintFailed, "fingerprint calculation failed")
	}

	m.Fingerprints[fpType] = fp
	return fp, nil
}

// CalculateDescriptors computes and stores the physicochemical descriptor
// set.  Subsequent calls are no-ops.
func (m *Molecule) CalculateDescriptors() *chem.Descriptors {
	if m.Descriptors == nil {
		d := ComputeDescriptors(m.Graph)
		m.Descriptors = &d
	}
	return m.Descriptors
}

// SimilarityTo computes the Tanimoto similarity between this molecule and
// another using the given fingerprint type, computing fingerprints on demand.
func (m *Molecule) SimilarityTo(other *Molecule, fpType chem.FingerprintType) (float64, error) {
	fp1, err := m.CalculateFingerprint(fpType)
	if err != nil {
		return 0, err
	}
	fp2, err := other.CalculateFingerprint(fpType)
	if err != nil {
		return 0, err
	}
	return Tanimoto(fp1, fp2)
}

// ToDTO converts the entity to its cross-layer representation.
func (m *Molecule) ToDTO() chem.MoleculeDTO {
	dto := chem.MoleculeDTO{
		BaseEntity:   m.BaseEntity,
		SMILES:       m.SMILES,
		StructureKey: m.StructureKey,
		Name:         m.Name,
		Active:       m.Active,
		Descriptors:  m.Descriptors,
	}
	if len(m.Fingerprints) > 0 {
		dto.Fingerprints = make(map[chem.FingerprintType][]byte, len(m.Fingerprints))
		for t, fp := range m.Fingerprints {
			dto.Fingerprints[t] = fp.Bits
		}
	}
	return dto
}
