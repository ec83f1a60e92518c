// Package dataset models the tabular screening data the pipeline operates
// on: typed records with a structure, an activity flag, derived descriptor
// columns, and a cluster label, plus CSV input/output and table operations
// such as stable sorting and first-per-cluster selection.
package dataset

import (
	"strconv"

	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// Column names understood by sorting and summary operations.  Derived
// columns carry descriptor values; the label column is filled by clustering.
const (
	ColName     = "name"
	ColSMILES   = "smiles"
	ColActivity = "activity"
	ColLabel    = "cluster"

	ColMolWeight     = "mol_weight"
	ColLogP          = "log_p"
	ColTPSA          = "tpsa"
	ColHBD           = "h_bond_donors"
	ColHBA           = "h_bond_acceptors"
	ColRotatable     = "rotatable_bonds"
	ColAromaticRings = "aromatic_rings"
	ColHeavyAtoms    = "heavy_atoms"
)

// NumericColumns lists the sortable/summarizable float columns in canonical
// output order.
func NumericColumns() []string {
	return []string{
		ColMolWeight, ColLogP, ColTPSA, ColHBD, ColHBA,
		ColRotatable, ColAromaticRings, ColHeavyAtoms,
	}
}

// Record is one row of a screening dataset.  Molecule is nil until the
// structure is parsed; rows that fail parsing are reported and excluded
// before clustering.
type Record struct {
	// Row is the 1-based source row number, headers excluded.
	Row int

	Name   string
	SMILES string

	// Active is the binary activity class flag from the source data.
	Active bool

	Molecule *molecule.Molecule

	// Label is the 1-based cluster label; zero means not yet clustered.
	Label int
}

// Descriptors returns the record's computed descriptor set, calculating it
// on first use.  Returns the zero value when the structure never parsed.
func (r *Record) Descriptors() chem.Descriptors {
	if r.Molecule == nil {
		return chem.Descriptors{}
	}
	return *r.Molecule.CalculateDescriptors()
}

// NumericValue returns the value of a numeric column for sorting and
// summaries.
func (r *Record) NumericValue(column string) float64 {
	d := r.Descriptors()
	switch column {
	case ColMolWeight:
		return d.MolecularWeight
	case ColLogP:
		return d.LogP
	case ColTPSA:
		return d.TPSA
	case ColHBD:
		return float64(d.HBondDonors)
	case ColHBA:
		return float64(d.HBondAcceptors)
	case ColRotatable:
		return float64(d.RotatableBonds)
	case ColAromaticRings:
		return float64(d.AromaticRings)
	case ColHeavyAtoms:
		return float64(d.HeavyAtoms)
	case ColLabel:
		return float64(r.Label)
	case ColActivity:
		if r.Active {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// RowError reports a malformed or unparseable source row.
type RowError struct {
	Row    int
	SMILES string
	Err    error
}

func (e RowError) Error() string {
	return "row " + strconv.Itoa(e.Row) + ": " + e.Err.Error()
}
