package dataset

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// Table is an ordered collection of dataset records.  Operations that
// reorder or select return a new Table sharing the underlying records.
type Table struct {
	Records []*Record
}

// NewTable builds a table from records, preserving order.
func NewTable(records []*Record) *Table {
	return &Table{Records: records}
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// ParseStructures parses every record's SMILES.  Records that fail to parse
// are excluded from the returned table and reported as row errors; callers
// cluster only the parseable remainder.
func (t *Table) ParseStructures() (*Table, []RowError) {
	kept := make([]*Record, 0, len(t.Records))
	var rowErrs []RowError
	for _, r := range t.Records {
		if r.Molecule != nil {
			kept = append(kept, r)
			continue
		}
		mol, err := molecule.New(r.SMILES)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: r.Row, SMILES: r.SMILES, Err: err})
			continue
		}
		mol.Name = r.Name
		mol.Active = r.Active
		r.Molecule = mol
		kept = append(kept, r)
	}
	return NewTable(kept), rowErrs
}

// Fingerprints computes the given fingerprint type for every record, in
// record order.  All records must have parsed structures.
func (t *Table) Fingerprints(fpType chem.FingerprintType) ([]*molecule.Fingerprint, error) {
	fps := make([]*molecule.Fingerprint, len(t.Records))
	for i, r := range t.Records {
		if r.Molecule == nil {
			return nil, errors.New(errors.ErrCodeDatasetRowInvalid, "record has no parsed structure").
				WithDetail("row=" + strconv.Itoa(r.Row))
		}
		fp, err := r.Molecule.CalculateFingerprint(fpType)
		if err != nil {
			return nil, err
		}
		fps[i] = fp
	}
	return fps, nil
}

// SortByColumn stable-sorts the records by the given column.  Name and
// SMILES sort lexically; all other known columns sort numerically.  An
// unknown column is a validation error.
func (t *Table) SortByColumn(column string, order common.SortOrder) (*Table, error) {
	if !knownColumn(column) {
		return nil, errors.New(errors.ErrCodeDatasetColumnMissing, "unknown sort column").
			WithDetail("column=" + column)
	}

	out := make([]*Record, len(t.Records))
	copy(out, t.Records)

	less := func(a, b *Record) bool {
		switch column {
		case ColName:
			return a.Name < b.Name
		case ColSMILES:
			return a.SMILES < b.SMILES
		default:
			return a.NumericValue(column) < b.NumericValue(column)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == common.SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return NewTable(out), nil
}

// FirstPerCluster returns the first record of each cluster label in current
// record order.  Sorting first and then selecting yields the best record
// per cluster for whatever "best" the sort encoded.  Results keep the
// first-encounter order of labels.
func (t *Table) FirstPerCluster() *Table {
	seen := map[int]bool{}
	var out []*Record
	for _, r := range t.Records {
		if seen[r.Label] {
			continue
		}
		seen[r.Label] = true
		out = append(out, r)
	}
	return NewTable(out)
}

// Filter returns the records for which keep returns true, preserving order.
func (t *Table) Filter(keep func(*Record) bool) *Table {
	var out []*Record
	for _, r := range t.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewTable(out)
}

// Labels returns the cluster label of every record in order.
func (t *Table) Labels() []int {
	labels := make([]int, len(t.Records))
	for i, r := range t.Records {
		labels[i] = r.Label
	}
	return labels
}

// SetLabels assigns cluster labels positionally.
func (t *Table) SetLabels(labels []int) error {
	if len(labels) != len(t.Records) {
		return errors.New(errors.ErrCodeDatasetRowInvalid, "label count does not match record count")
	}
	for i, r := range t.Records {
		r.Label = labels[i]
	}
	return nil
}

// ColumnSummary holds distribution statistics for one numeric column.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Summarize computes distribution statistics for a numeric column over all
// records.  An empty table yields a zero-count summary.
func (t *Table) Summarize(column string) (ColumnSummary, error) {
	if !numericColumn(column) {
		return ColumnSummary{}, errors.New(errors.ErrCodeDatasetColumnMissing, "column is not numeric").
			WithDetail("column=" + column)
	}
	s := ColumnSummary{Column: column, Count: len(t.Records)}
	if s.Count == 0 {
		return s, nil
	}

	values := make([]float64, len(t.Records))
	for i, r := range t.Records {
		values[i] = r.NumericValue(column)
	}
	sort.Float64s(values)

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if s.Count == 1 {
		s.StdDev = 0
	}
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	return s, nil
}

func knownColumn(column string) bool {
	switch column {
	case ColName, ColSMILES:
		return true
	}
	return numericColumn(column)
}

func numericColumn(column string) bool {
	switch column {
	case ColActivity, ColLabel:
		return true
	}
	for _, c := range NumericColumns() {
		if c == column {
			return true
		}
	}
	return false
}
