package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

// ReadOptions configures CSV ingestion.
type ReadOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune

	// SMILESColumn overrides header detection for the structure column.
	SMILESColumn string

	// NameColumn overrides header detection for the identifier column.
	NameColumn string
}

// header synonyms accepted during column detection, lowercased.
var (
	smilesHeaders   = []string{"smiles", "structure", "canonical_smiles"}
	nameHeaders     = []string{"name", "id", "molecule_name", "compound_id"}
	activityHeaders = []string{"activity", "active", "is_active", "label_active"}
)

// ReadCSV parses a delimited dataset with a header row.  A SMILES column is
// required; name and activity columns are optional.  Rows with the wrong
// field count or an empty structure are reported as row errors and skipped,
// never failing the whole read.  Structures are not parsed here; call
// Table.ParseStructures afterwards.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, []RowError, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.New(errors.ErrCodeDatasetEmpty, "dataset has no header row")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "reading header row")
	}

	smilesIdx := findColumn(header, opts.SMILESColumn, smilesHeaders)
	if smilesIdx < 0 {
		return nil, nil, errors.New(errors.ErrCodeDatasetColumnMissing, "no SMILES column found").
			WithDetail("header=" + strings.Join(header, ","))
	}
	nameIdx := findColumn(header, opts.NameColumn, nameHeaders)
	activityIdx := findColumn(header, "", activityHeaders)

	var (
		records []*Record
		rowErrs []RowError
		row     int
	)
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Err: err})
			continue
		}
		if smilesIdx >= len(fields) || strings.TrimSpace(fields[smilesIdx]) == "" {
			rowErrs = append(rowErrs, RowError{
				Row: row,
				Err: errors.New(errors.ErrCodeDatasetRowInvalid, "missing structure field"),
			})
			continue
		}

		rec := &Record{
			Row:    row,
			SMILES: strings.TrimSpace(fields[smilesIdx]),
		}
		if nameIdx >= 0 && nameIdx < len(fields) {
			rec.Name = strings.TrimSpace(fields[nameIdx])
		}
		if rec.Name == "" {
			rec.Name = "mol_" + strconv.Itoa(row)
		}
		if activityIdx >= 0 && activityIdx < len(fields) {
			rec.Active = parseActivity(fields[activityIdx])
		}
		records = append(records, rec)
	}

	if len(records) == 0 && len(rowErrs) == 0 {
		return nil, nil, errors.New(errors.ErrCodeDatasetEmpty, "dataset has no data rows")
	}
	return NewTable(records), rowErrs, nil
}

// findColumn resolves a column index from an explicit name or a synonym
// list.  Matching is case-insensitive.  Returns -1 when absent.
func findColumn(header []string, explicit string, synonyms []string) int {
	if explicit != "" {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), explicit) {
				return i
			}
		}
		return -1
	}
	for _, want := range synonyms {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}

func parseActivity(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "active":
		return true
	default:
		return false
	}
}

// WriteOptions configures CSV output.
type WriteOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune

	// Descriptors adds the computed descriptor columns to every row.
	Descriptors bool
}

// WriteCSV writes the table with name, smiles, activity, and cluster
// columns, plus descriptor columns when requested.  Labels of zero are
// written as-is; callers cluster before writing when labels matter.
func WriteCSV(w io.Writer, t *Table, opts WriteOptions) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}

	header := []string{ColName, ColSMILES, ColActivity, ColLabel}
	if opts.Descriptors {
		header = append(header, NumericColumns()...)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "writing header row")
	}

	for _, r := range t.Records {
		activity := "0"
		if r.Active {
			activity = "1"
		}
		fields := []string{r.Name, r.SMILES, activity, strconv.Itoa(r.Label)}
		if opts.Descriptors {
			for _, col := range NumericColumns() {
				fields = append(fields, strconv.FormatFloat(r.NumericValue(col), 'f', 4, 64))
			}
		}
		if err := cw.Write(fields); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "writing data row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "flushing output")
	}
	return nil
}
