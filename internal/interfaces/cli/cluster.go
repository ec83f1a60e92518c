package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

// clusterOptions holds the flags for the cluster command.
type clusterOptions struct {
	inputPath       string
	outputPath      string
	cutoff          float64
	fingerprintType string
	smilesColumn    string
	nameColumn      string
	delimiter       string
	descriptors     bool
	sortColumn      string
	sortOrder       string
	representatives bool
}

// NewClusterCmd creates the cluster command: CSV in, labelled CSV out.
func NewClusterCmd() *cobra.Command {
	opts := &clusterOptions{}

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a SMILES dataset and write cluster labels",
		Long:  "Read structures from a CSV file, compute fingerprints, run Butina\nclustering over Tanimoto distances, and write the dataset back out with a\n1-based cluster label per row.  Unparseable structures are excluded with a\nwarning.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCluster(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.inputPath, "input", "i", "", "input CSV file (required)")
	f.StringVar(&opts.outputPath, "out", "", "output CSV file (default: stdout)")
	f.Float64Var(&opts.cutoff, "cutoff", 0, "Tanimoto distance cutoff in (0, 1] (default: configured, 0.35)")
	f.StringVar(&opts.fingerprintType, "fingerprint", "", "fingerprint type: morgan|maccs|topological (default: configured, morgan)")
	f.StringVar(&opts.smilesColumn, "smiles-column", "", "name of the SMILES column (default: auto-detect)")
	f.StringVar(&opts.nameColumn, "name-column", "", "name of the molecule-name column (default: auto-detect)")
	f.StringVar(&opts.delimiter, "delimiter", ",", "CSV field delimiter")
	f.BoolVar(&opts.descriptors, "descriptors", false, "add computed descriptor columns to the output")
	f.StringVar(&opts.sortColumn, "sort", "", "sort output by this column before writing")
	f.StringVar(&opts.sortOrder, "order", "asc", "sort direction: asc|desc")
	f.BoolVar(&opts.representatives, "representatives", false, "keep only the first row of each cluster after sorting")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runCluster(cmd *cobra.Command, opts *clusterOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	table, rowErrs, err := readInputCSV(opts.inputPath, opts.smilesColumn, opts.nameColumn, opts.delimiter)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		cliCtx.Logger.Warn("skipping input row", logging.Int("row", re.Row), logging.Err(re.Err))
	}

	labelled, numClusters, err := cliCtx.Service.ClusterTable(
		cmd.Context(), table, opts.cutoff, chem.FingerprintType(opts.fingerprintType))
	if err != nil {
		return err
	}

	if opts.representatives && opts.sortColumn == "" {
		return errors.New(errors.ErrCodeBadRequest, "--representatives requires --sort")
	}
	if opts.sortColumn != "" {
		order := common.SortAsc
		if opts.sortOrder == "desc" {
			order = common.SortDesc
		}
		if opts.representatives {
			labelled, err = cliCtx.Service.SelectRepresentatives(labelled, opts.sortColumn, order)
		} else {
			labelled, err = labelled.SortByColumn(opts.sortColumn, order)
		}
		if err != nil {
			return err
		}
	}

	if err := writeOutputCSV(opts.outputPath, labelled, opts.delimiter, opts.descriptors, cmd); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "clustered %d molecules into %d clusters\n", labelled.Len(), numClusters)
	return nil
}

// readInputCSV opens and parses the input file with the shared read options.
func readInputCSV(path, smilesCol, nameCol, delimiter string) (*dataset.Table, []dataset.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "opening input file")
	}
	defer f.Close()

	opts := dataset.ReadOptions{
		SMILESColumn: smilesCol,
		NameColumn:   nameCol,
	}
	if delimiter != "" {
		opts.Comma = rune(delimiter[0])
	}
	return dataset.ReadCSV(f, opts)
}

// writeOutputCSV writes the table to the output path, or stdout when the
// path is empty.
func writeOutputCSV(path string, t *dataset.Table, delimiter string, descriptors bool, cmd *cobra.Command) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetReadFailed, "creating output file")
		}
		defer f.Close()
		w = f
	}

	opts := dataset.WriteOptions{Descriptors: descriptors}
	if delimiter != "" {
		opts.Comma = rune(delimiter[0])
	}
	return dataset.WriteCSV(w, t, opts)
}
