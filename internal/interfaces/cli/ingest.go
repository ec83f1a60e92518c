package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// ingestOptions holds the flags for the ingest command.
type ingestOptions struct {
	inputPath    string
	datasetName  string
	smilesColumn string
	nameColumn   string
	delimiter    string
	cluster      bool
	cutoff       float64
	fingerprint  string
	replace      bool
}

// NewIngestCmd creates the ingest command: load a CSV dataset into
// PostgreSQL, optionally clustering it first.
func NewIngestCmd() *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a SMILES dataset into PostgreSQL",
		Long:  "Parse a CSV dataset, optionally cluster it, and persist every parseable\nmolecule with its descriptors and fingerprints.  Requires database\nconfiguration; migrations run automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.inputPath, "input", "i", "", "input CSV file (required)")
	f.StringVar(&opts.datasetName, "dataset", "", "dataset name to store rows under (required)")
	f.StringVar(&opts.smilesColumn, "smiles-column", "", "name of the SMILES column (default: auto-detect)")
	f.StringVar(&opts.nameColumn, "name-column", "", "name of the molecule-name column (default: auto-detect)")
	f.StringVar(&opts.delimiter, "delimiter", ",", "CSV field delimiter")
	f.BoolVar(&opts.cluster, "cluster", false, "cluster the dataset before storing labels")
	f.Float64Var(&opts.cutoff, "cutoff", 0, "Tanimoto distance cutoff in (0, 1] (default: configured, 0.35)")
	f.StringVar(&opts.fingerprint, "fingerprint", "", "fingerprint type: morgan|maccs|topological (default: configured, morgan)")
	f.BoolVar(&opts.replace, "replace", false, "delete existing rows of the dataset first")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("dataset")

	return cmd
}

func runIngest(cmd *cobra.Command, opts *ingestOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if !cliCtx.Config.Database.Enabled() {
		return errors.New(errors.ErrCodeServiceUnavailable, "database not configured: set database.host or CHEMSAR_DATABASE_HOST")
	}

	ctx := cmd.Context()
	log := cliCtx.Logger

	if err := postgres.Migrate(cliCtx.Config.Database, log); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cliCtx.Config.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := postgres.NewMoleculeRepository(pool, log)

	table, rowErrs, err := readInputCSV(opts.inputPath, opts.smilesColumn, opts.nameColumn, opts.delimiter)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		log.Warn("skipping input row", logging.Int("row", re.Row), logging.Err(re.Err))
	}

	var parsed *dataset.Table
	if opts.cluster {
		var numClusters int
		parsed, numClusters, err = cliCtx.Service.ClusterTable(
			ctx, table, opts.cutoff, chem.FingerprintType(opts.fingerprint))
		if err != nil {
			return err
		}
		log.Info("dataset clustered", logging.Int("clusters", numClusters))
	} else {
		var parseErrs []dataset.RowError
		parsed, parseErrs = table.ParseStructures()
		for _, re := range parseErrs {
			log.Warn("excluding unparseable structure", logging.Int("row", re.Row), logging.Err(re.Err))
		}
	}
	if parsed.Len() == 0 {
		return errors.New(errors.ErrCodeDatasetEmpty, "no parseable structures in input")
	}

	if opts.replace {
		deleted, err := repo.DeleteDataset(ctx, opts.datasetName)
		if err != nil {
			return err
		}
		log.Info("replaced existing dataset", logging.Int("deleted", int(deleted)))
	}

	stored := make([]*postgres.StoredMolecule, parsed.Len())
	for i, r := range parsed.Records {
		stored[i] = postgres.FromRecord(r, opts.datasetName)
	}
	if err := repo.BatchSave(ctx, stored); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "ingested %d molecules into dataset %q\n", parsed.Len(), opts.datasetName)
	return nil
}
