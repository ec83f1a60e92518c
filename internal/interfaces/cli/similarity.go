package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// similarityOptions holds the flags for the similarity command.
type similarityOptions struct {
	query           string
	inputPath       string
	smilesColumn    string
	nameColumn      string
	delimiter       string
	threshold       float64
	limit           int
	fingerprintType string
}

// NewSimilarityCmd creates the similarity command: score a query structure
// against a dataset.
func NewSimilarityCmd() *cobra.Command {
	opts := &similarityOptions{}

	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Rank dataset structures by Tanimoto similarity to a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimilarity(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "query SMILES (required)")
	f.StringVarP(&opts.inputPath, "input", "i", "", "target CSV file (required)")
	f.StringVar(&opts.smilesColumn, "smiles-column", "", "name of the SMILES column (default: auto-detect)")
	f.StringVar(&opts.nameColumn, "name-column", "", "name of the molecule-name column (default: auto-detect)")
	f.StringVar(&opts.delimiter, "delimiter", ",", "CSV field delimiter")
	f.Float64Var(&opts.threshold, "threshold", 0, "minimum Tanimoto score to report")
	f.IntVar(&opts.limit, "limit", 0, "maximum number of hits (0 = all)")
	f.StringVar(&opts.fingerprintType, "fingerprint", "", "fingerprint type: morgan|maccs|topological (default: configured, morgan)")
	cmd.MarkFlagRequired("query")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runSimilarity(cmd *cobra.Command, opts *similarityOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if opts.threshold < 0 || opts.threshold > 1 {
		return errors.Newf(errors.ErrCodeBadRequest, "threshold must be in [0, 1], got %.2f", opts.threshold)
	}

	table, _, err := readInputCSV(opts.inputPath, opts.smilesColumn, opts.nameColumn, opts.delimiter)
	if err != nil {
		return err
	}

	targets := make([]string, table.Len())
	for i, r := range table.Records {
		targets[i] = r.SMILES
	}

	resp, err := cliCtx.Service.SimilaritySearch(cmd.Context(), chem.SimilarityRequest{
		Query:           opts.query,
		Targets:         targets,
		Threshold:       opts.threshold,
		Limit:           opts.limit,
		FingerprintType: chem.FingerprintType(opts.fingerprintType),
	})
	if err != nil {
		return err
	}

	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, resp)
	}

	rows := make([][]string, len(resp.Hits))
	for i, h := range resp.Hits {
		name := ""
		if h.Index < table.Len() {
			name = table.Records[h.Index].Name
		}
		rows[i] = []string{
			strconv.Itoa(h.Rank),
			name,
			h.SMILES,
			strconv.FormatFloat(h.Score, 'f', 4, 64),
		}
	}
	return PrintResult(cmd, FormatTable([]string{"rank", "name", "smiles", "score"}, rows))
}
