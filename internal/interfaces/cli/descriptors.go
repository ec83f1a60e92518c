package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSAR/pkg/errors"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// descriptorsOptions holds the flags for the descriptors command.
type descriptorsOptions struct {
	inputPath    string
	smilesColumn string
	nameColumn   string
	delimiter    string
}

// NewDescriptorsCmd creates the descriptors command: annotate structures
// with physicochemical descriptors.
func NewDescriptorsCmd() *cobra.Command {
	opts := &descriptorsOptions{}

	cmd := &cobra.Command{
		Use:   "descriptors [SMILES...]",
		Short: "Compute physicochemical descriptors for structures",
		Long:  "Compute molecular weight, LogP, TPSA, hydrogen-bond counts, rotatable\nbonds, aromatic rings, and heavy-atom count for each structure, plus a\nLipinski rule-of-five verdict.  Structures come from positional arguments or\nfrom a CSV file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescriptors(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.inputPath, "input", "i", "", "input CSV file (alternative to positional SMILES)")
	f.StringVar(&opts.smilesColumn, "smiles-column", "", "name of the SMILES column (default: auto-detect)")
	f.StringVar(&opts.nameColumn, "name-column", "", "name of the molecule-name column (default: auto-detect)")
	f.StringVar(&opts.delimiter, "delimiter", ",", "CSV field delimiter")

	return cmd
}

func runDescriptors(cmd *cobra.Command, opts *descriptorsOptions, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	smiles := args
	if opts.inputPath != "" {
		table, _, err := readInputCSV(opts.inputPath, opts.smilesColumn, opts.nameColumn, opts.delimiter)
		if err != nil {
			return err
		}
		for _, r := range table.Records {
			smiles = append(smiles, r.SMILES)
		}
	}
	if len(smiles) == 0 {
		return errors.New(errors.ErrCodeBadRequest, "no structures given: pass SMILES arguments or --input")
	}

	resp, err := cliCtx.Service.ComputeDescriptors(cmd.Context(), chem.DescriptorRequest{SMILES: smiles})
	if err != nil {
		return err
	}

	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, resp)
	}

	rows := make([][]string, len(resp.Rows))
	for i, r := range resp.Rows {
		lipinski := "fail"
		if r.Lipinski {
			lipinski = "pass"
		}
		rows[i] = []string{
			r.SMILES,
			strconv.FormatFloat(r.Descriptors.MolecularWeight, 'f', 3, 64),
			strconv.FormatFloat(r.Descriptors.LogP, 'f', 2, 64),
			strconv.FormatFloat(r.Descriptors.TPSA, 'f', 2, 64),
			strconv.Itoa(r.Descriptors.HBondDonors),
			strconv.Itoa(r.Descriptors.HBondAcceptors),
			strconv.Itoa(r.Descriptors.RotatableBonds),
			lipinski,
		}
	}
	return PrintResult(cmd, FormatTable(
		[]string{"smiles", "mol_weight", "log_p", "tpsa", "hbd", "hba", "rot_bonds", "lipinski"}, rows))
}
