package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClusterCommand(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol,CCO\nethanol2,OCC\nbenzene,c1ccccc1\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	_, errOut, err := execute(t, "cluster", "-i", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, errOut, "into 2 clusters")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	table, rowErrs, err := dataset.ReadCSV(f, dataset.ReadOptions{})
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Equal(t, 3, table.Len())

	labelled, _ := table.ParseStructures()
	require.Equal(t, 3, labelled.Len())
}

func TestClusterCommand_LabelsInOutput(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol,CCO\nethanol2,OCC\nbenzene,c1ccccc1\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := execute(t, "cluster", "-i", in, "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "cluster")

	// The two ethanol spellings land in the same cluster, benzene in another.
	assert.Contains(t, lines[1], ",1")
	assert.Contains(t, lines[2], ",1")
	assert.Contains(t, lines[3], ",2")
}

func TestClusterCommand_MissingInput(t *testing.T) {
	_, _, err := execute(t, "cluster")
	require.Error(t, err)
}

func TestClusterCommand_BadCutoff(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol,CCO\n")
	_, _, err := execute(t, "cluster", "-i", in, "--cutoff", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cutoff")
}

func TestClusterCommand_RepresentativesRequireSort(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol,CCO\n")
	_, _, err := execute(t, "cluster", "-i", in, "--representatives")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--sort")
}

func TestDescriptorsCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "descriptors", "CCO", "-o", "json")
	require.NoError(t, err)

	var resp chem.DescriptorResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Rows, 1)
	assert.InDelta(t, 46.069, resp.Rows[0].Descriptors.MolecularWeight, 0.01)
	assert.True(t, resp.Rows[0].Lipinski)
}

func TestDescriptorsCommand_Table(t *testing.T) {
	out, _, err := execute(t, "descriptors", "CCO")
	require.NoError(t, err)
	assert.Contains(t, out, "mol_weight")
	assert.Contains(t, out, "46.069")
}

func TestDescriptorsCommand_NoInput(t *testing.T) {
	_, _, err := execute(t, "descriptors")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no structures")
}

func TestSimilarityCommand_JSON(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol2,OCC\nbenzene,c1ccccc1\n")

	out, _, err := execute(t, "similarity", "-q", "CCO", "-i", in, "-o", "json")
	require.NoError(t, err)

	var resp chem.SimilarityResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Hits)
	assert.Equal(t, "OCC", resp.Hits[0].SMILES)
	assert.InDelta(t, 1.0, resp.Hits[0].Score, 1e-9)
}

func TestSimilarityCommand_BadThreshold(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol,CCO\n")
	_, _, err := execute(t, "similarity", "-q", "CCO", "-i", in, "--threshold", "2")
	require.Error(t, err)
}

func TestIngestCommand_NoDatabase(t *testing.T) {
	in := writeTempCSV(t, "name,smiles\nethanol,CCO\n")
	_, _, err := execute(t, "ingest", "-i", in, "--dataset", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not configured")
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"name", "score"}, [][]string{
		{"ethanol", "1.0000"},
		{"benzene", "0.0213"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "name     score", strings.TrimRight(lines[0], " "))
	assert.Contains(t, lines[2], "ethanol")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "chemsar dev")
	assert.Contains(t, out, "commit:")
}
