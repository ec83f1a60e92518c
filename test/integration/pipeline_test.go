package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/internal/application/screening"
	"github.com/turtacn/ChemSAR/internal/domain/dataset"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/pkg/types/common"
)

const pipelineCSV = `name,smiles,activity
ethanol,CCO,1
ethanol2,OCC,1
propanol,CCCO,0
benzene,c1ccccc1,0
toluene,Cc1ccccc1,1
broken,C1CC,0
`

// TestPipeline_CSVToLabelledCSV drives the whole in-memory pipeline: read a
// CSV dataset, cluster it, select representatives, and write it back out.
func TestPipeline_CSVToLabelledCSV(t *testing.T) {
	table, rowErrs, err := dataset.ReadCSV(strings.NewReader(pipelineCSV), dataset.ReadOptions{})
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Equal(t, 6, table.Len())

	svc := screening.NewService(logging.NewNopLogger())
	labelled, numClusters, err := svc.ClusterTable(context.Background(), table, 0, "")
	require.NoError(t, err)

	// The unparseable row is excluded; every survivor carries a label.
	assert.Equal(t, 5, labelled.Len())
	assert.GreaterOrEqual(t, numClusters, 2)
	for _, r := range labelled.Records {
		assert.GreaterOrEqual(t, r.Label, 1)
		assert.LessOrEqual(t, r.Label, numClusters)
	}

	// The equivalent ethanol spellings always share a cluster.
	byName := map[string]int{}
	for _, r := range labelled.Records {
		byName[r.Name] = r.Label
	}
	assert.Equal(t, byName["ethanol"], byName["ethanol2"])

	reps, err := svc.SelectRepresentatives(labelled, dataset.ColMolWeight, common.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, numClusters, reps.Len())

	var out bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&out, labelled, dataset.WriteOptions{Descriptors: true}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], dataset.ColLabel)
	assert.Contains(t, lines[0], dataset.ColMolWeight)
}

// TestPipeline_RelabellingIsStable reruns clustering on the already labelled
// table and expects the same partition.
func TestPipeline_RelabellingIsStable(t *testing.T) {
	table, _, err := dataset.ReadCSV(strings.NewReader(pipelineCSV), dataset.ReadOptions{})
	require.NoError(t, err)

	svc := screening.NewService(logging.NewNopLogger())
	first, n1, err := svc.ClusterTable(context.Background(), table, 0.35, "")
	require.NoError(t, err)
	second, n2, err := svc.ClusterTable(context.Background(), first, 0.35, "")
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
	require.Equal(t, first.Len(), second.Len())
	assert.Equal(t, first.Labels(), second.Labels())
}
