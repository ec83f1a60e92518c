package cluster

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

func TestValidateCutoff(t *testing.T) {
	assert.NoError(t, ValidateCutoff(0.35))
	assert.NoError(t, ValidateCutoff(1.0))
	assert.NoError(t, ValidateCutoff(0.0001))

	for _, c := range []float64{0, -0.1, 1.0001, 2} {
		err := ValidateCutoff(c)
		require.Error(t, err, "cutoff %v", c)
		assert.True(t, errors.IsCode(err, errors.ErrCodeCutoffInvalid))
	}
}

func TestButina_ThreeMolecules(t *testing.T) {
	// Two equivalent structures at distance zero, one outlier.
	fps := fingerprints(t, "CCO", "OCC", "c1ccccc1")
	dm, err := BuildDistances(fps)
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	labels := AssignLabels(clusters, dm.N)
	assert.Equal(t, []int{1, 1, 2}, labels)
	assert.Equal(t, 2, NumClusters(labels))
}

func TestButina_EmptyInput(t *testing.T) {
	dm, err := DistancesFromSlice(0, nil)
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	assert.Empty(t, clusters)
	assert.Empty(t, AssignLabels(clusters, 0))
}

func TestButina_SingleItem(t *testing.T) {
	dm, err := DistancesFromSlice(1, nil)
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, []int{1}, AssignLabels(clusters, 1))
}

func TestButina_AllWithinCutoff(t *testing.T) {
	dm, err := DistancesFromSlice(4, []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1})
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, []int{1, 1, 1, 1}, AssignLabels(clusters, 4))
}

func TestButina_AllSingletons(t *testing.T) {
	dm, err := DistancesFromSlice(4, []float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, clusters, 4)

	labels := AssignLabels(clusters, 4)
	// Singletons are claimed lowest index first.
	assert.Equal(t, []int{1, 2, 3, 4}, labels)
}

func TestButina_CentroidSelection(t *testing.T) {
	// Item 1 neighbors both 0 and 2; 0 and 2 are not neighbors of each
	// other.  Item 1 has the largest neighborhood and becomes the first
	// centroid, claiming everything.
	dm, err := DistancesFromSlice(3, []float64{
		0.2, // (1,0)
		0.9, // (2,0)
		0.2, // (2,1)
	})
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0][0]) // centroid first
	assert.Equal(t, []int{1, 1, 1}, AssignLabels(clusters, 3))
}

func TestButina_TieBreaksTowardLowestIndex(t *testing.T) {
	// Two disjoint pairs, equal neighborhood sizes everywhere.
	dm, err := DistancesFromSlice(4, []float64{
		0.1, // (1,0)
		0.9, // (2,0)
		0.9, // (2,1)
		0.9, // (3,0)
		0.9, // (3,1)
		0.1, // (3,2)
	})
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, []int{0, 1}, clusters[0])
	assert.Equal(t, []int{2, 3}, clusters[1])
	assert.Equal(t, []int{1, 1, 2, 2}, AssignLabels(clusters, 4))
}

func TestButina_EveryItemAssignedOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 40
	dists := make([]float64, n*(n-1)/2)
	for i := range dists {
		dists[i] = rng.Float64()
	}
	dm, err := DistancesFromSlice(n, dists)
	require.NoError(t, err)

	clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.NoError(t, err)

	seen := map[int]int{}
	for _, members := range clusters {
		for _, m := range members {
			seen[m]++
		}
	}
	require.Len(t, seen, n)
	for item, count := range seen {
		assert.Equal(t, 1, count, "item %d", item)
	}

	labels := AssignLabels(clusters, n)
	for i, l := range labels {
		assert.GreaterOrEqual(t, l, 1, "item %d unlabeled", i)
		assert.LessOrEqual(t, l, len(clusters))
	}
}

func TestButina_Deterministic(t *testing.T) {
	fps := fingerprints(t, "CCO", "CCN", "CCC", "c1ccccc1", "c1ccccc1O", "CC(=O)O", "CCCC")
	dm, err := BuildDistances(fps)
	require.NoError(t, err)

	first, err := NewButinaClusterer().Cluster(dm, 0.6)
	require.NoError(t, err)
	second, err := NewButinaClusterer().Cluster(dm, 0.6)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestButina_PermutationInvariantPartition(t *testing.T) {
	// Three well-separated blocks: within-block distance 0.1, cross-block
	// 0.9.  The recovered partition must be the blocks regardless of how
	// the items are ordered on input.
	block := []int{0, 0, 1, 1, 1, 2}

	partition := func(order []int) [][]int {
		n := len(order)
		dists := make([]float64, 0, n*(n-1)/2)
		for i := 1; i < n; i++ {
			for j := 0; j < i; j++ {
				if block[order[i]] == block[order[j]] {
					dists = append(dists, 0.1)
				} else {
					dists = append(dists, 0.9)
				}
			}
		}
		dm, err := DistancesFromSlice(n, dists)
		require.NoError(t, err)
		clusters, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
		require.NoError(t, err)

		// Normalize to sorted original-item groups so the comparison
		// ignores both item order and cluster order.
		groups := make([][]int, len(clusters))
		for ci, members := range clusters {
			for _, m := range members {
				groups[ci] = append(groups[ci], order[m])
			}
			sort.Ints(groups[ci])
		}
		sort.Slice(groups, func(a, b int) bool { return groups[a][0] < groups[b][0] })
		return groups
	}

	identity := []int{0, 1, 2, 3, 4, 5}
	shuffled := []int{5, 3, 1, 4, 0, 2}
	want := [][]int{{0, 1}, {2, 3, 4}, {5}}
	assert.Equal(t, want, partition(identity))
	assert.Equal(t, want, partition(shuffled))
}

func TestButina_CutoffRejected(t *testing.T) {
	dm, err := DistancesFromSlice(2, []float64{0.5})
	require.NoError(t, err)

	_, err = NewButinaClusterer().Cluster(dm, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCutoffInvalid))

	_, err = NewButinaClusterer().Cluster(dm, 1.5)
	require.Error(t, err)
}

func TestButina_LengthMismatch(t *testing.T) {
	dm := &DistanceMatrix{N: 3, Distances: []float64{0.5}}
	_, err := NewButinaClusterer().Cluster(dm, DefaultCutoff)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDistanceMismatch))
}
