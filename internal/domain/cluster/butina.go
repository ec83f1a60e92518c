package cluster

import (
	"sort"
	"strconv"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

// DefaultCutoff is the Tanimoto distance threshold used when a caller does
// not supply one.  A distance of 0.35 corresponds to a similarity of 0.65,
// a common choice for grouping screening compounds into structural series.
const DefaultCutoff = 0.35

// Clusterer groups items given their condensed pairwise distances.
type Clusterer interface {
	// Cluster partitions the dm.N items and returns the clusters in
	// assignment order, each a set of item indices with the centroid first.
	Cluster(dm *DistanceMatrix, cutoff float64) ([][]int, error)
}

// ButinaClusterer implements Taylor-Butina sphere-exclusion clustering.
// Items whose distance is within the cutoff are neighbors; the unassigned
// item with the most unassigned neighbors becomes the next centroid and
// claims its neighborhood, ties resolved toward the lowest index.  Every
// item ends up in exactly one cluster; isolated items become singletons.
type ButinaClusterer struct{}

// NewButinaClusterer returns a ready-to-use ButinaClusterer.
func NewButinaClusterer() *ButinaClusterer {
	return &ButinaClusterer{}
}

// ValidateCutoff checks that the distance cutoff lies in (0, 1].
func ValidateCutoff(cutoff float64) error {
	if cutoff <= 0 || cutoff > 1 {
		return errors.New(errors.ErrCodeCutoffInvalid, "distance cutoff must be in (0, 1]").
			WithDetail("cutoff=" + strconv.FormatFloat(cutoff, 'g', -1, 64))
	}
	return nil
}

// Cluster runs the Butina algorithm.  Zero items yield zero clusters.
func (c *ButinaClusterer) Cluster(dm *DistanceMatrix, cutoff float64) ([][]int, error) {
	if err := ValidateCutoff(cutoff); err != nil {
		return nil, err
	}
	if dm == nil || dm.N == 0 {
		return [][]int{}, nil
	}
	if want := dm.N * (dm.N - 1) / 2; len(dm.Distances) != want {
		return nil, errors.New(errors.ErrCodeDistanceMismatch, "condensed distance length does not match item count").
			WithDetail("n=" + strconv.Itoa(dm.N) + " got=" + strconv.Itoa(len(dm.Distances)))
	}

	n := dm.N
	neighbors := make([][]int, n)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if dm.Distances[LowerTriangleIndex(i, j)] <= cutoff {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	assigned := make([]bool, n)
	var clusters [][]int

	for remaining := n; remaining > 0; {
		// Pick the unassigned item with the most unassigned neighbors.
		best, bestCount := -1, -1
		for i := 0; i < n; i++ {
			if assigned[i] {
				continue
			}
			count := 0
			for _, nb := range neighbors[i] {
				if !assigned[nb] {
					count++
				}
			}
			if count > bestCount {
				best, bestCount = i, count
			}
		}

		members := []int{best}
		assigned[best] = true
		for _, nb := range neighbors[best] {
			if !assigned[nb] {
				members = append(members, nb)
				assigned[nb] = true
			}
		}
		sort.Ints(members[1:])
		clusters = append(clusters, members)
		remaining -= len(members)
	}

	return clusters, nil
}

// AssignLabels converts clusters back to per-item labels.  Labels start at 1
// and follow cluster assignment order; a zero in the result would mean an
// item was never assigned, which Cluster never produces.
func AssignLabels(clusters [][]int, n int) []int {
	labels := make([]int, n)
	for ci, members := range clusters {
		for _, m := range members {
			labels[m] = ci + 1
		}
	}
	return labels
}

// NumClusters returns the number of distinct labels in a label slice.
func NumClusters(labels []int) int {
	seen := map[int]struct{}{}
	for _, l := range labels {
		if l > 0 {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}
