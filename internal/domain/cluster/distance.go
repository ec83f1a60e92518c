// Package cluster implements fingerprint-based structure clustering: the
// condensed pairwise distance matrix and the Butina sphere-exclusion
// algorithm used to group a screening dataset into structural families.
package cluster

import (
	"strconv"

	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/errors"
)

// DistanceMatrix is a condensed lower-triangular pairwise distance matrix
// over n items.  Only pairs (i, j) with i > j are stored, row by row, so the
// flat slice has n*(n-1)/2 entries and entry (i, j) lives at
// i*(i-1)/2 + j.  Distances are Tanimoto distances, 1 - similarity.
type DistanceMatrix struct {
	N         int
	Distances []float64
}

// LowerTriangleIndex maps a pair (i, j) with i > j to its offset in the
// condensed distance slice.
func LowerTriangleIndex(i, j int) int {
	return i*(i-1)/2 + j
}

// Get returns the distance between items i and j.  The matrix is symmetric
// and the diagonal is zero.
func (dm *DistanceMatrix) Get(i, j int) float64 {
	if i == j {
		return 0
	}
	if i < j {
		i, j = j, i
	}
	return dm.Distances[LowerTriangleIndex(i, j)]
}

// Len returns the number of stored pairs.
func (dm *DistanceMatrix) Len() int {
	return len(dm.Distances)
}

// BuildDistances computes the condensed Tanimoto distance matrix for the
// given fingerprints.  Fingerprints must all share the same type and
// dimension; the result for n inputs has n*(n-1)/2 entries.  Zero or one
// input yields an empty matrix.
func BuildDistances(fps []*molecule.Fingerprint) (*DistanceMatrix, error) {
	n := len(fps)
	dm := &DistanceMatrix{
		N:         n,
		Distances: make([]float64, 0, n*(n-1)/2),
	}
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			sim, err := molecule.Tanimoto(fps[i], fps[j])
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeClusteringFailed, "distance computation failed").
					WithDetail("pair=(" + strconv.Itoa(i) + "," + strconv.Itoa(j) + ")")
			}
			dm.Distances = append(dm.Distances, 1.0-sim)
		}
	}
	return dm, nil
}

// DistancesFromSlice wraps a precomputed condensed distance slice.  The
// slice length must equal n*(n-1)/2 for the declared item count.
func DistancesFromSlice(n int, distances []float64) (*DistanceMatrix, error) {
	if want := n * (n - 1) / 2; len(distances) != want {
		return nil, errors.New(errors.ErrCodeDistanceMismatch, "condensed distance length does not match item count").
			WithDetail("n=" + strconv.Itoa(n) + " got=" + strconv.Itoa(len(distances)) + " want=" + strconv.Itoa(want))
	}
	return &DistanceMatrix{N: n, Distances: distances}, nil
}
