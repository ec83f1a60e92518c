package molecule

import (
	"math"
	"math/bits"
	"strconv"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

// SimilarityMetric identifies the algorithm used for fingerprint similarity.
type SimilarityMetric string

const (
	MetricTanimoto SimilarityMetric = "tanimoto"
	MetricDice     SimilarityMetric = "dice"
	MetricCosine   SimilarityMetric = "cosine"
)

// IsValid checks if the similarity metric is supported.
func (m SimilarityMetric) IsValid() bool {
	switch m {
	case MetricTanimoto, MetricDice, MetricCosine:
		return true
	default:
		return false
	}
}

// String returns the string representation of the similarity metric.
func (m SimilarityMetric) String() string { return string(m) }

// ParseSimilarityMetric parses a string into a SimilarityMetric.
func ParseSimilarityMetric(s string) (SimilarityMetric, error) {
	m := SimilarityMetric(s)
	if m.IsValid() {
		return m, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "unsupported similarity metric: "+s)
}

// SimilarityCalculator is the pluggable boundary for fingerprint similarity.
type SimilarityCalculator interface {
	Calculate(fp1, fp2 *Fingerprint) (float64, error)
	Metric() SimilarityMetric
}

// checkComparable verifies the two fingerprints were produced by the same
// algorithm with the same dimension.
func checkComparable(fp1, fp2 *Fingerprint) error {
	if fp1 == nil || fp2 == nil {
		return errors.New(errors.ErrCodeValidation, "fingerprint must not be nil")
	}
	if fp1.Type != fp2.Type || fp1.Length != fp2.Length {
		return errors.New(errors.ErrCodeValidation, "fingerprints must have same type and dimension")
	}
	return nil
}

// Tanimoto computes the Tanimoto (Jaccard) similarity between two bit-vector
// fingerprints: |A∩B| / |A∪B|.  Two all-zero fingerprints yield 0.0.
func Tanimoto(fp1, fp2 *Fingerprint) (float64, error) {
	if err := checkComparable(fp1, fp2); err != nil {
		return 0, err
	}
	intersection, union := 0, 0
	for i := range fp1.Bits {
		intersection += bits.OnesCount8(fp1.Bits[i] & fp2.Bits[i])
		union += bits.OnesCount8(fp1.Bits[i] | fp2.Bits[i])
	}
	if union == 0 {
		return 0.0, nil
	}
	return float64(intersection) / float64(union), nil
}

// TanimotoCalculator implements SimilarityCalculator for the Tanimoto metric.
type TanimotoCalculator struct{}

func (TanimotoCalculator) Calculate(fp1, fp2 *Fingerprint) (float64, error) {
	return Tanimoto(fp1, fp2)
}

func (TanimotoCalculator) Metric() SimilarityMetric { return MetricTanimoto }

// DiceCalculator implements the Dice coefficient: 2|A∩B| / (|A| + |B|).
type DiceCalculator struct{}

func (DiceCalculator) Calculate(fp1, fp2 *Fingerprint) (float64, error) {
	if err := checkComparable(fp1, fp2); err != nil {
		return 0, err
	}
	intersection := 0
	for i := range fp1.Bits {
		intersection += bits.OnesCount8(fp1.Bits[i] & fp2.Bits[i])
	}
	denom := fp1.NumOnBits + fp2.NumOnBits
	if denom == 0 {
		return 0.0, nil
	}
	return 2.0 * float64(intersection) / float64(denom), nil
}

func (DiceCalculator) Metric() SimilarityMetric { return MetricDice }

// CosineCalculator implements cosine similarity over bit vectors:
// |A∩B| / sqrt(|A||B|).
type CosineCalculator struct{}

func (CosineCalculator) Calculate(fp1, fp2 *Fingerprint) (float64, error) {
	if err := checkComparable(fp1, fp2); err != nil {
		return 0, err
	}
	intersection := 0
	for i := range fp1.Bits {
		intersection += bits.OnesCount8(fp1.Bits[i] & fp2.Bits[i])
	}
	denom := math.Sqrt(float64(fp1.NumOnBits) * float64(fp2.NumOnBits))
	if denom == 0 {
		return 0.0, nil
	}
	return float64(intersection) / denom, nil
}

func (CosineCalculator) Metric() SimilarityMetric { return MetricCosine }

// NewSimilarityCalculator returns the calculator for the given metric.
func NewSimilarityCalculator(metric SimilarityMetric) (SimilarityCalculator, error) {
	switch metric {
	case MetricTanimoto:
		return TanimotoCalculator{}, nil
	case MetricDice:
		return DiceCalculator{}, nil
	case MetricCosine:
		return CosineCalculator{}, nil
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unsupported similarity metric: "+string(metric))
	}
}

// BulkTanimoto computes the Tanimoto similarity of one query fingerprint
// against every candidate, preserving candidate order.
func BulkTanimoto(query *Fingerprint, candidates []*Fingerprint) ([]float64, error) {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		s, err := Tanimoto(query, c)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSimilarityFailed, "bulk similarity failed").
				WithDetail("candidate_index=" + strconv.Itoa(i))
		}
		out[i] = s
	}
	return out, nil
}
