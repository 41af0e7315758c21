// stats contains the summary statistics and outlier detection applied to
// columns of sensor readings. Every function is pure over its input.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned when a computation is given an empty sequence
var ErrNoData = errors.New("no data")

// Summary describes the distribution of a single column
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
}

// Summarise: computes count, mean, sample standard deviation, min, max and
// quartiles of values. Returns ErrNoData when values is empty.
func Summarise(values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	sorted := sortedCopy(values)

	summary := &Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		P25:   Quantile(sorted, 0.25),
		P50:   Quantile(sorted, 0.50),
		P75:   Quantile(sorted, 0.75),
	}

	// stat.StdDev divides by n-1 which is undefined for a single value
	if len(sorted) > 1 {
		summary.Std = stat.StdDev(sorted, nil)
	}

	return summary, nil
}

// Quantile: returns the p-quantile of sorted linearly interpolating between
// the closest ranks at position (n-1)*p. sorted must be ascending and non-empty.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)

	if n == 1 {
		return sorted[0]
	}

	position := float64(n-1) * p
	lower := int(math.Floor(position))

	if lower >= n-1 {
		return sorted[n-1]
	}

	if lower < 0 {
		return sorted[0]
	}

	fraction := position - float64(lower)
	return sorted[lower] + fraction*(sorted[lower+1]-sorted[lower])
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
