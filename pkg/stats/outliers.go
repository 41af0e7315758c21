package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Method is the outlier detection technique
type Method string

const (
	ZSCORE Method = "zscore"
	IQR    Method = "iqr"
)

const (
	DefaultZThreshold    = 3.0
	DefaultIQRMultiplier = 1.5
)

var ErrUnknownMethod = errors.New("method must be 'iqr' or 'zscore'")

// ParseMethod: parses the method name, an empty name defaults to IQR
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case "", IQR:
		return IQR, nil
	case ZSCORE:
		return ZSCORE, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownMethod, name)
}

// Thresholds are the bounds a detection used. IQR fills Lower and Upper,
// z-score fills Z, Mean and Std.
type Thresholds struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
	Z     *float64 `json:"z,omitempty"`
	Mean  *float64 `json:"mean,omitempty"`
	Std   *float64 `json:"std,omitempty"`
}

// Detection holds one flag per input value, true meaning outlier
type Detection struct {
	Flags      []bool
	Thresholds Thresholds
}

// Count returns the number of flagged values
func (d *Detection) Count() int {
	count := 0

	for _, flagged := range d.Flags {
		if flagged {
			count++
		}
	}

	return count
}

// ZScoreOutliers: flags v when |v - mean| / std > threshold using the
// population standard deviation. A zero deviation flags nothing.
func ZScoreOutliers(values []float64, threshold float64) (*Detection, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	// rounding in the mean can leave a constant column with a tiny deviation
	if floats.Min(values) == floats.Max(values) {
		std = 0
	}

	detection := &Detection{
		Flags: make([]bool, len(values)),
		Thresholds: Thresholds{
			Z:    &threshold,
			Mean: &mean,
			Std:  &std,
		},
	}

	if std == 0 || math.IsNaN(std) {
		return detection, nil
	}

	for index, value := range values {
		detection.Flags[index] = math.Abs(value-mean)/std > threshold
	}

	return detection, nil
}

// IQROutliers: flags v when it lies outside [Q1 - k*IQR, Q3 + k*IQR]
func IQROutliers(values []float64, k float64) (*Detection, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	sorted := sortedCopy(values)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1

	lower := q1 - k*iqr
	upper := q3 + k*iqr

	detection := &Detection{
		Flags: make([]bool, len(values)),
		Thresholds: Thresholds{
			Lower: &lower,
			Upper: &upper,
		},
	}

	for index, value := range values {
		detection.Flags[index] = value < lower || value > upper
	}

	return detection, nil
}

// Detect: runs the given method. param is the z threshold for z-score and
// the fence multiplier for IQR.
func Detect(method Method, values []float64, param float64) (*Detection, error) {
	switch method {
	case ZSCORE:
		return ZScoreOutliers(values, param)
	case IQR:
		return IQROutliers(values, param)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
}

// RemoveFlagged returns the elements of vs whose flag is false
func RemoveFlagged[V any](vs []V, flags []bool) []V {
	kept := make([]V, 0, len(vs))

	for index, v := range vs {
		if index < len(flags) && flags[index] {
			continue
		}

		kept = append(kept, v)
	}

	return kept
}
