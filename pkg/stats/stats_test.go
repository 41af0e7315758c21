package stats

import (
	"errors"
	"math"
	"slices"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// clustered returns values tightly grouped around 10 with one value at 100
func clustered() []float64 {
	return []float64{
		10, 10.1, 9.9, 10, 10.2, 9.8, 10, 10.1, 9.9, 10,
		10, 10.1, 9.9, 10, 10.2, 9.8, 10, 10.1, 9.9, 100,
	}
}

func flaggedIndices(flags []bool) []int {
	indices := make([]int, 0)

	for index, flagged := range flags {
		if flagged {
			indices = append(indices, index)
		}
	}

	return indices
}

func TestSummariseOneToFive(t *testing.T) {
	summary, err := Summarise([]float64{1, 2, 3, 4, 5})

	if err != nil {
		t.Fatal(err)
	}

	if summary.Count != 5 {
		t.Fatalf(`expected count 5 got %d`, summary.Count)
	}

	if !almostEqual(summary.Mean, 3, tolerance) {
		t.Fatalf(`expected mean 3 got %f`, summary.Mean)
	}

	if !almostEqual(summary.Std, 1.5811388300841898, 1e-6) {
		t.Fatalf(`expected std 1.581 got %f`, summary.Std)
	}

	if summary.Min != 1 || summary.Max != 5 {
		t.Fatalf(`expected min 1 max 5 got %f %f`, summary.Min, summary.Max)
	}

	if !almostEqual(summary.P50, 3, tolerance) {
		t.Fatalf(`expected median 3 got %f`, summary.P50)
	}

	if !almostEqual(summary.P25, 2, tolerance) || !almostEqual(summary.P75, 4, tolerance) {
		t.Fatalf(`expected quartiles 2 and 4 got %f %f`, summary.P25, summary.P75)
	}
}

func TestSummariseUnsortedInput(t *testing.T) {
	input := []float64{5, 1, 4, 2, 3}
	summary, err := Summarise(input)

	if err != nil {
		t.Fatal(err)
	}

	if summary.Min != 1 || summary.Max != 5 || !almostEqual(summary.P50, 3, tolerance) {
		t.Fatalf(`unexpected summary %+v`, summary)
	}

	if !slices.Equal(input, []float64{5, 1, 4, 2, 3}) {
		t.Fatalf(`input should not be modified`)
	}
}

func TestSummariseEmpty(t *testing.T) {
	summary, err := Summarise([]float64{})

	if !errors.Is(err, ErrNoData) {
		t.Fatalf(`expected no data error got %v`, err)
	}

	if summary != nil {
		t.Fatalf(`expected no summary`)
	}
}

func TestSummariseSingleValue(t *testing.T) {
	summary, err := Summarise([]float64{7.5})

	if err != nil {
		t.Fatal(err)
	}

	if summary.Std != 0 {
		t.Fatalf(`expected std 0 got %f`, summary.Std)
	}

	if summary.P25 != 7.5 || summary.P75 != 7.5 {
		t.Fatalf(`expected quartiles to equal the value`)
	}
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	if q := Quantile(sorted, 0.25); !almostEqual(q, 1.75, tolerance) {
		t.Fatalf(`expected 1.75 got %f`, q)
	}

	if q := Quantile(sorted, 0.5); !almostEqual(q, 2.5, tolerance) {
		t.Fatalf(`expected 2.5 got %f`, q)
	}

	if q := Quantile(sorted, 1); q != 4 {
		t.Fatalf(`expected 4 got %f`, q)
	}

	if q := Quantile(sorted, 0); q != 1 {
		t.Fatalf(`expected 1 got %f`, q)
	}
}

func TestZScoreConstantColumnFlagsNothing(t *testing.T) {
	detection, err := ZScoreOutliers([]float64{4.2, 4.2, 4.2, 4.2, 4.2}, DefaultZThreshold)

	if err != nil {
		t.Fatal(err)
	}

	if detection.Count() != 0 {
		t.Fatalf(`constant column should flag nothing, flagged %d`, detection.Count())
	}

	if *detection.Thresholds.Std != 0 {
		t.Fatalf(`expected std 0 got %f`, *detection.Thresholds.Std)
	}
}

func TestZScoreFlagsSingleExtremeValue(t *testing.T) {
	values := clustered()
	detection, err := ZScoreOutliers(values, DefaultZThreshold)

	if err != nil {
		t.Fatal(err)
	}

	flagged := flaggedIndices(detection.Flags)

	if !slices.Equal(flagged, []int{len(values) - 1}) {
		t.Fatalf(`expected only the extreme value to be flagged got %v`, flagged)
	}
}

func TestIQRFlagsValueZScoreMisses(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 20}

	iqr, err := IQROutliers(values, DefaultIQRMultiplier)

	if err != nil {
		t.Fatal(err)
	}

	zscore, err := ZScoreOutliers(values, DefaultZThreshold)

	if err != nil {
		t.Fatal(err)
	}

	if !iqr.Flags[9] {
		t.Fatalf(`expected IQR to flag 20, fences %f %f`, *iqr.Thresholds.Lower, *iqr.Thresholds.Upper)
	}

	if zscore.Flags[9] {
		t.Fatalf(`expected z-score not to flag 20`)
	}

	if iqr.Count() != 1 || zscore.Count() != 0 {
		t.Fatalf(`unexpected counts iqr=%d zscore=%d`, iqr.Count(), zscore.Count())
	}
}

func TestIQRFences(t *testing.T) {
	detection, err := IQROutliers([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 20}, 1.5)

	if err != nil {
		t.Fatal(err)
	}

	if !almostEqual(*detection.Thresholds.Lower, -3.5, tolerance) {
		t.Fatalf(`expected lower fence -3.5 got %f`, *detection.Thresholds.Lower)
	}

	if !almostEqual(*detection.Thresholds.Upper, 14.5, tolerance) {
		t.Fatalf(`expected upper fence 14.5 got %f`, *detection.Thresholds.Upper)
	}
}

func TestOutliersEmptyInput(t *testing.T) {
	if _, err := ZScoreOutliers(nil, DefaultZThreshold); !errors.Is(err, ErrNoData) {
		t.Fatalf(`expected no data error from z-score`)
	}

	if _, err := IQROutliers(nil, DefaultIQRMultiplier); !errors.Is(err, ErrNoData) {
		t.Fatalf(`expected no data error from IQR`)
	}
}

func TestParseMethod(t *testing.T) {
	method, err := ParseMethod("")

	if err != nil || method != IQR {
		t.Fatalf(`empty method should default to iqr`)
	}

	method, err = ParseMethod("zscore")

	if err != nil || method != ZSCORE {
		t.Fatalf(`expected zscore`)
	}

	if _, err = ParseMethod("mad"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf(`expected unknown method error got %v`, err)
	}
}

func TestDetectDispatches(t *testing.T) {
	values := clustered()

	detection, err := Detect(ZSCORE, values, DefaultZThreshold)

	if err != nil {
		t.Fatal(err)
	}

	if detection.Thresholds.Z == nil || detection.Thresholds.Lower != nil {
		t.Fatalf(`expected z-score thresholds`)
	}

	detection, err = Detect(IQR, values, DefaultIQRMultiplier)

	if err != nil {
		t.Fatal(err)
	}

	if detection.Thresholds.Lower == nil || detection.Thresholds.Z != nil {
		t.Fatalf(`expected IQR thresholds`)
	}
}

func TestRemoveFlagged(t *testing.T) {
	values := []string{"a", "b", "c", "d"}

	kept := RemoveFlagged(values, []bool{false, true, false, true})

	if !slices.Equal(kept, []string{"a", "c"}) {
		t.Fatalf(`unexpected result %v`, kept)
	}
}
