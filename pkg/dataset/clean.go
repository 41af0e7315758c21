package dataset

import (
	"errors"

	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/stats"
)

// CleanReport summarises a cleaning pass
type CleanReport struct {
	TotalRows       int `json:"total_rows"`
	RemovedOutliers int `json:"removed_outliers"`
	RemainingRows   int `json:"remaining_rows"`
}

// OutlierRows: flags each reading for which any of the columns holds a
// z-score outlier. Missing values never flag a reading.
func OutlierRows(ds Dataset, columns []reading.Field, threshold float64) ([]bool, error) {
	flags := make([]bool, len(ds))

	for _, column := range columns {
		values, indices := reading.Column(ds, column)

		detection, err := stats.ZScoreOutliers(values, threshold)

		if errors.Is(err, stats.ErrNoData) {
			continue
		}

		if err != nil {
			return nil, err
		}

		for i, flagged := range detection.Flags {
			if flagged {
				flags[indices[i]] = true
			}
		}
	}

	return flags, nil
}

// CleanZScore: returns a copy of the dataset without the rows flagged by
// OutlierRows, preserving order
func CleanZScore(ds Dataset, columns []reading.Field, threshold float64) (Dataset, CleanReport, error) {
	if len(ds) == 0 {
		return Dataset{}, CleanReport{}, nil
	}

	flags, err := OutlierRows(ds, columns, threshold)

	if err != nil {
		return nil, CleanReport{}, err
	}

	cleaned := Dataset(stats.RemoveFlagged(ds, flags))

	report := CleanReport{
		TotalRows:       len(ds),
		RemovedOutliers: len(ds) - len(cleaned),
		RemainingRows:   len(cleaned),
	}

	logging.Log.WriteInfof("removed %d outlier rows of %d, %d remaining",
		report.RemovedOutliers, report.TotalRows, report.RemainingRows)

	return cleaned, report, nil
}
