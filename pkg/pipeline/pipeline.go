// pipeline ingests the raw sensor CSV, removes outliers and seeds the store
package pipeline

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/tim-beatham/waterq/pkg/conf"
	"github.com/tim-beatham/waterq/pkg/dataset"
	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/store"
)

// Report describes a pipeline run
type Report struct {
	dataset.CleanReport
	// Source is the CSV file the readings were loaded from
	Source string `json:"source"`
	// Seeded is true when an existing cleaned CSV was reused
	Seeded bool `json:"seeded"`
	// Inserted is the number of readings written to the collection
	Inserted int `json:"inserted"`
}

func cleanColumns(c *conf.DaemonConfiguration) ([]reading.Field, error) {
	columns := make([]reading.Field, 0, len(c.CleanColumns))

	for _, name := range c.CleanColumns {
		field, err := reading.ParseField(name)

		if err != nil {
			return nil, err
		}

		columns = append(columns, field)
	}

	return columns, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist) && err == nil
}

// loadCleaned reuses the cleaned CSV from a previous run
func loadCleaned(c *conf.DaemonConfiguration) (dataset.Dataset, *Report, error) {
	ds, err := dataset.Load(c.CleanedCsvPath)

	if err != nil {
		return nil, nil, err
	}

	logging.Log.WriteInfof("seeding from cleaned csv %s", c.CleanedCsvPath)

	return ds, &Report{
		CleanReport: dataset.CleanReport{
			TotalRows:     len(ds),
			RemainingRows: len(ds),
		},
		Source: c.CleanedCsvPath,
		Seeded: true,
	}, nil
}

// Clean: loads the raw CSV, drops every row holding a z-score outlier in
// any of the configured columns and writes the cleaned CSV if configured.
// With SeedFromCleaned an existing cleaned CSV is loaded as is.
func Clean(c *conf.DaemonConfiguration) (dataset.Dataset, *Report, error) {
	if c.SeedFromCleaned && exists(c.CleanedCsvPath) {
		return loadCleaned(c)
	}

	columns, err := cleanColumns(c)

	if err != nil {
		return nil, nil, err
	}

	raw, err := dataset.Load(c.CsvPath)

	if err != nil {
		return nil, nil, err
	}

	logging.Log.WriteInfof("loaded %d readings from %s", len(raw), c.CsvPath)

	cleaned, cleanReport, err := dataset.CleanZScore(raw, columns, c.ZThreshold)

	if err != nil {
		return nil, nil, err
	}

	if c.WriteCleanedCsv != nil && *c.WriteCleanedCsv {
		err = dataset.Save(c.CleanedCsvPath, cleaned)

		if err != nil {
			return nil, nil, err
		}

		logging.Log.WriteInfof("wrote cleaned csv to %s", c.CleanedCsvPath)
	}

	return cleaned, &Report{CleanReport: cleanReport, Source: c.CsvPath}, nil
}

// Run: cleans the readings and replaces the contents of the collection
// with them
func Run(c *conf.DaemonConfiguration, collection store.Collection) (*Report, error) {
	cleaned, report, err := Clean(c)

	if err != nil {
		return nil, err
	}

	removed, err := collection.DeleteMany(nil)

	if err != nil {
		return nil, err
	}

	if removed != 0 {
		logging.Log.WriteDebugf("removed %d stale readings", removed)
	}

	if len(cleaned) != 0 {
		ids, err := collection.InsertMany(cleaned)

		if err != nil {
			return nil, err
		}

		report.Inserted = len(ids)

		example, err := collection.FindOne(nil)

		if err != nil {
			return nil, err
		}

		if example != nil {
			record, _ := json.Marshal(reading.ToRecord(*example))
			logging.Log.WriteDebugf("example reading %s", record)
		}
	}

	logging.Log.WriteInfof("seeded collection with %d readings", report.Inserted)
	return report, nil
}
