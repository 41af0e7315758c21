package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tim-beatham/waterq/pkg/lib"
	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/reading"
)

// TimestampLayout is the layout timestamps are written in
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// Header is the column order of a written dataset
var Header = append([]string{reading.TIMESTAMP}, lib.Map(reading.NumericFields, func(f reading.Field) string {
	return string(f)
})...)

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}

	return strconv.FormatFloat(*value, 'f', -1, 64)
}

// Write: writes the dataset as CSV to w. Missing values are empty cells.
func Write(w io.Writer, ds Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}

	row := make([]string, len(Header))

	for index := range ds {
		r := &ds[index]
		row[0] = r.Timestamp.Format(TimestampLayout)

		for i, field := range reading.NumericFields {
			row[i+1] = formatFloat(r.Get(field))
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Save: writes the dataset to the CSV file at path creating parent
// directories as needed
func Save(path string, ds Dataset) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)

	if err != nil {
		return err
	}

	err = Write(file, ds)

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return err
	}

	logging.Log.WriteInfof("saved %d rows to %s", len(ds), path)
	return nil
}
