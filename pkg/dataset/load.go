// dataset loads sensor readings from CSV, removes outliers and writes the
// cleaned readings back out
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/reading"
)

// Dataset is an ordered sequence of readings sharing the reading schema
type Dataset []reading.Reading

var (
	ErrEmptyInput    = errors.New("csv input has no header row")
	ErrMissingColumn = errors.New("csv input is missing a required column")
)

// columnAliases maps each numeric field to the normalised header names it
// may appear as, in order of preference
var columnAliases = map[reading.Field][]string{
	reading.LATITUDE:    {"latitude"},
	reading.LONGITUDE:   {"longitude"},
	reading.TEMPERATURE: {"temperature_c", "temperature", "temp_c"},
	reading.SALINITY:    {"salinity_ppt", "sal_ppt", "salinity"},
	reading.ODO:         {"odo_mg_l", "odo_mg/l", "odo_mgl", "odo"},
}

// timestampLayouts are tried in order when parsing a timestamp cell
var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/06 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006",
}

var headerReplacer = strings.NewReplacer(" ", "_", "(", "", ")", "")

// NormaliseHeader: lower-cases the header, replaces spaces with underscores
// and drops parentheses so "Temperature (c)" becomes "temperature_c"
func NormaliseHeader(header string) string {
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(header)))
}

// ParseTimestamp: parses a timestamp in any of the supported layouts
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)

	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)

		if err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

// layout describes where each value lives in a row
type layout struct {
	fields    map[reading.Field]int
	date      int
	time      int
	timestamp int
}

func (l *layout) readTimestamp(row []string) (time.Time, bool) {
	if l.date >= 0 && l.time >= 0 {
		return ParseTimestamp(cell(row, l.date) + " " + cell(row, l.time))
	}

	if l.timestamp >= 0 {
		return ParseTimestamp(cell(row, l.timestamp))
	}

	return time.Time{}, false
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}

	return row[index]
}

func newLayout(header []string) *layout {
	positions := make(map[string]int, len(header))

	for index, name := range header {
		if index == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}

		normalised := NormaliseHeader(name)

		if _, ok := positions[normalised]; !ok {
			positions[normalised] = index
		}
	}

	lookup := func(names ...string) int {
		for _, name := range names {
			if index, ok := positions[name]; ok {
				return index
			}
		}

		return -1
	}

	l := &layout{
		fields:    make(map[reading.Field]int),
		timestamp: lookup(reading.TIMESTAMP),
		date:      -1,
		time:      -1,
	}

	if date, clock := lookup("date_m/d/y"), lookup("time_hh:mm:ss"); date >= 0 && clock >= 0 {
		l.date, l.time = date, clock
	} else if date, clock := lookup("date"), lookup("time"); date >= 0 && clock >= 0 {
		l.date, l.time = date, clock
	}

	for _, field := range reading.NumericFields {
		if index := lookup(columnAliases[field]...); index >= 0 {
			l.fields[field] = index
		}
	}

	return l
}

// Read: parses the CSV in r into a dataset. Numeric cells that do not parse
// are missing. Rows without a timestamp, latitude or longitude are dropped.
func Read(r io.Reader) (Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()

	if err == io.EOF {
		return nil, ErrEmptyInput
	}

	if err != nil {
		return nil, err
	}

	l := newLayout(header)

	for _, required := range []reading.Field{reading.LATITUDE, reading.LONGITUDE} {
		if _, ok := l.fields[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	if l.timestamp < 0 && l.date < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, reading.TIMESTAMP)
	}

	ds := make(Dataset, 0)
	dropped := 0

	for {
		row, err := csvReader.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		var r reading.Reading

		for field, index := range l.fields {
			r.Set(field, reading.ParseFloat(cell(row, index)))
		}

		ts, ok := l.readTimestamp(row)

		if !ok || r.Latitude == nil || r.Longitude == nil {
			dropped++
			continue
		}

		r.Timestamp = ts
		ds = append(ds, r)
	}

	if dropped > 0 {
		logging.Log.WriteWarnf("dropped %d rows missing a timestamp or position", dropped)
	}

	return ds, nil
}

// Load: reads the dataset in the CSV file at path
func Load(path string) (Dataset, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	ds, err := Read(file)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.Log.WriteInfof("loaded %d rows from %s", len(ds), path)
	return ds, nil
}
