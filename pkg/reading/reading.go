// reading defines a single aquatic sensor reading and the numeric fields
// it carries
package reading

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field is the name of a numeric column of a reading
type Field string

const (
	LATITUDE    Field = "latitude"
	LONGITUDE   Field = "longitude"
	TEMPERATURE Field = "temperature_c"
	SALINITY    Field = "salinity_ppt"
	ODO         Field = "odo_mg_l"
)

// TIMESTAMP is the name of the timestamp column
const TIMESTAMP = "timestamp"

// NumericFields are every numeric column in schema order
var NumericFields = []Field{LATITUDE, LONGITUDE, TEMPERATURE, SALINITY, ODO}

// AnalysedFields are the sensor metrics statistics and outliers are computed on
var AnalysedFields = []Field{TEMPERATURE, SALINITY, ODO}

var ErrUnknownField = errors.New("unknown field")

// ParseField: returns the numeric field with the given name
func ParseField(name string) (Field, error) {
	for _, field := range NumericFields {
		if string(field) == name {
			return field, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// ParseAnalysedField: returns the analysed field with the given name
func ParseAnalysedField(name string) (Field, error) {
	for _, field := range AnalysedFields {
		if string(field) == name {
			return field, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// Reading is one row of sensor data. A nil numeric field is missing.
type Reading struct {
	Timestamp   time.Time
	Latitude    *float64
	Longitude   *float64
	Temperature *float64
	Salinity    *float64
	ODO         *float64
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// ParseFloat: parses a numeric value. Empty, malformed and non-finite
// values (NaN, Inf) are missing and return nil.
func ParseFloat(value string) *float64 {
	value = strings.TrimSpace(value)

	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(value, 64)

	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}

	return &parsed
}

// Get returns the value of the field or nil if it is missing
func (r *Reading) Get(field Field) *float64 {
	switch field {
	case LATITUDE:
		return r.Latitude
	case LONGITUDE:
		return r.Longitude
	case TEMPERATURE:
		return r.Temperature
	case SALINITY:
		return r.Salinity
	case ODO:
		return r.ODO
	}

	return nil
}

// Set sets the value of the field, nil marks it as missing
func (r *Reading) Set(field Field, value *float64) {
	switch field {
	case LATITUDE:
		r.Latitude = value
	case LONGITUDE:
		r.Longitude = value
	case TEMPERATURE:
		r.Temperature = value
	case SALINITY:
		r.Salinity = value
	case ODO:
		r.ODO = value
	}
}

// Equal reports whether both readings hold the same timestamp and values
func (r *Reading) Equal(other *Reading) bool {
	if !r.Timestamp.Equal(other.Timestamp) {
		return false
	}

	for _, field := range NumericFields {
		a, b := r.Get(field), other.Get(field)

		if (a == nil) != (b == nil) {
			return false
		}

		if a != nil && *a != *b {
			return false
		}
	}

	return true
}

// Column returns the present values of the field across readings together
// with the index of the reading each value came from
func Column(readings []Reading, field Field) ([]float64, []int) {
	values := make([]float64, 0, len(readings))
	indices := make([]int, 0, len(readings))

	for index := range readings {
		value := readings[index].Get(field)

		if value == nil {
			continue
		}

		values = append(values, *value)
		indices = append(indices, index)
	}

	return values, indices
}

// RecordTimestampLayout is the timestamp layout of a serialised record
const RecordTimestampLayout = "2006-01-02T15:04:05"

// Record is the JSON representation of a reading
type Record struct {
	Timestamp   string   `json:"timestamp"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Temperature *float64 `json:"temperature_c"`
	Salinity    *float64 `json:"salinity_ppt"`
	ODO         *float64 `json:"odo_mg_l"`
}

// ToRecord converts the reading into its JSON representation
func ToRecord(r Reading) Record {
	return Record{
		Timestamp:   r.Timestamp.UTC().Format(RecordTimestampLayout),
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Temperature: r.Temperature,
		Salinity:    r.Salinity,
		ODO:         r.ODO,
	}
}
