// store holds the cleaned readings as a schema-less collection of documents
package store

import (
	"time"

	"github.com/tim-beatham/waterq/pkg/reading"
)

// Range is an inclusive bound on a numeric field, nil ends are open
type Range struct {
	Min *float64
	Max *float64
}

// Contains reports whether value lies within the range. A missing value
// never matches.
func (r Range) Contains(value *float64) bool {
	if value == nil {
		return false
	}

	if r.Min != nil && *value < *r.Min {
		return false
	}

	if r.Max != nil && *value > *r.Max {
		return false
	}

	return true
}

// Filter selects documents. The zero value matches every document.
type Filter struct {
	Start  *time.Time
	End    *time.Time
	Fields map[reading.Field]Range
}

// Matches reports whether the reading satisfies every condition of the filter
func (f *Filter) Matches(r *reading.Reading) bool {
	if f == nil {
		return true
	}

	if f.Start != nil && r.Timestamp.Before(*f.Start) {
		return false
	}

	if f.End != nil && r.Timestamp.After(*f.End) {
		return false
	}

	for field, bounds := range f.Fields {
		if !bounds.Contains(r.Get(field)) {
			return false
		}
	}

	return true
}

// Collection is an in-memory collection of reading documents. Documents are
// returned in insertion order.
type Collection interface {
	// InsertMany adds the readings to the collection returning their ids
	InsertMany(readings []reading.Reading) ([]string, error)
	// DeleteMany removes every document matching the filter, returning how many
	DeleteMany(filter *Filter) (int, error)
	// Count returns the number of documents matching the filter
	Count(filter *Filter) (int, error)
	// Find returns matching documents after skipping skip of them, at most
	// limit documents. A limit <= 0 means no limit.
	Find(filter *Filter, skip, limit int) ([]reading.Reading, error)
	// FindOne returns the first matching document or nil
	FindOne(filter *Filter) (*reading.Reading, error)
	// All returns every document
	All() ([]reading.Reading, error)
}
