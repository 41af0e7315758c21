package query

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/tim-beatham/waterq/pkg/lib"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/store"
)

func setUpQuerier(t *testing.T) Querier {
	start := time.Date(2021, 12, 16, 10, 0, 0, 0, time.UTC)
	collection := store.NewAutomergeCollection("asv_1", &lib.UUIDGenerator{})

	_, err := collection.InsertMany([]reading.Reading{
		{
			Timestamp:   start,
			Latitude:    reading.Float(25.91),
			Longitude:   reading.Float(-80.13),
			Temperature: reading.Float(24.1),
		},
		{
			Timestamp:   start.Add(time.Second),
			Latitude:    reading.Float(25.92),
			Longitude:   reading.Float(-80.14),
			Temperature: reading.Float(26.5),
		},
	})

	if err != nil {
		t.Fatal(err)
	}

	return NewJmesQuerier(collection)
}

func TestQueryFiltersByJsonField(t *testing.T) {
	querier := setUpQuerier(t)

	bytes, err := querier.Query("[?temperature_c > `25`].timestamp")

	if err != nil {
		t.Fatal(err)
	}

	var timestamps []string

	if err := json.Unmarshal(bytes, &timestamps); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(timestamps, []string{"2021-12-16T10:00:01"}) {
		t.Fatalf(`unexpected result %s`, string(bytes))
	}
}

func TestQueryLength(t *testing.T) {
	querier := setUpQuerier(t)

	bytes, err := querier.Query("length(@)")

	if err != nil {
		t.Fatal(err)
	}

	if string(bytes) != "2" {
		t.Fatalf(`expected 2 got %s`, string(bytes))
	}
}

func TestQueryInvalidExpression(t *testing.T) {
	querier := setUpQuerier(t)

	_, err := querier.Query("[?temperature_c >")

	var queryErr *QueryError

	if !errors.As(err, &queryErr) {
		t.Fatalf(`expected a query error got %v`, err)
	}
}
