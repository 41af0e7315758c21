package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tim-beatham/waterq/pkg/api"
	"github.com/tim-beatham/waterq/pkg/lib"
	"github.com/tim-beatham/waterq/pkg/query"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/stats"
	"github.com/tim-beatham/waterq/pkg/store"
)

func setUpClient(t *testing.T) WaterClient {
	gin.SetMode(gin.TestMode)

	start := time.Date(2021, 12, 16, 10, 0, 0, 0, time.UTC)
	collection := store.NewAutomergeCollection("asv_1", &lib.UUIDGenerator{})

	_, err := collection.InsertMany([]reading.Reading{
		{
			Timestamp:   start,
			Latitude:    reading.Float(25.91),
			Longitude:   reading.Float(-80.13),
			Temperature: reading.Float(24.1),
			Salinity:    reading.Float(36.2),
		},
		{
			Timestamp:   start.Add(time.Minute),
			Latitude:    reading.Float(25.92),
			Longitude:   reading.Float(-80.14),
			Temperature: reading.Float(26.5),
			Salinity:    reading.Float(36.4),
		},
	})

	if err != nil {
		t.Fatal(err)
	}

	server, err := api.NewWaterServer(api.ApiServerConf{
		Collection:    collection,
		Querier:       query.NewJmesQuerier(collection),
		DefaultLimit:  100,
		MaxLimit:      1000,
		ZThreshold:    3.0,
		IQRMultiplier: 1.5,
	})

	if err != nil {
		t.Fatal(err)
	}

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return NewHttpWaterClient(httpServer.URL+"/", nil)
}

func TestHealth(t *testing.T) {
	client := setUpClient(t)

	res, err := client.Health(context.Background())

	if err != nil {
		t.Fatal(err)
	}

	if res.Status != "ok" {
		t.Fatalf(`expected ok got %s`, res.Status)
	}
}

func TestObservationsParams(t *testing.T) {
	client := setUpClient(t)
	limit := 1

	res, err := client.Observations(context.Background(), ObservationsParams{
		MinTemp: reading.Float(25),
		Limit:   &limit,
	})

	if err != nil {
		t.Fatal(err)
	}

	if res.Count != 1 || len(res.Items) != 1 || *res.Items[0].Temperature != 26.5 {
		t.Fatalf(`unexpected observations %+v`, res)
	}
}

func TestStatsMissingField(t *testing.T) {
	client := setUpClient(t)

	res, err := client.Stats(context.Background())

	if err != nil {
		t.Fatal(err)
	}

	if res[reading.TEMPERATURE].Count != 2 {
		t.Fatalf(`expected 2 temperature values got %d`, res[reading.TEMPERATURE].Count)
	}

	if res[reading.ODO] == nil || res[reading.ODO].Count != 0 {
		t.Fatalf(`expected a zero oxygen count`)
	}
}

func TestOutliersApiError(t *testing.T) {
	client := setUpClient(t)

	_, err := client.Outliers(context.Background(), OutliersParams{Field: "pressure"})

	var apiErr *ApiError

	if !errors.As(err, &apiErr) {
		t.Fatalf(`expected an api error got %v`, err)
	}

	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message == "" {
		t.Fatalf(`unexpected api error %v`, apiErr)
	}
}

func TestOutliers(t *testing.T) {
	client := setUpClient(t)

	res, err := client.Outliers(context.Background(), OutliersParams{
		Field:  reading.SALINITY,
		Method: stats.ZSCORE,
	})

	if err != nil {
		t.Fatal(err)
	}

	if res.Count != 0 || res.Method != stats.ZSCORE {
		t.Fatalf(`unexpected outliers %+v`, res)
	}
}

func TestQuery(t *testing.T) {
	client := setUpClient(t)

	res, err := client.Query(context.Background(), "length(@)")

	if err != nil {
		t.Fatal(err)
	}

	if string(res) != "2" {
		t.Fatalf(`expected 2 got %s`, string(res))
	}
}
