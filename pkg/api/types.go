package api

import (
	"github.com/tim-beatham/waterq/pkg/query"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/stats"
	"github.com/tim-beatham/waterq/pkg/store"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type ObservationsResponse struct {
	Count int              `json:"count"`
	Items []reading.Record `json:"items"`
}

type OutliersResponse struct {
	Field      reading.Field    `json:"field"`
	Method     stats.Method     `json:"method"`
	Thresholds stats.Thresholds `json:"thresholds"`
	Count      int              `json:"count"`
	Items      []reading.Record `json:"items"`
}

// StatsResponse maps each analysed field to its summary. A field without
// values only carries a zero count.
type StatsResponse map[reading.Field]any

type ErrorResponse struct {
	Error string `json:"error"`
}

// PageRequest are the pagination parameters shared by list endpoints
type PageRequest struct {
	Limit *int `form:"limit"`
	Skip  *int `form:"skip"`
}

type ObservationsRequest struct {
	PageRequest
	Start   string `form:"start"`
	End     string `form:"end"`
	MinTemp string `form:"min_temp"`
	MaxTemp string `form:"max_temp"`
	MinSal  string `form:"min_sal"`
	MaxSal  string `form:"max_sal"`
	MinOdo  string `form:"min_odo"`
	MaxOdo  string `form:"max_odo"`
}

type OutliersRequest struct {
	PageRequest
	Field  string `form:"field"`
	Method string `form:"method"`
	K      string `form:"k"`
	Z      string `form:"z"`
}

type QueryRequest struct {
	Query string `form:"q" binding:"required"`
}

type ApiServerConf struct {
	Collection    store.Collection
	Querier       query.Querier
	DefaultLimit  int
	MaxLimit      int
	ZThreshold    float64
	IQRMultiplier float64
}
