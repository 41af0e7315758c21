package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tim-beatham/waterq/pkg/dataset"
	"github.com/tim-beatham/waterq/pkg/lib"
	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/query"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/stats"
	"github.com/tim-beatham/waterq/pkg/store"
)

const errPagination = "limit and skip must be integers"

// page clamps the requested pagination to [1, MaxLimit] and skip >= 0
func (s *WaterServer) page(req PageRequest) (skip, limit int) {
	limit = s.conf.DefaultLimit

	if req.Limit != nil {
		limit = *req.Limit
	}

	limit = max(1, min(limit, s.conf.MaxLimit))

	if req.Skip != nil {
		skip = max(0, *req.Skip)
	}

	return skip, limit
}

func rangeOf(minValue, maxValue string) (store.Range, bool) {
	r := store.Range{Min: reading.ParseFloat(minValue), Max: reading.ParseFloat(maxValue)}
	return r, r.Min != nil || r.Max != nil
}

func (req *ObservationsRequest) filter() *store.Filter {
	filter := &store.Filter{Fields: make(map[reading.Field]store.Range)}

	if start, ok := dataset.ParseTimestamp(req.Start); ok {
		filter.Start = &start
	}

	if end, ok := dataset.ParseTimestamp(req.End); ok {
		filter.End = &end
	}

	bounds := map[reading.Field][2]string{
		reading.TEMPERATURE: {req.MinTemp, req.MaxTemp},
		reading.SALINITY:    {req.MinSal, req.MaxSal},
		reading.ODO:         {req.MinOdo, req.MaxOdo},
	}

	for field, bound := range bounds {
		if r, ok := rangeOf(bound[0], bound[1]); ok {
			filter.Fields[field] = r
		}
	}

	return filter
}

func (s *WaterServer) internalError(c *gin.Context, err error) {
	logging.Log.WriteErrorf("%s", err.Error())
	c.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
}

// Health: liveness check
func (s *WaterServer) Health(c *gin.Context) {
	c.JSON(http.StatusOK, &HealthResponse{Status: "ok"})
}

// GetObservations: returns a page of cleaned readings matching the optional
// timestamp and range filters together with the total number of matches
func (s *WaterServer) GetObservations(c *gin.Context) {
	var req ObservationsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{Error: errPagination})
		return
	}

	skip, limit := s.page(req.PageRequest)
	filter := req.filter()

	count, err := s.conf.Collection.Count(filter)

	if err != nil {
		s.internalError(c, err)
		return
	}

	readings, err := s.conf.Collection.Find(filter, skip, limit)

	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, &ObservationsResponse{
		Count: count,
		Items: lib.Map(readings, reading.ToRecord),
	})
}

// GetStats: summary statistics of every analysed field
func (s *WaterServer) GetStats(c *gin.Context) {
	readings, err := s.conf.Collection.All()

	if err != nil {
		s.internalError(c, err)
		return
	}

	if len(readings) == 0 {
		c.JSON(http.StatusNotFound, &ErrorResponse{Error: "No data available"})
		return
	}

	response := make(StatsResponse)

	for _, field := range reading.AnalysedFields {
		values, _ := reading.Column(readings, field)
		summary, err := stats.Summarise(values)

		if errors.Is(err, stats.ErrNoData) {
			response[field] = gin.H{"count": 0}
			continue
		}

		if err != nil {
			s.internalError(c, err)
			return
		}

		response[field] = summary
	}

	c.JSON(http.StatusOK, response)
}

// GetOutliers: flags the readings whose value of the requested field is an
// outlier under the requested method and returns a page of them
func (s *WaterServer) GetOutliers(c *gin.Context) {
	var req OutliersRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{Error: errPagination})
		return
	}

	field, err := reading.ParseAnalysedField(req.Field)

	if err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{
			Error: fmt.Sprintf("field must be one of %v", reading.AnalysedFields),
		})
		return
	}

	method, err := stats.ParseMethod(strings.ToLower(req.Method))

	if err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{Error: stats.ErrUnknownMethod.Error()})
		return
	}

	param := s.conf.IQRMultiplier
	requested := reading.ParseFloat(req.K)

	if method == stats.ZSCORE {
		param = s.conf.ZThreshold
		requested = reading.ParseFloat(req.Z)
	}

	if requested != nil && *requested != 0 {
		param = *requested
	}

	readings, err := s.conf.Collection.All()

	if err != nil {
		s.internalError(c, err)
		return
	}

	values, indices := reading.Column(readings, field)
	detection, err := stats.Detect(method, values, param)

	if errors.Is(err, stats.ErrNoData) {
		c.JSON(http.StatusNotFound, &ErrorResponse{Error: "No data available for the requested field"})
		return
	}

	if err != nil {
		s.internalError(c, err)
		return
	}

	flagged := make([]reading.Reading, 0, detection.Count())

	for i, isOutlier := range detection.Flags {
		if isOutlier {
			flagged = append(flagged, readings[indices[i]])
		}
	}

	skip, limit := s.page(req.PageRequest)

	c.JSON(http.StatusOK, &OutliersResponse{
		Field:      field,
		Method:     method,
		Thresholds: detection.Thresholds,
		Count:      len(flagged),
		Items:      lib.Map(lib.Page(flagged, skip, limit), reading.ToRecord),
	})
}

// Query: evaluates a JMESPath expression over the stored readings
func (s *WaterServer) Query(c *gin.Context) {
	var req QueryRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, &ErrorResponse{Error: "q is required"})
		return
	}

	result, err := s.conf.Querier.Query(req.Query)

	var queryErr *query.QueryError

	if errors.As(err, &queryErr) {
		c.JSON(http.StatusBadRequest, &ErrorResponse{Error: queryErr.Error()})
		return
	}

	if err != nil {
		s.internalError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}
