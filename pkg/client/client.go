// client is a typed HTTP client of the water quality API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tim-beatham/waterq/pkg/api"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/stats"
)

const DEFAULT_TIMEOUT = 10 * time.Second

// ApiError: the server answered with a non-2xx status
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

type ObservationsParams struct {
	Start   string
	End     string
	MinTemp *float64
	MaxTemp *float64
	MinSal  *float64
	MaxSal  *float64
	MinOdo  *float64
	MaxOdo  *float64
	Limit   *int
	Skip    *int
}

type OutliersParams struct {
	Field  reading.Field
	Method stats.Method
	K      *float64
	Z      *float64
	Limit  *int
	Skip   *int
}

type WaterClient interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	Observations(ctx context.Context, params ObservationsParams) (*api.ObservationsResponse, error)
	Stats(ctx context.Context) (map[reading.Field]*stats.Summary, error)
	Outliers(ctx context.Context, params OutliersParams) (*api.OutliersResponse, error)
	Query(ctx context.Context, expression string) (json.RawMessage, error)
}

type HttpWaterClient struct {
	baseUrl string
	client  *http.Client
}

func setFloat(values url.Values, key string, value *float64) {
	if value != nil {
		values.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
}

func setInt(values url.Values, key string, value *int) {
	if value != nil {
		values.Set(key, strconv.Itoa(*value))
	}
}

func setString(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func (p *ObservationsParams) values() url.Values {
	values := url.Values{}
	setString(values, "start", p.Start)
	setString(values, "end", p.End)
	setFloat(values, "min_temp", p.MinTemp)
	setFloat(values, "max_temp", p.MaxTemp)
	setFloat(values, "min_sal", p.MinSal)
	setFloat(values, "max_sal", p.MaxSal)
	setFloat(values, "min_odo", p.MinOdo)
	setFloat(values, "max_odo", p.MaxOdo)
	setInt(values, "limit", p.Limit)
	setInt(values, "skip", p.Skip)
	return values
}

func (p *OutliersParams) values() url.Values {
	values := url.Values{}
	setString(values, "field", string(p.Field))
	setString(values, "method", string(p.Method))
	setFloat(values, "k", p.K)
	setFloat(values, "z", p.Z)
	setInt(values, "limit", p.Limit)
	setInt(values, "skip", p.Skip)
	return values
}

// get: issues a GET request to the endpoint and decodes a 2xx body into
// out. Any other status is returned as an *ApiError.
func (c *HttpWaterClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := c.baseUrl + endpoint

	if len(params) != 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)

	if err != nil {
		return err
	}

	res, err := c.client.Do(req)

	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var body api.ErrorResponse

		if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = http.StatusText(res.StatusCode)
		}

		return &ApiError{StatusCode: res.StatusCode, Message: body.Error}
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func (c *HttpWaterClient) Health(ctx context.Context) (*api.HealthResponse, error) {
	var res api.HealthResponse
	err := c.get(ctx, "/api/health", nil, &res)
	return &res, err
}

func (c *HttpWaterClient) Observations(ctx context.Context, params ObservationsParams) (*api.ObservationsResponse, error) {
	var res api.ObservationsResponse
	err := c.get(ctx, "/api/observations", params.values(), &res)
	return &res, err
}

// Stats: fields without values decode to a summary with a zero count
func (c *HttpWaterClient) Stats(ctx context.Context) (map[reading.Field]*stats.Summary, error) {
	res := make(map[reading.Field]*stats.Summary)
	err := c.get(ctx, "/api/stats", nil, &res)
	return res, err
}

func (c *HttpWaterClient) Outliers(ctx context.Context, params OutliersParams) (*api.OutliersResponse, error) {
	var res api.OutliersResponse
	err := c.get(ctx, "/api/outliers", params.values(), &res)
	return &res, err
}

func (c *HttpWaterClient) Query(ctx context.Context, expression string) (json.RawMessage, error) {
	var res json.RawMessage
	err := c.get(ctx, "/api/query", url.Values{"q": {expression}}, &res)
	return res, err
}

// NewHttpWaterClient: creates a client of the API served at baseUrl. A nil
// httpClient uses a client with DEFAULT_TIMEOUT.
func NewHttpWaterClient(baseUrl string, httpClient *http.Client) WaterClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DEFAULT_TIMEOUT}
	}

	return &HttpWaterClient{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  httpClient,
	}
}
