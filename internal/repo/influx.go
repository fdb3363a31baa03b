package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/miradorstack/check-bond/internal/metrics"
	"github.com/miradorstack/check-bond/internal/models"
	"github.com/miradorstack/check-bond/internal/utils"
)

// Query names used for metrics labels.
const (
	QuerySlaves  = "slaves"
	QueryPrimary = "primary"
)

// QueryResponse is the JSON body returned by the InfluxDB 1.x /query endpoint.
type QueryResponse struct {
	Results []QueryResult `json:"results"`
	Error   string        `json:"error,omitempty"`
}

// QueryResult is one statement result.
type QueryResult struct {
	StatementID int      `json:"statement_id"`
	Series      []Series `json:"series,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Series is one group of rows sharing a tag set.
type Series struct {
	Name    string            `json:"name"`
	Tags    map[string]string `json:"tags,omitempty"`
	Columns []string          `json:"columns"`
	Values  [][]any           `json:"values,omitempty"`
}

// InfluxClient issues read-only InfluxQL queries against a single database.
type InfluxClient struct {
	baseURL    string
	database   string
	username   string
	password   string
	window     string
	httpClient *http.Client
}

// InfluxOptions carries optional connection settings.
type InfluxOptions struct {
	Scheme   string
	Username string
	Password string
	// Window is the InfluxQL duration literal used as slave query lookback.
	Window string
}

// NewInfluxClient constructs a client for http://host:port/query?db=database.
func NewInfluxClient(host string, port int, database string, opts InfluxOptions) *InfluxClient {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = "http"
	}
	window := opts.Window
	if window == "" {
		window = "1m"
	}
	return &InfluxClient{
		baseURL:    fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(host, strconv.Itoa(port))),
		database:   database,
		username:   opts.Username,
		password:   opts.Password,
		window:     window,
		httpClient: &http.Client{},
	}
}

// FetchSlaveSeries returns the bond_slave series for hostname within the lookback window,
// grouped by bond. A nil slice means the database returned no result or no series.
func (c *InfluxClient) FetchSlaveSeries(ctx context.Context, hostname string) ([]Series, error) {
	resp, err := c.Query(ctx, QuerySlaves, SlaveQuery(hostname, c.window))
	if err != nil {
		return nil, fmt.Errorf("bond_slave query failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return resp.Results[0].Series, nil
}

// FetchPrimary returns the bond row series recorded at the sample's timestamp.
func (c *InfluxClient) FetchPrimary(ctx context.Context, sample models.BondSample) ([]Series, error) {
	resp, err := c.Query(ctx, QueryPrimary, PrimaryQuery(sample.RawTime, sample.Bond, sample.Host))
	if err != nil {
		return nil, fmt.Errorf("bond query failed: %w", err)
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Series) == 0 {
		return nil, utils.NewAppError(utils.KindShape, "bond query", fmt.Sprintf("no bond row for %s at %s", sample.Bond, sample.RawTime), nil)
	}
	return resp.Results[0].Series, nil
}

// Query runs q and decodes the response. name labels the query in metrics.
func (c *InfluxClient) Query(ctx context.Context, name, q string) (QueryResponse, error) {
	start := time.Now()
	resp, err := c.get(ctx, q)
	metrics.ObserveQuery(name, time.Since(start), err)
	return resp, err
}

// QueryURL returns the full request URL for q.
func (c *InfluxClient) QueryURL(q string) string {
	params := url.Values{}
	params.Set("db", c.database)
	params.Set("q", q)
	return c.baseURL + "/query?" + params.Encode()
}

func (c *InfluxClient) get(ctx context.Context, q string) (QueryResponse, error) {
	var out QueryResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QueryURL(q), nil)
	if err != nil {
		return out, utils.NewAppError(utils.KindTransport, "influx query", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, utils.NewAppError(utils.KindTransport, "influx query", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, utils.NewAppError(utils.KindTransport, "influx query", "read body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, utils.NewAppError(utils.KindTransport, "influx query", fmt.Sprintf("influxdb returned %s", resp.Status), errorFromBody(body))
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&out); err != nil {
		return out, utils.NewAppError(utils.KindDecode, "influx query", "decode response", err)
	}

	if out.Error != "" {
		return out, utils.NewAppError(utils.KindShape, "influx query", "influxdb error", errors.New(out.Error))
	}
	for _, r := range out.Results {
		if r.Error != "" {
			return out, utils.NewAppError(utils.KindShape, "influx query", fmt.Sprintf("statement %d error", r.StatementID), errors.New(r.Error))
		}
	}
	return out, nil
}

// errorFromBody extracts the InfluxDB error message from a failed response, if any.
func errorFromBody(body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return nil
}
