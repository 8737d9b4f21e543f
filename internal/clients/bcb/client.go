// Package bcb provides a client for the Banco Central do Brasil SGS API
package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

const (
	DefaultBaseURL = "https://api.bcb.gov.br"
	DefaultTimeout = 30 * time.Second

	// SeriesIPCA is the SGS series code for the monthly IPCA price index.
	SeriesIPCA = 433
)

// Client implements the InflationClient interface against the SGS
// (Sistema Gerenciador de Séries Temporais) JSON API. Fetches retry with a
// fixed delay up to a bounded attempt count.
type Client struct {
	baseURL    string
	series     int
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSeries sets the SGS series code
func WithSeries(series int) ClientOption {
	return func(c *Client) {
		c.series = series
	}
}

// WithRetry sets the bounded retry policy: maxRetries attempts with a fixed
// delay between them.
func WithRetry(maxRetries int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new SGS client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		series:     SeriesIPCA,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// sgsEntry mirrors one row of the SGS JSON payload. Both fields arrive as
// strings: dates as dd/MM/yyyy, values as decimal strings.
type sgsEntry struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// GetIndex retrieves the index series for [start, end] inclusive, in
// ascending date order. Values are percentage points per month.
func (c *Client) GetIndex(ctx context.Context, start, end time.Time) ([]models.IndexPoint, error) {
	params := url.Values{}
	params.Set("formato", "json")
	params.Set("dataInicial", start.Format("02/01/2006"))
	params.Set("dataFinal", end.Format("02/01/2006"))

	path := fmt.Sprintf("/dados/serie/bcdata.sgs.%d/dados", c.series)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		entries, err := c.fetch(ctx, reqURL, path)
		if err == nil {
			return toIndexPoints(entries)
		}
		lastErr = err
		c.logger.Warn().Err(err).Int("attempt", attempt).Int("series", c.series).Msg("SGS fetch failed")

		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("SGS series %d unavailable after %d attempts: %w", c.series, c.maxRetries, lastErr)
}

func (c *Client) fetch(ctx context.Context, reqURL, path string) ([]sgsEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("SGS API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SGS API error: %s (status: %d)", string(body), resp.StatusCode)
	}

	var entries []sgsEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return entries, nil
}

func toIndexPoints(entries []sgsEntry) ([]models.IndexPoint, error) {
	points := make([]models.IndexPoint, 0, len(entries))
	for _, e := range entries {
		date, err := time.Parse("02/01/2006", e.Data)
		if err != nil {
			return nil, fmt.Errorf("malformed SGS date %q: %w", e.Data, err)
		}
		value, err := strconv.ParseFloat(e.Valor, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed SGS value %q: %w", e.Valor, err)
		}
		points = append(points, models.IndexPoint{
			Date:  models.DateOnly(date),
			Value: value,
		})
	}
	return points, nil
}
