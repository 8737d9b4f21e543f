// Package yahoo provides a client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// Yahoo rejects requests without a browser-like user agent.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// chartResponse mirrors the /v8/finance/chart payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
				LongName string `json:"longName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// chart fetches the raw chart payload for a ticker and query params.
func (c *Client) chart(ctx context.Context, ticker string, params url.Values) (*chartResponse, error) {
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))

	var payload chartResponse
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	if payload.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Message:    payload.Chart.Error.Description,
			Endpoint:   path,
		}
	}
	return &payload, nil
}

// GetHistory retrieves OHLC price history for [start, endExclusive) at the
// given interval ("1d" or "1mo"). An empty slice means the provider has no
// data for the range.
func (c *Client) GetHistory(ctx context.Context, ticker string, start, endExclusive time.Time, interval string) ([]models.PricePoint, error) {
	if interval == "" {
		interval = "1d"
	}

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(endExclusive.Unix(), 10))
	params.Set("interval", interval)
	params.Set("events", "div")

	payload, err := c.chart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	if len(payload.Chart.Result) == 0 {
		return nil, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // provider gaps show up as nulls
		}
		p := models.PricePoint{
			Date:  models.DateOnly(time.Unix(ts, 0).UTC()),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			p.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			p.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			p.Low = *quote.Low[i]
		}
		points = append(points, p)
	}

	return points, nil
}

// GetDividends retrieves dividend events within [start, endExclusive).
func (c *Client) GetDividends(ctx context.Context, ticker string, start, endExclusive time.Time) ([]models.Dividend, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(endExclusive.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "div")

	payload, err := c.chart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	if len(payload.Chart.Result) == 0 {
		return nil, nil
	}

	var dividends []models.Dividend
	for _, d := range payload.Chart.Result[0].Events.Dividends {
		date := models.DateOnly(time.Unix(d.Date, 0).UTC())
		if date.Before(models.DateOnly(start)) || !date.Before(models.DateOnly(endExclusive)) {
			continue
		}
		dividends = append(dividends, models.Dividend{Date: date, Amount: d.Amount})
	}
	sort.Slice(dividends, func(i, j int) bool {
		return dividends[i].Date.Before(dividends[j].Date)
	})

	return dividends, nil
}

// GetInfo retrieves currency and long name for a ticker.
func (c *Client) GetInfo(ctx context.Context, ticker string) (*models.TickerInfo, error) {
	params := url.Values{}
	params.Set("range", "5d")
	params.Set("interval", "1d")

	payload, err := c.chart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	if len(payload.Chart.Result) == 0 {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no data for ticker %s", ticker),
			Endpoint:   "/v8/finance/chart",
		}
	}

	meta := payload.Chart.Result[0].Meta
	info := &models.TickerInfo{
		Ticker:   ticker,
		LongName: meta.LongName,
		Currency: meta.Currency,
	}
	if info.LongName == "" {
		info.LongName = meta.Symbol
	}
	if info.LongName == "" {
		info.LongName = ticker
	}
	if info.Currency == "" {
		info.Currency = "USD"
	}

	return info, nil
}
