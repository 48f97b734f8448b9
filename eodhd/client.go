// Package eodhd fetches daily closing prices from the EODHD API.
//
// See https://eodhd.com/financial-apis/api-for-historical-data-and-volumes
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/capitol"
	"github.com/etnz/capitol/date"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// DefaultExchange is the EODHD exchange code of US listed stocks.
	DefaultExchange = "US"
)

// Client is an EODHD API client.
//
// It implements capitol.PriceFetcher.
type Client struct {
	baseURL    string
	apiKey     string
	exchange   string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

var _ capitol.PriceFetcher = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithExchange sets the exchange code appended to tickers.
func WithExchange(exchange string) ClientOption {
	return func(c *Client) { c.exchange = exchange }
}

// WithDiskCache stores successful responses in dir, for the current period.
//
// Responses are fetched at most once per period: a daily cache is refreshed
// every day. An empty dir is the system temp directory.
func WithDiskCache(dir string, period date.Period) ClientOption {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		client := *c.httpClient
		client.Transport = &diskCache{base: base, dir: dir, period: period, logger: c.logger}
		c.httpClient = &client
	}
}

// NewClient creates a new EODHD API client.
//
// Options are applied in order, WithDiskCache wraps the HTTP client set
// before it.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		exchange: DefaultExchange,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Symbol returns the EODHD symbol of ticker, e.g. "AAPL.US".
func (c *Client) Symbol(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if c.exchange == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + "." + c.exchange
}

// eod is a single day of the /eod endpoint.
//
//	{
//		"date": "2024-02-13",
//		"open": 675.066,
//		"high": 684.219,
//		"low": 648.659,
//		"close": 668.445,
//		"adjusted_close": 67.705,
//		"volume": 0
//	}
type eod struct {
	Date  date.Date       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// FetchPrices returns the daily closes of ticker between from and to, included.
//
// Unknown tickers are not an error: the API answers 404, or an empty body,
// and FetchPrices returns no point.
func (c *Client) FetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]capitol.PricePoint, error) {
	params := url.Values{}
	params.Set("from", from.String())
	params.Set("to", to.String())
	params.Set("period", "d")
	params.Set("order", "a")

	var days []eod
	err := c.get(ctx, "/eod/"+url.PathEscape(c.Symbol(ticker)), params, &days)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	points := make([]capitol.PricePoint, 0, len(days))
	for _, d := range days {
		if d.Date.IsZero() {
			continue
		}
		points = append(points, capitol.PricePoint{Date: d.Date, Close: d.Close})
	}
	return points, nil
}

// get performs a GET request to the API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	// The API answers an empty body, or even {}, instead of [] when there is no data.
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("{}")) {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", path, err)
	}
	return nil
}

// APIError represents an error from the EODHD API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}
