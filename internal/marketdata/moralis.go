// Package marketdata fetches token prices and market caps from the Moralis Solana API.
package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/core-coin/capwatch/internal/models"
)

const (
	// DefaultTimeout bounds a single price lookup.
	DefaultTimeout = 10 * time.Second
	// Chain is the network every lookup is pinned to.
	Chain = "solana"

	apiKeyHeader    = "X-API-Key"
	maxErrorBodyLen = 512
	maxBodyLen      = 1 << 20
)

// StatusError is returned when Moralis answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("moralis returned non-success status %d: %s", e.StatusCode, e.Body)
}

// Client implements models.MarketDataService against the Moralis price endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Moralis client. Trailing slashes on baseURL are ignored.
func NewClient(apiKey, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// priceResponse tolerates both spellings Moralis has used for each field.
type priceResponse struct {
	USDPrice          *float64 `json:"usdPrice"`
	USDPriceSnake     *float64 `json:"usd_price"`
	MarketCapUSD      *float64 `json:"marketCapUsd"`
	MarketCapUSDSnake *float64 `json:"market_cap_usd"`
}

func (p *priceResponse) metrics() *models.AssetMetrics {
	return &models.AssetMetrics{
		PriceUSD:     firstSet(p.USDPrice, p.USDPriceSnake),
		MarketCapUSD: firstSet(p.MarketCapUSD, p.MarketCapUSDSnake),
	}
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// FetchMetrics performs one price lookup for mint. A response that omits
// the price or the market cap is not an error; the field is left nil.
func (c *Client) FetchMetrics(ctx context.Context, mint string) (*models.AssetMetrics, error) {
	endpoint := fmt.Sprintf("%s/tokens/%s/price?chain=%s", c.baseURL, url.PathEscape(mint), Chain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building moralis request")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "moralis request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLen))
	if err != nil {
		return nil, errors.Wrap(err, "reading moralis price response")
	}

	// json.Unmarshal treats null as a no-op; only an object is a valid answer.
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errors.Errorf("decoding moralis price response: expected a JSON object, got %q", truncate(body))
	}

	var payload priceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "decoding moralis price response")
	}

	return payload.metrics(), nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodyLen {
		return string(body[:maxErrorBodyLen])
	}
	return string(body)
}
