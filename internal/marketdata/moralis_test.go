package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "So11111111111111111111111111111111111111112"

type requestInfo struct {
	method string
	path   string
	chain  string
	apiKey string
}

type capturedRequest struct {
	mu sync.Mutex
	requestInfo
}

func (c *capturedRequest) snapshot() requestInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestInfo
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.mu.Lock()
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.chain = r.URL.Query().Get("chain")
		captured.apiKey = r.Header.Get("X-API-Key")
		captured.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestClient_FetchMetrics_CamelCase(t *testing.T) {
	server, req := newTestServer(t, http.StatusOK, `{"usdPrice":0.0042,"marketCapUsd":250000}`)

	client := NewClient("secret", server.URL+"/")
	metrics, err := client.FetchMetrics(context.Background(), testMint)
	require.NoError(t, err)

	require.NotNil(t, metrics.PriceUSD)
	require.NotNil(t, metrics.MarketCapUSD)
	assert.Equal(t, 0.0042, *metrics.PriceUSD)
	assert.Equal(t, 250000.0, *metrics.MarketCapUSD)

	got := req.snapshot()
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/tokens/"+testMint+"/price", got.path)
	assert.Equal(t, "solana", got.chain)
	assert.Equal(t, "secret", got.apiKey)
}

func TestClient_FetchMetrics_SnakeCase(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"usd_price":1.5,"market_cap_usd":1e6}`)

	metrics, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
	require.NoError(t, err)

	require.NotNil(t, metrics.PriceUSD)
	require.NotNil(t, metrics.MarketCapUSD)
	assert.Equal(t, 1.5, *metrics.PriceUSD)
	assert.Equal(t, 1e6, *metrics.MarketCapUSD)
}

func TestClient_FetchMetrics_PartialResponse(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"usdPrice":2,"tokenName":"Wrapped SOL"}`)

	metrics, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
	require.NoError(t, err)

	require.NotNil(t, metrics.PriceUSD)
	assert.Nil(t, metrics.MarketCapUSD)
}

func TestClient_FetchMetrics_EmptyObject(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{}`)

	metrics, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
	require.NoError(t, err)

	assert.Nil(t, metrics.PriceUSD)
	assert.Nil(t, metrics.MarketCapUSD)
}

func TestClient_FetchMetrics_NonSuccessStatus(t *testing.T) {
	server, _ := newTestServer(t, http.StatusTooManyRequests, `{"message":"rate limited"}`)

	_, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rate limited")
}

func TestClient_FetchMetrics_MalformedBody(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"usdPrice":"cheap"}`)

	_, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding moralis price response")
}

func TestClient_FetchMetrics_NullBody(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `null`)

	metrics, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
	require.Error(t, err)
	assert.Nil(t, metrics)
	assert.Contains(t, err.Error(), "decoding moralis price response")
}

func TestClient_FetchMetrics_NonObjectBodies(t *testing.T) {
	for _, body := range []string{``, `[]`, `42`, `"price"`, `{"marketCapUsd":5} trailing garbage`, `{"marketCapUsd":5}{}`} {
		t.Run(body, func(t *testing.T) {
			server, _ := newTestServer(t, http.StatusOK, body)

			metrics, err := NewClient("k", server.URL).FetchMetrics(context.Background(), testMint)
			require.Error(t, err)
			assert.Nil(t, metrics)
		})
	}
}

func TestClient_FetchMetrics_TransportFailure(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{}`)
	url := server.URL
	server.Close()

	_, err := NewClient("k", url).FetchMetrics(context.Background(), testMint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moralis request failed")
}

func TestClient_FetchMetrics_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient("k", server.URL, WithTimeout(50*time.Millisecond))
	_, err := client.FetchMetrics(context.Background(), testMint)
	require.Error(t, err)
}
