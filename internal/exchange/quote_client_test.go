package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *BinanceQuoteClient {
	return NewBinanceQuoteClient(BinanceQuoteOptions{
		BaseURL:        baseURL,
		Timeout:        2,
		RateLimit:      100,
		RateLimitBurst: 100,
	})
}

func TestGetTickerPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"91234.56000000"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	price, err := client.GetTickerPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("91234.56")))
}

func TestGetTickerPrice_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetTickerPrice(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestGetTickerPrice_BadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"not-a-number"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetTickerPrice(context.Background(), "BTCUSDT")
	assert.Error(t, err)
}

func TestGetTickerPrice_Unreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.GetTickerPrice(context.Background(), "BTCUSDT")
	assert.Error(t, err)
}
