package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// QuoteClient fetches live spot prices from an upstream exchange.
type QuoteClient interface {
	GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// BinanceQuoteClient pulls ticker prices from the Binance public REST
// API. Requests share a client-side rate limiter so bursts of symbol
// lookups stay inside the exchange request weight budget.
type BinanceQuoteClient struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// BinanceQuoteOptions configures a BinanceQuoteClient
type BinanceQuoteOptions struct {
	BaseURL        string
	Timeout        int
	RateLimit      float64
	RateLimitBurst int
}

// NewBinanceQuoteClient creates a quote client against the given base URL
func NewBinanceQuoteClient(opts BinanceQuoteOptions) *BinanceQuoteClient {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(time.Duration(opts.Timeout) * time.Second)
	}
	return &BinanceQuoteClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimitBurst),
	}
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetTickerPrice returns the latest traded price for a symbol
func (c *BinanceQuoteClient) GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	var ticker tickerPriceResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&ticker).
		Get("/api/v3/ticker/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch ticker %s: %w", symbol, err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("fetch ticker %s: status %d", symbol, resp.StatusCode())
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse ticker price %q: %w", ticker.Price, err)
	}
	return price, nil
}
