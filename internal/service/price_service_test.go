package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubQuoteClient fakes the upstream ticker feed
type stubQuoteClient struct {
	price decimal.Decimal
	err   error
	calls int
}

func (s *stubQuoteClient) GetTickerPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	s.calls++
	return s.price, s.err
}

func newPriceService(quotes *stubQuoteClient) *PriceService {
	rng := rand.New(rand.NewSource(42))
	return NewPriceService(quotes, nil, 0, rng, zap.NewNop())
}

func TestIsCommodity(t *testing.T) {
	assert.True(t, IsCommodity("XAUUSD"))
	assert.True(t, IsCommodity("XTIUSD"))
	assert.False(t, IsCommodity("BTCUSDT"))
	assert.False(t, IsCommodity("ETHUSDT"))
}

func TestGetPrice_LiveQuote(t *testing.T) {
	quotes := &stubQuoteClient{price: decimal.RequireFromString("91234.56")}
	svc := newPriceService(quotes)

	price, err := svc.GetPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("91234.56")))
	assert.Equal(t, 1, quotes.calls)
}

func TestGetPrice_FallbackWithinBand(t *testing.T) {
	quotes := &stubQuoteClient{err: errors.New("connection refused")}
	svc := newPriceService(quotes)

	base := decimal.NewFromInt(89000)
	low := base.Mul(decimal.RequireFromString("0.99"))
	high := base.Mul(decimal.RequireFromString("1.01"))

	for i := 0; i < 50; i++ {
		price, err := svc.GetPrice(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.True(t, price.GreaterThanOrEqual(low), "price %s below band", price)
		assert.True(t, price.LessThanOrEqual(high), "price %s above band", price)
	}
}

func TestGetPrice_FallbackDefaultBase(t *testing.T) {
	quotes := &stubQuoteClient{err: errors.New("timeout")}
	svc := newPriceService(quotes)

	price, err := svc.GetPrice(context.Background(), "OBSCUREUSDT")
	require.NoError(t, err)
	assert.True(t, price.GreaterThanOrEqual(decimal.NewFromInt(99)))
	assert.True(t, price.LessThanOrEqual(decimal.NewFromInt(101)))
}

func TestGetPrice_CommodityWithinBand(t *testing.T) {
	quotes := &stubQuoteClient{}
	svc := newPriceService(quotes)

	base := decimal.NewFromInt(2650)
	low := base.Mul(decimal.RequireFromString("0.995"))
	high := base.Mul(decimal.RequireFromString("1.005"))

	for i := 0; i < 50; i++ {
		price, err := svc.GetPrice(context.Background(), "XAUUSD")
		require.NoError(t, err)
		assert.True(t, price.GreaterThanOrEqual(low), "price %s below band", price)
		assert.True(t, price.LessThanOrEqual(high), "price %s above band", price)
	}

	// Commodities never touch the upstream feed.
	assert.Zero(t, quotes.calls)
}

func TestGetPrice_UnknownCommodity(t *testing.T) {
	svc := newPriceService(&stubQuoteClient{})

	price, err := svc.GetPrice(context.Background(), "XPTUSD")
	assert.ErrorIs(t, err, ErrUnpriceableAsset)
	assert.True(t, price.IsZero())
}

func TestGetPrice_ZeroLiveQuoteFallsBack(t *testing.T) {
	quotes := &stubQuoteClient{price: decimal.Zero}
	svc := newPriceService(quotes)

	price, err := svc.GetPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.True(t, price.IsPositive())
}
