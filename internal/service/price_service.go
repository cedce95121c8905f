package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/paper-trader/internal/exchange"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceResolver resolves the current price of a symbol.
type PriceResolver interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Reference prices used when the upstream quote source is unreachable.
// Simulated crypto quotes jitter within 1% of these.
var cryptoBasePrices = map[string]decimal.Decimal{
	"BTCUSDT": decimal.NewFromInt(89000),
	"ETHUSDT": decimal.NewFromInt(3200),
	"SOLUSDT": decimal.NewFromInt(210),
	"BNBUSDT": decimal.NewFromInt(620),
	"ADAUSDT": decimal.RequireFromString("0.95"),
}

var defaultCryptoBase = decimal.NewFromInt(100)

// Commodities have no upstream source. Quotes jitter within 0.5% of
// these static references, and symbols outside the table cannot be
// priced at all.
var commodityBasePrices = map[string]decimal.Decimal{
	"XAUUSD": decimal.NewFromInt(2650),
	"XAGUSD": decimal.RequireFromString("31.50"),
	"XTIUSD": decimal.RequireFromString("72.50"),
}

const (
	cryptoJitterBand    = 0.01
	commodityJitterBand = 0.005
)

// PriceService resolves symbol prices from the live quote feed, with a
// short Redis cache in front and simulated fallback quotes behind it.
type PriceService struct {
	quotes   exchange.QuoteClient
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPriceService creates a PriceService. rdb may be nil to disable
// caching. rng may be nil, in which case a time-seeded source is used.
func NewPriceService(quotes exchange.QuoteClient, rdb *redis.Client, cacheTTL time.Duration, rng *rand.Rand, logger *zap.Logger) *PriceService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PriceService{
		quotes:   quotes,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		logger:   logger,
		rng:      rng,
	}
}

// IsCommodity reports whether the symbol is quoted against USD rather
// than USDT. Commodity symbols never hit the crypto quote feed.
func IsCommodity(symbol string) bool {
	return strings.HasSuffix(symbol, "USD") && !strings.HasSuffix(symbol, "USDT")
}

// GetPrice returns the current price for a symbol. Crypto pairs prefer
// the live feed and fall back to a simulated quote when it fails.
// Commodities are always simulated. Unknown commodities return
// ErrUnpriceableAsset.
func (s *PriceService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if IsCommodity(symbol) {
		return s.commodityPrice(symbol)
	}
	return s.cryptoPrice(ctx, symbol)
}

func (s *PriceService) commodityPrice(symbol string) (decimal.Decimal, error) {
	base, ok := commodityBasePrices[symbol]
	if !ok {
		return decimal.Zero, ErrUnpriceableAsset
	}
	return s.jitter(base, commodityJitterBand), nil
}

func (s *PriceService) cryptoPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if cached, ok := s.cachedPrice(ctx, symbol); ok {
		return cached, nil
	}

	price, err := s.quotes.GetTickerPrice(ctx, symbol)
	if err == nil && price.IsPositive() {
		s.cachePrice(ctx, symbol, price)
		return price, nil
	}
	if err != nil {
		s.logger.Warn("live quote unavailable, using simulated price",
			zap.String("symbol", symbol),
			zap.Error(err))
	}

	base, ok := cryptoBasePrices[symbol]
	if !ok {
		base = defaultCryptoBase
	}
	return s.jitter(base, cryptoJitterBand), nil
}

func (s *PriceService) jitter(base decimal.Decimal, band float64) decimal.Decimal {
	s.mu.Lock()
	factor := 1 + (s.rng.Float64()*2-1)*band
	s.mu.Unlock()
	return base.Mul(decimal.NewFromFloat(factor)).Round(8)
}

func (s *PriceService) cachedPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	if s.rdb == nil {
		return decimal.Zero, false
	}
	raw, err := s.rdb.Get(ctx, priceCacheKey(symbol)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

func (s *PriceService) cachePrice(ctx context.Context, symbol string, price decimal.Decimal) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, priceCacheKey(symbol), price.String(), s.cacheTTL).Err(); err != nil {
		s.logger.Debug("price cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
}

func priceCacheKey(symbol string) string {
	return "price:" + symbol
}
