package service

import (
	"context"
	"testing"
	"time"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pnlEnv struct {
	db      *gorm.DB
	service *PnLService
	prices  *stubPrices
	user    *models.User
	pair    *models.TradingPair
	clock   time.Time
}

func newPnLEnv(t *testing.T) *pnlEnv {
	t.Helper()

	db := setupDB(t)
	prices := &stubPrices{prices: map[string]decimal.Decimal{}}
	svc := NewPnLService(
		repository.NewOrderRepository(db),
		repository.NewPositionRepository(db),
		prices,
		zap.NewNop(),
	)

	env := &pnlEnv{
		db:      db,
		service: svc,
		prices:  prices,
		user:    createUser(t, db, "reporter"),
		pair:    createPair(t, db, "BTCUSDT", "BTC", "USDT"),
		clock:   time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return env.clock }
	return env
}

func (e *pnlEnv) filledOrder(t *testing.T, pair *models.TradingPair, side models.OrderSide, price, amount string, filledAt time.Time) {
	t.Helper()

	order := &models.Order{
		UserID:        e.user.ID,
		TradingPairID: pair.ID,
		ClientOrderID: string(side) + filledAt.Format(time.RFC3339Nano),
		Type:          models.OrderTypeMarket,
		Side:          side,
		Status:        models.OrderStatusFilled,
		Amount:        decimal.RequireFromString(amount),
		FilledAmount:  decimal.RequireFromString(amount),
		FilledPrice:   decimal.NewNullDecimal(decimal.RequireFromString(price)),
		IsPaperTrade:  true,
		FilledAt:      &filledAt,
	}
	require.NoError(t, e.db.Create(order).Error)
}

func TestGetReport_MatchesSellToMostRecentBuy(t *testing.T) {
	env := newPnLEnv(t)
	base := env.clock.Add(-2 * time.Hour)

	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", base)
	env.filledOrder(t, env.pair, models.OrderSideBuy, "110", "1", base.Add(10*time.Minute))
	env.filledOrder(t, env.pair, models.OrderSideSell, "120", "1", base.Add(20*time.Minute))

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodAll, time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalTrades)
	// The sell pairs with the 110 buy, not the earlier 100 one.
	assert.True(t, report.RealizedPnL.Equal(decimal.NewFromInt(10)), "pnl = %s", report.RealizedPnL)
	assert.Equal(t, 1, report.Wins)
	assert.Equal(t, 0, report.Losses)
	assert.True(t, report.WinRate.Equal(decimal.NewFromInt(100)))
}

func TestGetReport_WinRateAndBestWorst(t *testing.T) {
	env := newPnLEnv(t)
	base := env.clock.Add(-3 * time.Hour)

	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", base)
	env.filledOrder(t, env.pair, models.OrderSideSell, "130", "1", base.Add(5*time.Minute))
	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", base.Add(10*time.Minute))
	env.filledOrder(t, env.pair, models.OrderSideSell, "90", "1", base.Add(15*time.Minute))

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodAll, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalTrades)
	assert.Equal(t, 1, report.Wins)
	assert.Equal(t, 1, report.Losses)
	assert.True(t, report.WinRate.Equal(decimal.NewFromInt(50)), "win rate = %s", report.WinRate)
	assert.True(t, report.RealizedPnL.Equal(decimal.NewFromInt(20)))

	require.NotNil(t, report.BestTrade)
	require.NotNil(t, report.WorstTrade)
	assert.True(t, report.BestTrade.PnL.Equal(decimal.NewFromInt(30)))
	assert.True(t, report.WorstTrade.PnL.Equal(decimal.NewFromInt(-10)))
}

func TestGetReport_SumsBuyAndSellVolume(t *testing.T) {
	env := newPnLEnv(t)
	base := env.clock.Add(-2 * time.Hour)

	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "2", base)
	env.filledOrder(t, env.pair, models.OrderSideSell, "110", "1", base.Add(5*time.Minute))
	// A buy with no matching sell still counts toward volume.
	env.filledOrder(t, env.pair, models.OrderSideBuy, "120", "0.5", base.Add(10*time.Minute))

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodAll, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.True(t, report.TotalBuyVolume.Equal(decimal.NewFromInt(260)), "buy volume = %s", report.TotalBuyVolume)
	assert.True(t, report.TotalSellVolume.Equal(decimal.NewFromInt(110)), "sell volume = %s", report.TotalSellVolume)
	assert.True(t, report.TotalVolume.Equal(decimal.NewFromInt(370)), "total volume = %s", report.TotalVolume)
}

func TestGetReport_MonthStartsAtFirstOfMonth(t *testing.T) {
	env := newPnLEnv(t)
	env.clock = time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	july := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", july)
	env.filledOrder(t, env.pair, models.OrderSideSell, "150", "1", july.Add(time.Minute))

	august := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", august)
	env.filledOrder(t, env.pair, models.OrderSideSell, "110", "1", august.Add(time.Minute))

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodMonth, time.Time{}, time.Time{})
	require.NoError(t, err)

	// Only the trade closed inside the current calendar month counts.
	assert.Equal(t, 1, report.TotalTrades)
	assert.True(t, report.RealizedPnL.Equal(decimal.NewFromInt(10)), "pnl = %s", report.RealizedPnL)
}

func TestGetReport_SellWithoutPriorBuySkipped(t *testing.T) {
	env := newPnLEnv(t)

	env.filledOrder(t, env.pair, models.OrderSideSell, "120", "1", env.clock.Add(-time.Hour))

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodAll, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, report.TotalTrades)
	assert.True(t, report.RealizedPnL.IsZero())
}

func TestGetReport_TodayExcludesOlderTrades(t *testing.T) {
	env := newPnLEnv(t)

	yesterday := env.clock.AddDate(0, 0, -1)
	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", yesterday)
	env.filledOrder(t, env.pair, models.OrderSideSell, "150", "1", yesterday.Add(time.Minute))

	today := env.clock.Add(-time.Hour)
	env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", today)
	env.filledOrder(t, env.pair, models.OrderSideSell, "110", "1", today.Add(time.Minute))

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodToday, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalTrades)
	assert.True(t, report.RealizedPnL.Equal(decimal.NewFromInt(10)))
}

func TestGetReport_CustomPeriodRequiresBounds(t *testing.T) {
	env := newPnLEnv(t)

	_, err := env.service.GetReport(context.Background(), env.user.ID, PeriodCustom, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = env.service.GetReport(context.Background(), env.user.ID, "fortnight", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestGetReport_IncludesUnrealizedPnL(t *testing.T) {
	env := newPnLEnv(t)

	position := &models.Position{
		UserID:          env.user.ID,
		TradingPairID:   env.pair.ID,
		Amount:          decimal.NewFromInt(2),
		AverageBuyPrice: decimal.NewFromInt(100),
		TotalInvested:   decimal.NewFromInt(200),
	}
	require.NoError(t, env.db.Create(position).Error)
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(120)

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodAll, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.True(t, report.UnrealizedPnL.Equal(decimal.NewFromInt(40)), "unrealized = %s", report.UnrealizedPnL)
}

func TestGetReport_RecentTradesNewestFirstCapped(t *testing.T) {
	env := newPnLEnv(t)
	base := env.clock.Add(-24 * time.Hour)

	for i := 0; i < 25; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		env.filledOrder(t, env.pair, models.OrderSideBuy, "100", "1", at)
		env.filledOrder(t, env.pair, models.OrderSideSell, "101", "1", at.Add(30*time.Second))
	}

	report, err := env.service.GetReport(context.Background(), env.user.ID, PeriodAll, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 25, report.TotalTrades)
	require.Len(t, report.RecentTrades, 20)
	assert.True(t, report.RecentTrades[0].ClosedAt.After(report.RecentTrades[19].ClosedAt))
}
