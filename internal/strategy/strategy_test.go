package strategy

import (
	"context"
	"testing"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testPrices struct {
	prices map[string]decimal.Decimal
}

func (s *testPrices) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := s.prices[symbol]
	if !ok {
		return decimal.Zero, service.ErrUnpriceableAsset
	}
	return price, nil
}

type strategyEnv struct {
	db     *gorm.DB
	env    *Env
	prices *testPrices
	user   *models.User
	pair   *models.TradingPair
}

func setupStrategy(t *testing.T) *strategyEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.UserSettings{}, &models.TradingPair{},
		&models.Position{}, &models.Order{}, &models.TradeHistory{},
		&models.TradingStrategy{},
	))

	user := &models.User{Username: "strat", Email: "strat@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	settingsRepo := repository.NewSettingsRepository(db)
	require.NoError(t, settingsRepo.EnsureExists(user.ID))

	pair := &models.TradingPair{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT", IsActive: true}
	require.NoError(t, db.Create(pair).Error)

	prices := &testPrices{prices: map[string]decimal.Decimal{}}
	positionRepo := repository.NewPositionRepository(db)
	trader := service.NewPaperTradingService(
		db, settingsRepo,
		repository.NewPairRepository(db),
		positionRepo,
		repository.NewOrderRepository(db),
		repository.NewTradeRepository(db),
		prices, zap.NewNop(),
	)

	return &strategyEnv{
		db: db,
		env: &Env{
			Trader:    trader,
			Prices:    prices,
			Positions: positionRepo,
			Logger:    zap.NewNop(),
		},
		prices: prices,
		user:   user,
		pair:   pair,
	}
}

func (e *strategyEnv) strategy(st models.TradingStrategy) *models.TradingStrategy {
	st.UserID = e.user.ID
	st.TradingPairID = e.pair.ID
	st.TradingPair = *e.pair
	if st.StopLossPercentage.IsZero() {
		st.StopLossPercentage = decimal.NewFromInt(1)
	}
	if st.TakeProfitPercentage.IsZero() {
		st.TakeProfitPercentage = decimal.NewFromInt(2)
	}
	return &st
}

func (e *strategyEnv) openPosition(t *testing.T, amount, avgPrice string) {
	t.Helper()
	amt := decimal.RequireFromString(amount)
	avg := decimal.RequireFromString(avgPrice)
	require.NoError(t, e.db.Create(&models.Position{
		UserID:          e.user.ID,
		TradingPairID:   e.pair.ID,
		Amount:          amt,
		AverageBuyPrice: avg,
		TotalInvested:   amt.Mul(avg),
	}).Error)
}

func (e *strategyEnv) positionAmount(t *testing.T) decimal.Decimal {
	t.Helper()
	var position models.Position
	require.NoError(t, e.db.Where("user_id = ?", e.user.ID).First(&position).Error)
	return position.Amount
}

func TestCheckStopLossTakeProfit_StopLossLiquidates(t *testing.T) {
	env := setupStrategy(t)
	env.openPosition(t, "1", "100")
	env.prices.prices["BTCUSDT"] = decimal.RequireFromString("98.9")

	st := env.strategy(models.TradingStrategy{Name: "sl", Type: models.StrategyTypeDCA})
	require.NoError(t, env.db.Create(st).Error)
	require.NoError(t, CheckStopLossTakeProfit(context.Background(), env.env, st))

	assert.True(t, env.positionAmount(t).IsZero(), "position must be fully liquidated")

	var order models.Order
	require.NoError(t, env.db.Where("side = ?", models.OrderSideSell).First(&order).Error)
	assert.Equal(t, models.OrderTypeStopLoss, order.Type)
	require.NotNil(t, order.StrategyID)
	assert.Equal(t, st.ID, *order.StrategyID)
}

func TestCheckStopLossTakeProfit_TakeProfitLiquidates(t *testing.T) {
	env := setupStrategy(t)
	env.openPosition(t, "1", "100")
	env.prices.prices["BTCUSDT"] = decimal.RequireFromString("102.5")

	st := env.strategy(models.TradingStrategy{Name: "tp", Type: models.StrategyTypeDCA})
	require.NoError(t, env.db.Create(st).Error)
	require.NoError(t, CheckStopLossTakeProfit(context.Background(), env.env, st))

	assert.True(t, env.positionAmount(t).IsZero())

	var order models.Order
	require.NoError(t, env.db.Where("side = ?", models.OrderSideSell).First(&order).Error)
	assert.Equal(t, models.OrderTypeTakeProfit, order.Type)
}

func TestCheckStopLossTakeProfit_InsideBandHolds(t *testing.T) {
	env := setupStrategy(t)
	env.openPosition(t, "1", "100")
	env.prices.prices["BTCUSDT"] = decimal.RequireFromString("100.5")

	st := env.strategy(models.TradingStrategy{Name: "hold", Type: models.StrategyTypeDCA})
	require.NoError(t, CheckStopLossTakeProfit(context.Background(), env.env, st))

	assert.True(t, env.positionAmount(t).Equal(decimal.NewFromInt(1)))
}

func TestCheckStopLossTakeProfit_NoPositionNoOp(t *testing.T) {
	env := setupStrategy(t)
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(50)

	st := env.strategy(models.TradingStrategy{Name: "empty", Type: models.StrategyTypeDCA})
	require.NoError(t, CheckStopLossTakeProfit(context.Background(), env.env, st))
}

func TestCheckStopLossTakeProfit_UnpriceableNoOp(t *testing.T) {
	env := setupStrategy(t)
	env.openPosition(t, "1", "100")
	// No price registered for the symbol.

	st := env.strategy(models.TradingStrategy{Name: "nopx", Type: models.StrategyTypeDCA})
	require.NoError(t, CheckStopLossTakeProfit(context.Background(), env.env, st))
	assert.True(t, env.positionAmount(t).Equal(decimal.NewFromInt(1)), "position untouched")
}

func TestManualExecutor_BuyLevel(t *testing.T) {
	env := setupStrategy(t)
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(95)

	st := env.strategy(models.TradingStrategy{
		Name:     "manual-buy",
		Type:     models.StrategyTypeManual,
		Amount:   decimal.NewFromInt(1),
		BuyPrice: decimal.NewNullDecimal(decimal.NewFromInt(96)),
	})
	require.NoError(t, env.db.Create(st).Error)

	exec := &ManualExecutor{}
	require.NoError(t, exec.Execute(context.Background(), env.env, st))

	assert.True(t, env.positionAmount(t).Equal(decimal.NewFromInt(1)))
}

func TestManualExecutor_SellLevelCappedByPosition(t *testing.T) {
	env := setupStrategy(t)
	env.openPosition(t, "0.5", "90")
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(105)

	st := env.strategy(models.TradingStrategy{
		Name:      "manual-sell",
		Type:      models.StrategyTypeManual,
		Amount:    decimal.NewFromInt(2),
		SellPrice: decimal.NewNullDecimal(decimal.NewFromInt(100)),
		// Wide protective band so only the sell level fires.
		StopLossPercentage:   decimal.NewFromInt(50),
		TakeProfitPercentage: decimal.NewFromInt(50),
	})
	require.NoError(t, env.db.Create(st).Error)

	exec := &ManualExecutor{}
	require.NoError(t, exec.Execute(context.Background(), env.env, st))

	assert.True(t, env.positionAmount(t).IsZero(), "sells the held amount, not the configured amount")
}

func TestManualExecutor_NoLevelHitNoTrade(t *testing.T) {
	env := setupStrategy(t)
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(100)

	st := env.strategy(models.TradingStrategy{
		Name:      "manual-idle",
		Type:      models.StrategyTypeManual,
		Amount:    decimal.NewFromInt(1),
		BuyPrice:  decimal.NewNullDecimal(decimal.NewFromInt(90)),
		SellPrice: decimal.NewNullDecimal(decimal.NewFromInt(110)),
	})
	require.NoError(t, env.db.Create(st).Error)

	exec := &ManualExecutor{}
	require.NoError(t, exec.Execute(context.Background(), env.env, st))

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegistry(t *testing.T) {
	RegisterDefaults()

	for _, typ := range []models.StrategyType{
		models.StrategyTypeManual,
		models.StrategyTypeDCA,
		models.StrategyTypeGrid,
		models.StrategyTypeScalping,
	} {
		exec, err := Get(typ)
		require.NoError(t, err, "type %s", typ)
		assert.Equal(t, typ, exec.Type())
	}

	_, err := Get(models.StrategyTypeCustom)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
