package worker

import (
	"context"
	"testing"
	"time"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/internal/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type workerPrices struct {
	prices map[string]decimal.Decimal
}

func (s *workerPrices) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := s.prices[symbol]
	if !ok {
		return decimal.Zero, service.ErrUnpriceableAsset
	}
	return price, nil
}

type workerEnv struct {
	db           *gorm.DB
	worker       *StrategyWorker
	prices       *workerPrices
	strategyRepo *repository.StrategyRepository
	user         *models.User
	now          time.Time
}

func setupWorker(t *testing.T) *workerEnv {
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

	user := &models.User{Username: "runner", Email: "runner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	settingsRepo := repository.NewSettingsRepository(db)
	require.NoError(t, settingsRepo.EnsureExists(user.ID))

	prices := &workerPrices{prices: map[string]decimal.Decimal{}}
	trader := service.NewPaperTradingService(
		db, settingsRepo,
		repository.NewPairRepository(db),
		repository.NewPositionRepository(db),
		repository.NewOrderRepository(db),
		repository.NewTradeRepository(db),
		prices, zap.NewNop(),
	)

	strategy.RegisterDefaults()
	strategyRepo := repository.NewStrategyRepository(db)
	w := NewStrategyWorker(strategyRepo, &strategy.Env{
		Trader:    trader,
		Prices:    prices,
		Positions: repository.NewPositionRepository(db),
		Logger:    zap.NewNop(),
	}, time.Minute, zap.NewNop())

	env := &workerEnv{
		db:           db,
		worker:       w,
		prices:       prices,
		strategyRepo: strategyRepo,
		user:         user,
		now:          time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	w.now = func() time.Time { return env.now }
	return env
}

func (e *workerEnv) pair(t *testing.T, symbol string) *models.TradingPair {
	t.Helper()
	pair := &models.TradingPair{Symbol: symbol, BaseAsset: symbol[:3], QuoteAsset: "USDT", IsActive: true}
	require.NoError(t, e.db.Create(pair).Error)
	return pair
}

func (e *workerEnv) dcaStrategy(t *testing.T, pair *models.TradingPair, amount string) *models.TradingStrategy {
	t.Helper()
	st := &models.TradingStrategy{
		UserID:               e.user.ID,
		TradingPairID:        pair.ID,
		Name:                 "dca " + pair.Symbol,
		Type:                 models.StrategyTypeDCA,
		IsActive:             true,
		Amount:               decimal.RequireFromString(amount),
		StopLossPercentage:   decimal.NewFromInt(1),
		TakeProfitPercentage: decimal.NewFromInt(2),
		ExecutionInterval:    models.Interval1H,
	}
	require.NoError(t, e.db.Create(st).Error)
	return st
}

func TestRunDueStrategies_ExecutesDCABuy(t *testing.T) {
	env := setupWorker(t)
	pair := env.pair(t, "BTCUSDT")
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(100)
	st := env.dcaStrategy(t, pair, "1")

	executed, err := env.worker.RunDueStrategies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, executed)

	var position models.Position
	require.NoError(t, env.db.Where("user_id = ? AND trading_pair_id = ?", env.user.ID, pair.ID).First(&position).Error)
	assert.True(t, position.Amount.Equal(decimal.NewFromInt(1)))

	updated, err := env.strategyRepo.GetByID(st.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalExecutions)
	require.NotNil(t, updated.NextExecutionAt)
	assert.Equal(t, env.now.Add(time.Hour), updated.NextExecutionAt.UTC())
	require.NotNil(t, updated.LastExecutedAt)
}

func TestRunDueStrategies_SkipsInactiveAndNotYetDue(t *testing.T) {
	env := setupWorker(t)
	pair := env.pair(t, "BTCUSDT")
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(100)

	inactive := env.dcaStrategy(t, pair, "1")
	inactive.IsActive = false
	require.NoError(t, env.db.Save(inactive).Error)

	future := env.dcaStrategy(t, pair, "1")
	later := env.now.Add(30 * time.Minute)
	future.NextExecutionAt = &later
	require.NoError(t, env.db.Save(future).Error)

	executed, err := env.worker.RunDueStrategies(context.Background())
	require.NoError(t, err)
	assert.Zero(t, executed)
}

func TestRunDueStrategies_FailureIsolation(t *testing.T) {
	env := setupWorker(t)
	good1 := env.pair(t, "BTCUSDT")
	bad := env.pair(t, "BADUSDT")
	good2 := env.pair(t, "ETHUSDT")
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(100)
	env.prices.prices["ETHUSDT"] = decimal.NewFromInt(50)

	stGood1 := env.dcaStrategy(t, good1, "1")
	stBad := env.dcaStrategy(t, bad, "1")
	stGood2 := env.dcaStrategy(t, good2, "1")

	executed, err := env.worker.RunDueStrategies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, executed, "count includes failed attempts")

	// The failing strategy must not block the others.
	for _, pair := range []*models.TradingPair{good1, good2} {
		var position models.Position
		require.NoError(t, env.db.Where("trading_pair_id = ?", pair.ID).First(&position).Error)
		assert.True(t, position.Amount.IsPositive())
	}

	// All three are rescheduled and counted, failure or not.
	for _, id := range []uint{stGood1.ID, stBad.ID, stGood2.ID} {
		st, err := env.strategyRepo.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, 1, st.TotalExecutions)
		require.NotNil(t, st.NextExecutionAt)
	}
}

func TestRunDueStrategies_IntervalCadence(t *testing.T) {
	env := setupWorker(t)
	pair := env.pair(t, "BTCUSDT")
	env.prices.prices["BTCUSDT"] = decimal.NewFromInt(100)

	st := env.dcaStrategy(t, pair, "1")
	st.ExecutionInterval = models.Interval15Min
	require.NoError(t, env.db.Save(st).Error)

	_, err := env.worker.RunDueStrategies(context.Background())
	require.NoError(t, err)

	updated, err := env.strategyRepo.GetByID(st.ID)
	require.NoError(t, err)
	assert.Equal(t, env.now.Add(15*time.Minute), updated.NextExecutionAt.UTC())

	// Not due again until the interval elapses.
	executed, err := env.worker.RunDueStrategies(context.Background())
	require.NoError(t, err)
	assert.Zero(t, executed)

	env.now = env.now.Add(16 * time.Minute)
	executed, err = env.worker.RunDueStrategies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
}
