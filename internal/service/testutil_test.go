package service

import (
	"context"
	"testing"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubPrices is a fixed price table for tests
type stubPrices struct {
	prices map[string]decimal.Decimal
	err    error
}

func (s *stubPrices) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	price, ok := s.prices[symbol]
	if !ok {
		return decimal.Zero, ErrUnpriceableAsset
	}
	return price, nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A new non-shared in-memory database per test keeps tests isolated.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.TradingPair{},
		&models.Position{},
		&models.Order{},
		&models.TradeHistory{},
		&models.TradingStrategy{},
		&models.PriceAlert{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, repository.NewSettingsRepository(db).EnsureExists(user.ID))
	return user
}

func createPair(t *testing.T, db *gorm.DB, symbol, base, quote string) *models.TradingPair {
	t.Helper()

	pair := &models.TradingPair{
		Symbol:     symbol,
		BaseAsset:  base,
		QuoteAsset: quote,
		IsActive:   true,
	}
	require.NoError(t, db.Create(pair).Error)
	return pair
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
