package database

import (
	"time"

	"github.com/paper-trader/internal/config"
	"github.com/paper-trader/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Init opens the PostgreSQL connection and configures the pool
func Init(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// AutoMigrate creates or updates all application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.TradingPair{},
		&models.Position{},
		&models.Order{},
		&models.TradeHistory{},
		&models.TradingStrategy{},
		&models.PriceAlert{},
	)
}

type seedPair struct {
	Symbol string
	Base   string
	Quote  string
}

var defaultPairs = []seedPair{
	{"BTCUSDT", "BTC", "USDT"},
	{"ETHUSDT", "ETH", "USDT"},
	{"BNBUSDT", "BNB", "USDT"},
	{"SOLUSDT", "SOL", "USDT"},
	{"XRPUSDT", "XRP", "USDT"},
	{"ADAUSDT", "ADA", "USDT"},
	{"DOGEUSDT", "DOGE", "USDT"},
	{"AVAXUSDT", "AVAX", "USDT"},
	{"DOTUSDT", "DOT", "USDT"},
	{"MATICUSDT", "MATIC", "USDT"},
	{"LINKUSDT", "LINK", "USDT"},
	{"LTCUSDT", "LTC", "USDT"},
	{"ATOMUSDT", "ATOM", "USDT"},
	{"UNIUSDT", "UNI", "USDT"},
	{"XLMUSDT", "XLM", "USDT"},
	{"NEARUSDT", "NEAR", "USDT"},
	{"APTUSDT", "APT", "USDT"},
	{"ARBUSDT", "ARB", "USDT"},
	{"OPUSDT", "OP", "USDT"},
	{"FILUSDT", "FIL", "USDT"},
	{"TRXUSDT", "TRX", "USDT"},
	{"SHIBUSDT", "SHIB", "USDT"},
	{"PEPEUSDT", "PEPE", "USDT"},
	{"SUIUSDT", "SUI", "USDT"},
	{"INJUSDT", "INJ", "USDT"},
	// Commodities quoted against USD
	{"XAUUSD", "XAU", "USD"},
	{"XAGUSD", "XAG", "USD"},
	{"XTIUSD", "XTI", "USD"},
}

// SeedTradingPairs inserts the default pair universe, skipping symbols
// that already exist.
func SeedTradingPairs(db *gorm.DB) error {
	pairs := make([]models.TradingPair, 0, len(defaultPairs))
	for _, p := range defaultPairs {
		pairs = append(pairs, models.TradingPair{
			Symbol:     p.Symbol,
			BaseAsset:  p.Base,
			QuoteAsset: p.Quote,
			IsActive:   true,
		})
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(&pairs).Error
}
