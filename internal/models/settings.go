package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaperBalance is the virtual USDT balance granted to every new account.
var DefaultPaperBalance = decimal.RequireFromString("10000.00000000")

// UserSettings holds per-user trading preferences and the paper balance.
// One row per user, provisioned at registration. The paper balance is
// mutated only by the paper trading service under the per-user trade lock.
type UserSettings struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	// Exchange API credentials, AES-encrypted at rest. Opaque to the
	// trading core; only the non-paper order routing path reads them.
	ExchangeAPIKeyEncrypted    string `gorm:"size:255" json:"-"`
	ExchangeAPISecretEncrypted string `gorm:"size:255" json:"-"`
	UseTestnet                 bool   `gorm:"default:true" json:"use_testnet"`

	PaperTradingMode bool            `gorm:"default:true" json:"paper_trading_mode"`
	PaperBalanceUSDT decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"paper_balance_usdt"`

	AutoTradingEnabled bool            `gorm:"default:false" json:"auto_trading_enabled"`
	DefaultTradeAmount decimal.Decimal `gorm:"type:decimal(20,8);default:0" json:"default_trade_amount"`
	RiskPercentage     decimal.Decimal `gorm:"type:decimal(5,2);default:1" json:"risk_percentage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for UserSettings model
func (UserSettings) TableName() string {
	return "user_settings"
}
