package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeHistory is the append-only execution record derived from a filled
// order. ProfitLoss is set only on sells (realized P&L of the fill).
type TradeHistory struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	UserID        uint `gorm:"index;not null" json:"user_id"`
	OrderID       uint `gorm:"index;not null" json:"order_id"`
	TradingPairID uint `gorm:"index;not null" json:"trading_pair_id"`

	Side       OrderSide           `gorm:"size:10;not null" json:"side"`
	Price      decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"price"`
	Amount     decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"amount"`
	Total      decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"total"`
	Fee        decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"fee"`
	ProfitLoss decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"profit_loss"`

	ExecutedAt time.Time `gorm:"index" json:"executed_at"`

	// Relations
	Order       Order       `gorm:"foreignKey:OrderID" json:"-"`
	TradingPair TradingPair `gorm:"foreignKey:TradingPairID" json:"trading_pair,omitempty"`
}

// TableName specifies the table name for TradeHistory model
func (TradeHistory) TableName() string {
	return "trade_histories"
}
