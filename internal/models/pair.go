package models

import (
	"time"
)

// TradingPair represents a tradable market (e.g. BTCUSDT or the XAUUSD
// commodity pair). Reference data, immutable after seeding.
type TradingPair struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Symbol     string    `gorm:"uniqueIndex;size:20;not null" json:"symbol"`
	BaseAsset  string    `gorm:"size:10;not null" json:"base_asset"`
	QuoteAsset string    `gorm:"size:10;not null" json:"quote_asset"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for TradingPair model
func (TradingPair) TableName() string {
	return "trading_pairs"
}
