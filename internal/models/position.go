package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a user's virtual holding for one trading pair.
// Created lazily on first buy and never physically deleted; a fully sold
// position keeps its row with amount, average buy price, and invested
// total all reset to zero.
type Position struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	UserID        uint `gorm:"uniqueIndex:idx_positions_user_pair;not null" json:"user_id"`
	TradingPairID uint `gorm:"uniqueIndex:idx_positions_user_pair;not null" json:"trading_pair_id"`

	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	AverageBuyPrice decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"average_buy_price"`
	TotalInvested   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total_invested"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	TradingPair TradingPair `gorm:"foreignKey:TradingPairID" json:"trading_pair,omitempty"`
}

// TableName specifies the table name for Position model
func (Position) TableName() string {
	return "positions"
}

// IsOpen reports whether the position currently holds any amount.
func (p *Position) IsOpen() bool {
	return p.Amount.IsPositive()
}

// UnrealizedPnL returns the mark-to-market gain or loss against the
// invested total at the given price.
func (p *Position) UnrealizedPnL(markPrice decimal.Decimal) decimal.Decimal {
	return p.Amount.Mul(markPrice).Sub(p.TotalInvested)
}
