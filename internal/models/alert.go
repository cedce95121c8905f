package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertCondition represents the price comparison direction
type AlertCondition string

const (
	AlertConditionAbove AlertCondition = "above"
	AlertConditionBelow AlertCondition = "below"
)

// PriceAlert fires once when its condition holds and is never re-armed
// automatically.
type PriceAlert struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	UserID        uint `gorm:"index;not null" json:"user_id"`
	TradingPairID uint `gorm:"index;not null" json:"trading_pair_id"`

	Condition   AlertCondition  `gorm:"size:10;not null" json:"condition"`
	TargetPrice decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"target_price"`

	IsActive    bool       `gorm:"default:true" json:"is_active"`
	Triggered   bool       `gorm:"default:false" json:"triggered"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	TradingPair TradingPair `gorm:"foreignKey:TradingPairID" json:"trading_pair,omitempty"`
}

// TableName specifies the table name for PriceAlert model
func (PriceAlert) TableName() string {
	return "price_alerts"
}

// ShouldTrigger reports whether the alert condition holds at the given price.
func (a *PriceAlert) ShouldTrigger(price decimal.Decimal) bool {
	switch a.Condition {
	case AlertConditionAbove:
		return price.GreaterThanOrEqual(a.TargetPrice)
	case AlertConditionBelow:
		return price.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}
