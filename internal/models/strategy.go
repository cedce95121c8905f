package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StrategyType identifies the automation logic attached to a strategy.
type StrategyType string

const (
	StrategyTypeManual   StrategyType = "manual"
	StrategyTypeDCA      StrategyType = "dca"
	StrategyTypeGrid     StrategyType = "grid"
	StrategyTypeScalping StrategyType = "scalping"
	StrategyTypeCustom   StrategyType = "custom"
)

// ExecutionInterval is the fixed cadence between strategy executions.
type ExecutionInterval string

const (
	Interval15Min ExecutionInterval = "15min"
	Interval30Min ExecutionInterval = "30min"
	Interval1H    ExecutionInterval = "1h"
	Interval4H    ExecutionInterval = "4h"
	Interval1D    ExecutionInterval = "1d"
)

// Duration maps the interval to a time.Duration. Unrecognized values
// default to one hour.
func (i ExecutionInterval) Duration() time.Duration {
	switch i {
	case Interval15Min:
		return 15 * time.Minute
	case Interval30Min:
		return 30 * time.Minute
	case Interval1H:
		return time.Hour
	case Interval4H:
		return 4 * time.Hour
	case Interval1D:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// TradingStrategy is a user-owned automation config. The scheduler owns
// the execution bookkeeping fields (LastExecutedAt, NextExecutionAt,
// TotalExecutions).
type TradingStrategy struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"index;not null" json:"user_id"`
	TradingPairID uint   `gorm:"index;not null" json:"trading_pair_id"`
	Name          string `gorm:"size:100;not null" json:"name"`

	Type     StrategyType `gorm:"size:20;not null;default:'manual'" json:"type"`
	IsActive bool         `gorm:"default:false" json:"is_active"`

	// Strategy parameters. BuyPrice/SellPrice drive the manual
	// threshold executor; Amount is the per-execution trade size.
	BuyPrice             decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"buy_price"`
	SellPrice            decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"sell_price"`
	Amount               decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"amount"`
	StopLossPercentage   decimal.Decimal     `gorm:"type:decimal(5,2);default:1" json:"stop_loss_percentage"`
	TakeProfitPercentage decimal.Decimal     `gorm:"type:decimal(5,2);default:2" json:"take_profit_percentage"`

	ExecutionInterval ExecutionInterval `gorm:"size:10;default:'1h'" json:"execution_interval"`
	LastExecutedAt    *time.Time        `json:"last_executed_at,omitempty"`
	NextExecutionAt   *time.Time        `gorm:"index" json:"next_execution_at,omitempty"`
	TotalExecutions   int               `gorm:"default:0" json:"total_executions"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	TradingPair TradingPair `gorm:"foreignKey:TradingPairID" json:"trading_pair,omitempty"`
}

// TableName specifies the table name for TradingStrategy model
func (TradingStrategy) TableName() string {
	return "trading_strategies"
}

// IsDue reports whether the strategy should execute at the given time.
// A nil NextExecutionAt means due immediately.
func (s *TradingStrategy) IsDue(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	return s.NextExecutionAt == nil || !s.NextExecutionAt.After(now)
}
