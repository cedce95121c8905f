package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderType represents the order type
type OrderType string

const (
	OrderTypeMarket     OrderType = "market"
	OrderTypeLimit      OrderType = "limit"
	OrderTypeStopLoss   OrderType = "stop_loss"
	OrderTypeTakeProfit OrderType = "take_profit"
)

// OrderSide represents the order side
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the order status. Filled is terminal; pending
// orders may move to filled, cancelled, or failed.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order represents a trading order. Paper orders are created already
// filled: simulated execution is synchronous, so filled price, filled
// amount, and the filled timestamp are set at creation time.
type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"index;not null" json:"user_id"`
	StrategyID    *uint  `gorm:"index" json:"strategy_id,omitempty"`
	TradingPairID uint   `gorm:"index;not null" json:"trading_pair_id"`
	ClientOrderID string `gorm:"size:50;index" json:"client_order_id"`

	Type   OrderType   `gorm:"size:20;not null" json:"type"`
	Side   OrderSide   `gorm:"size:10;not null" json:"side"`
	Status OrderStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	Price        decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"price"` // limit price, nil for market
	Amount       decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"amount"`
	FilledAmount decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"filled_amount"`
	FilledPrice  decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"filled_price"`

	IsPaperTrade    bool    `gorm:"default:true" json:"is_paper_trade"`
	ExchangeOrderID *string `gorm:"size:100" json:"exchange_order_id,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	FilledAt  *time.Time     `json:"filled_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	TradingPair TradingPair      `gorm:"foreignKey:TradingPairID" json:"trading_pair,omitempty"`
	Strategy    *TradingStrategy `gorm:"foreignKey:StrategyID" json:"-"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// IsPending returns true if the order has not reached a terminal status.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}
