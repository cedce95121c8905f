package service

import (
	"context"
	"errors"
	"time"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidPeriod = errors.New("invalid report period")
)

// ReportPeriod selects the time window of a profit and loss report
type ReportPeriod string

const (
	PeriodAll    ReportPeriod = "all"
	PeriodToday  ReportPeriod = "today"
	PeriodWeek   ReportPeriod = "week"
	PeriodMonth  ReportPeriod = "month"
	PeriodCustom ReportPeriod = "custom"
)

// PnLService computes realized and unrealized profit and loss reports
// from filled order history.
type PnLService struct {
	orderRepo    *repository.OrderRepository
	positionRepo *repository.PositionRepository
	prices       PriceResolver
	logger       *zap.Logger
	now          func() time.Time
}

// NewPnLService creates a new PnLService
func NewPnLService(
	orderRepo *repository.OrderRepository,
	positionRepo *repository.PositionRepository,
	prices PriceResolver,
	logger *zap.Logger,
) *PnLService {
	return &PnLService{
		orderRepo:    orderRepo,
		positionRepo: positionRepo,
		prices:       prices,
		logger:       logger,
		now:          time.Now,
	}
}

// ClosedTrade is a sell matched against its preceding buy
type ClosedTrade struct {
	Symbol     string          `json:"symbol"`
	BuyPrice   decimal.Decimal `json:"buy_price"`
	SellPrice  decimal.Decimal `json:"sell_price"`
	Amount     decimal.Decimal `json:"amount"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPercent decimal.Decimal `json:"pnl_percent"`
	ClosedAt   time.Time       `json:"closed_at"`
}

// PnLReport summarizes trading performance over a period
type PnLReport struct {
	Period          ReportPeriod    `json:"period"`
	TotalTrades     int             `json:"total_trades"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRate         decimal.Decimal `json:"win_rate"`
	RealizedPnL     decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL   decimal.Decimal `json:"unrealized_pnl"`
	TotalBuyVolume  decimal.Decimal `json:"total_buy_volume"`
	TotalSellVolume decimal.Decimal `json:"total_sell_volume"`
	TotalVolume     decimal.Decimal `json:"total_volume"`
	BestTrade     *ClosedTrade    `json:"best_trade,omitempty"`
	WorstTrade    *ClosedTrade    `json:"worst_trade,omitempty"`
	RecentTrades  []ClosedTrade   `json:"recent_trades"`
}

const recentTradeLimit = 20

// GetReport builds the profit and loss report for a user. For custom
// periods both bounds must be supplied.
func (s *PnLService) GetReport(ctx context.Context, userID uint, period ReportPeriod, from, to time.Time) (*PnLReport, error) {
	windowFrom, windowTo, err := s.window(period, from, to)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.GetFilledByUserBetween(userID, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}

	closed := matchClosedTrades(orders)

	report := &PnLReport{
		Period:       period,
		TotalTrades:  len(closed),
		RecentTrades: recentTrades(closed),
	}
	for i := range orders {
		order := &orders[i]
		value := order.FilledPrice.Decimal.Mul(order.FilledAmount)
		switch order.Side {
		case models.OrderSideBuy:
			report.TotalBuyVolume = report.TotalBuyVolume.Add(value)
		case models.OrderSideSell:
			report.TotalSellVolume = report.TotalSellVolume.Add(value)
		}
	}
	report.TotalVolume = report.TotalBuyVolume.Add(report.TotalSellVolume)
	for i := range closed {
		t := &closed[i]
		report.RealizedPnL = report.RealizedPnL.Add(t.PnL)
		if t.PnL.IsPositive() {
			report.Wins++
		} else {
			report.Losses++
		}
		if report.BestTrade == nil || t.PnL.GreaterThan(report.BestTrade.PnL) {
			report.BestTrade = t
		}
		if report.WorstTrade == nil || t.PnL.LessThan(report.WorstTrade.PnL) {
			report.WorstTrade = t
		}
	}
	if report.Wins+report.Losses > 0 {
		report.WinRate = decimal.NewFromInt(int64(report.Wins)).
			Div(decimal.NewFromInt(int64(report.Wins + report.Losses))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	unrealized, err := s.unrealizedPnL(ctx, userID)
	if err != nil {
		return nil, err
	}
	report.UnrealizedPnL = unrealized

	return report, nil
}

func (s *PnLService) window(period ReportPeriod, from, to time.Time) (time.Time, time.Time, error) {
	now := s.now()
	switch period {
	case PeriodAll, "":
		return time.Time{}, time.Time{}, nil
	case PeriodToday:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return midnight, time.Time{}, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), time.Time{}, nil
	case PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, time.Time{}, nil
	case PeriodCustom:
		if from.IsZero() || to.IsZero() {
			return time.Time{}, time.Time{}, ErrInvalidPeriod
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
}

// matchClosedTrades pairs each sell with the most recent prior buy on
// the same pair. Orders must be sorted by fill time ascending. Sells
// with no prior buy in the window are skipped, and partial lot
// tracking is not attempted.
func matchClosedTrades(orders []models.Order) []ClosedTrade {
	lastBuy := make(map[uint]*models.Order)
	var closed []ClosedTrade

	for i := range orders {
		order := &orders[i]
		switch order.Side {
		case models.OrderSideBuy:
			lastBuy[order.TradingPairID] = order
		case models.OrderSideSell:
			buy, ok := lastBuy[order.TradingPairID]
			if !ok {
				continue
			}
			buyPrice := buy.FilledPrice.Decimal
			sellPrice := order.FilledPrice.Decimal
			pnl := sellPrice.Sub(buyPrice).Mul(order.FilledAmount)

			trade := ClosedTrade{
				Symbol:    order.TradingPair.Symbol,
				BuyPrice:  buyPrice,
				SellPrice: sellPrice,
				Amount:    order.FilledAmount,
				PnL:       pnl,
			}
			if buyPrice.IsPositive() {
				trade.PnLPercent = sellPrice.Sub(buyPrice).
					Div(buyPrice).
					Mul(decimal.NewFromInt(100)).
					Round(4)
			}
			if order.FilledAt != nil {
				trade.ClosedAt = *order.FilledAt
			}
			closed = append(closed, trade)
		}
	}
	return closed
}

func recentTrades(closed []ClosedTrade) []ClosedTrade {
	recent := make([]ClosedTrade, 0, recentTradeLimit)
	for i := len(closed) - 1; i >= 0 && len(recent) < recentTradeLimit; i-- {
		recent = append(recent, closed[i])
	}
	return recent
}

func (s *PnLService) unrealizedPnL(ctx context.Context, userID uint) (decimal.Decimal, error) {
	positions, err := s.positionRepo.GetOpenByUser(userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, pos := range positions {
		price, err := s.prices.GetPrice(ctx, pos.TradingPair.Symbol)
		if err != nil || !price.IsPositive() {
			continue
		}
		total = total.Add(pos.UnrealizedPnL(price))
	}
	return total, nil
}
