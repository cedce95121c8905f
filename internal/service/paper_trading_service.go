package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaperTradingService executes simulated trades against the user's
// paper balance. Every order fills immediately at the resolved price.
type PaperTradingService struct {
	db           *gorm.DB
	settingsRepo *repository.SettingsRepository
	pairRepo     *repository.PairRepository
	positionRepo *repository.PositionRepository
	orderRepo    *repository.OrderRepository
	tradeRepo    *repository.TradeRepository
	prices       PriceResolver
	logger       *zap.Logger

	// Serializes trades per user so balance checks and updates cannot
	// interleave within one process.
	userLocks sync.Map
}

// NewPaperTradingService creates a new PaperTradingService
func NewPaperTradingService(
	db *gorm.DB,
	settingsRepo *repository.SettingsRepository,
	pairRepo *repository.PairRepository,
	positionRepo *repository.PositionRepository,
	orderRepo *repository.OrderRepository,
	tradeRepo *repository.TradeRepository,
	prices PriceResolver,
	logger *zap.Logger,
) *PaperTradingService {
	return &PaperTradingService{
		db:           db,
		settingsRepo: settingsRepo,
		pairRepo:     pairRepo,
		positionRepo: positionRepo,
		orderRepo:    orderRepo,
		tradeRepo:    tradeRepo,
		prices:       prices,
		logger:       logger,
	}
}

// TradeRequest describes a buy or sell to execute
type TradeRequest struct {
	UserID     uint
	Symbol     string
	Amount     decimal.Decimal
	OrderType  models.OrderType
	StrategyID *uint
}

// TradeResult reports the outcome of an executed trade
type TradeResult struct {
	Order      *models.Order        `json:"order"`
	Trade      *models.TradeHistory `json:"trade"`
	Position   *models.Position     `json:"position"`
	NewBalance decimal.Decimal      `json:"new_balance"`
}

func (s *PaperTradingService) lockUser(userID uint) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ExecuteBuy buys the requested amount of the pair's base asset at the
// current price, debiting the paper balance.
func (s *PaperTradingService) ExecuteBuy(ctx context.Context, req *TradeRequest) (*TradeResult, error) {
	pair, price, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	mu := s.lockUser(req.UserID)
	mu.Lock()
	defer mu.Unlock()

	var result *TradeResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		settings, err := s.settingsRepo.WithTx(tx).GetByUserIDForUpdate(req.UserID)
		if err != nil {
			return err
		}

		cost := price.Mul(req.Amount)
		if settings.PaperBalanceUSDT.LessThan(cost) {
			return ErrInsufficientBalance
		}

		position, err := s.positionRepo.WithTx(tx).GetOrCreate(req.UserID, pair.ID)
		if err != nil {
			return err
		}

		// Weighted average cost basis across all open buys.
		position.Amount = position.Amount.Add(req.Amount)
		position.TotalInvested = position.TotalInvested.Add(cost)
		position.AverageBuyPrice = position.TotalInvested.Div(position.Amount)

		settings.PaperBalanceUSDT = settings.PaperBalanceUSDT.Sub(cost)

		order, trade, err := s.record(tx, req, pair, models.OrderSideBuy, price, cost, decimal.NullDecimal{})
		if err != nil {
			return err
		}
		if err := s.positionRepo.WithTx(tx).Update(position); err != nil {
			return err
		}
		if err := s.settingsRepo.WithTx(tx).Update(settings); err != nil {
			return err
		}

		result = &TradeResult{
			Order:      order,
			Trade:      trade,
			Position:   position,
			NewBalance: settings.PaperBalanceUSDT,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("paper buy executed",
		zap.Uint("user_id", req.UserID),
		zap.String("symbol", req.Symbol),
		zap.String("amount", req.Amount.String()),
		zap.String("price", price.String()))
	return result, nil
}

// ExecuteSell sells the requested amount from the user's position at
// the current price, crediting proceeds and realizing profit or loss
// against the weighted average cost basis.
func (s *PaperTradingService) ExecuteSell(ctx context.Context, req *TradeRequest) (*TradeResult, error) {
	pair, price, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	mu := s.lockUser(req.UserID)
	mu.Lock()
	defer mu.Unlock()

	var result *TradeResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		settings, err := s.settingsRepo.WithTx(tx).GetByUserIDForUpdate(req.UserID)
		if err != nil {
			return err
		}

		position, err := s.positionRepo.WithTx(tx).GetByUserAndPairForUpdate(req.UserID, pair.ID)
		if err != nil {
			if errors.Is(err, repository.ErrPositionNotFound) {
				return ErrInsufficientPosition
			}
			return err
		}
		if position.Amount.LessThan(req.Amount) {
			return ErrInsufficientPosition
		}

		proceeds := price.Mul(req.Amount)
		costBasis := position.AverageBuyPrice.Mul(req.Amount)
		// Realized P&L is taken before the position is reduced so a
		// full close still reports the profit of the closing lot.
		realizedPnL := proceeds.Sub(costBasis)

		position.Amount = position.Amount.Sub(req.Amount)
		position.TotalInvested = position.TotalInvested.Sub(costBasis)
		if position.Amount.IsZero() {
			position.AverageBuyPrice = decimal.Zero
			position.TotalInvested = decimal.Zero
		}

		settings.PaperBalanceUSDT = settings.PaperBalanceUSDT.Add(proceeds)

		pnl := decimal.NewNullDecimal(realizedPnL)
		order, trade, err := s.record(tx, req, pair, models.OrderSideSell, price, proceeds, pnl)
		if err != nil {
			return err
		}
		if err := s.positionRepo.WithTx(tx).Update(position); err != nil {
			return err
		}
		if err := s.settingsRepo.WithTx(tx).Update(settings); err != nil {
			return err
		}

		result = &TradeResult{
			Order:      order,
			Trade:      trade,
			Position:   position,
			NewBalance: settings.PaperBalanceUSDT,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("paper sell executed",
		zap.Uint("user_id", req.UserID),
		zap.String("symbol", req.Symbol),
		zap.String("amount", req.Amount.String()),
		zap.String("price", price.String()),
		zap.String("pnl", result.Trade.ProfitLoss.Decimal.String()))
	return result, nil
}

// prepare validates the request and resolves the pair and price
func (s *PaperTradingService) prepare(ctx context.Context, req *TradeRequest) (*models.TradingPair, decimal.Decimal, error) {
	if !req.Amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTypeMarket
	}

	pair, err := s.pairRepo.GetBySymbol(req.Symbol)
	if err != nil {
		if errors.Is(err, repository.ErrPairNotFound) {
			return nil, decimal.Zero, ErrInvalidSymbol
		}
		return nil, decimal.Zero, err
	}

	price, err := s.prices.GetPrice(ctx, req.Symbol)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !price.IsPositive() {
		return nil, decimal.Zero, ErrUnpriceableAsset
	}
	return pair, price, nil
}

// record persists the filled order and its trade inside the transaction
func (s *PaperTradingService) record(
	tx *gorm.DB,
	req *TradeRequest,
	pair *models.TradingPair,
	side models.OrderSide,
	price decimal.Decimal,
	total decimal.Decimal,
	pnl decimal.NullDecimal,
) (*models.Order, *models.TradeHistory, error) {
	now := time.Now()
	order := &models.Order{
		UserID:        req.UserID,
		StrategyID:    req.StrategyID,
		TradingPairID: pair.ID,
		ClientOrderID: uuid.NewString(),
		Type:          req.OrderType,
		Side:          side,
		Status:        models.OrderStatusFilled,
		Amount:        req.Amount,
		FilledAmount:  req.Amount,
		FilledPrice:   decimal.NewNullDecimal(price),
		IsPaperTrade:  true,
		FilledAt:      &now,
	}
	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, nil, err
	}

	trade := &models.TradeHistory{
		UserID:        req.UserID,
		OrderID:       order.ID,
		TradingPairID: pair.ID,
		Side:          side,
		Price:         price,
		Amount:        req.Amount,
		Total:         total,
		ProfitLoss:    pnl,
		ExecutedAt:    now,
	}
	if err := s.tradeRepo.WithTx(tx).Create(trade); err != nil {
		return nil, nil, err
	}
	return order, trade, nil
}

// PositionValue is a position marked to the current price
type PositionValue struct {
	Position      models.Position `json:"position"`
	Symbol        string          `json:"symbol"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// Portfolio is the user's paper balance plus open positions
type Portfolio struct {
	BalanceUSDT    decimal.Decimal `json:"balance_usdt"`
	Positions      []PositionValue `json:"positions"`
	PositionsValue decimal.Decimal `json:"positions_value"`
	UnrealizedPnL  decimal.Decimal `json:"unrealized_pnl"`
	TotalEquity    decimal.Decimal `json:"total_equity"`
}

// GetPortfolio returns the user's balance and open positions marked to
// current prices. Positions whose symbol cannot be priced are reported
// at zero value.
func (s *PaperTradingService) GetPortfolio(ctx context.Context, userID uint) (*Portfolio, error) {
	settings, err := s.settingsRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.GetOpenByUser(userID)
	if err != nil {
		return nil, err
	}

	portfolio := &Portfolio{
		BalanceUSDT: settings.PaperBalanceUSDT,
		Positions:   make([]PositionValue, 0, len(positions)),
	}
	for _, pos := range positions {
		pv := PositionValue{
			Position: pos,
			Symbol:   pos.TradingPair.Symbol,
		}
		price, err := s.prices.GetPrice(ctx, pos.TradingPair.Symbol)
		if err == nil && price.IsPositive() {
			pv.CurrentPrice = price
			pv.CurrentValue = pos.Amount.Mul(price)
			pv.UnrealizedPnL = pos.UnrealizedPnL(price)
		}
		portfolio.Positions = append(portfolio.Positions, pv)
		portfolio.PositionsValue = portfolio.PositionsValue.Add(pv.CurrentValue)
		portfolio.UnrealizedPnL = portfolio.UnrealizedPnL.Add(pv.UnrealizedPnL)
	}
	portfolio.TotalEquity = portfolio.BalanceUSDT.Add(portfolio.PositionsValue)
	return portfolio, nil
}

// GetOrders returns the user's orders newest first
func (s *PaperTradingService) GetOrders(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.GetByUserIDPaginated(userID, page, pageSize)
}

// GetTrades returns the user's trades newest first
func (s *PaperTradingService) GetTrades(userID uint, page, pageSize int) ([]models.TradeHistory, int64, error) {
	return s.tradeRepo.GetByUserIDPaginated(userID, page, pageSize)
}

// CancelOrder cancels a pending order. Filled orders cannot be undone.
func (s *PaperTradingService) CancelOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUserID(orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.IsPending() {
		return nil, ErrOrderNotCancellable
	}
	order.Status = models.OrderStatusCancelled
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}
