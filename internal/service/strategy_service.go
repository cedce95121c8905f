package service

import (
	"errors"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrUnknownInterval     = errors.New("unknown execution interval")
)

var validStrategyTypes = map[models.StrategyType]bool{
	models.StrategyTypeManual:   true,
	models.StrategyTypeDCA:      true,
	models.StrategyTypeGrid:     true,
	models.StrategyTypeScalping: true,
	models.StrategyTypeCustom:   true,
}

var validIntervals = map[models.ExecutionInterval]bool{
	models.Interval15Min: true,
	models.Interval30Min: true,
	models.Interval1H:    true,
	models.Interval4H:    true,
	models.Interval1D:    true,
}

// StrategyService manages the lifecycle of trading strategies
type StrategyService struct {
	strategyRepo *repository.StrategyRepository
	pairRepo     *repository.PairRepository
}

// NewStrategyService creates a new StrategyService
func NewStrategyService(strategyRepo *repository.StrategyRepository, pairRepo *repository.PairRepository) *StrategyService {
	return &StrategyService{
		strategyRepo: strategyRepo,
		pairRepo:     pairRepo,
	}
}

// CreateStrategyRequest describes a new strategy
type CreateStrategyRequest struct {
	Name                 string                   `json:"name" binding:"required,max=100"`
	Type                 models.StrategyType      `json:"type" binding:"required"`
	Symbol               string                   `json:"symbol" binding:"required"`
	Amount               decimal.Decimal          `json:"amount" binding:"required"`
	BuyPrice             *decimal.Decimal         `json:"buy_price,omitempty"`
	SellPrice            *decimal.Decimal         `json:"sell_price,omitempty"`
	StopLossPercentage   *decimal.Decimal         `json:"stop_loss_percentage,omitempty"`
	TakeProfitPercentage *decimal.Decimal         `json:"take_profit_percentage,omitempty"`
	ExecutionInterval    models.ExecutionInterval `json:"execution_interval,omitempty"`
}

// Create validates and persists a new strategy. Strategies start
// inactive and are scheduled on first activation.
func (s *StrategyService) Create(userID uint, req *CreateStrategyRequest) (*models.TradingStrategy, error) {
	if !validStrategyTypes[req.Type] {
		return nil, ErrUnknownStrategyType
	}
	if req.ExecutionInterval == "" {
		req.ExecutionInterval = models.Interval1H
	}
	if !validIntervals[req.ExecutionInterval] {
		return nil, ErrUnknownInterval
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	pair, err := s.pairRepo.GetBySymbol(req.Symbol)
	if err != nil {
		if errors.Is(err, repository.ErrPairNotFound) {
			return nil, ErrInvalidSymbol
		}
		return nil, err
	}

	strategy := &models.TradingStrategy{
		UserID:               userID,
		TradingPairID:        pair.ID,
		Name:                 req.Name,
		Type:                 req.Type,
		Amount:               req.Amount,
		ExecutionInterval:    req.ExecutionInterval,
		StopLossPercentage:   decimal.NewFromInt(1),
		TakeProfitPercentage: decimal.NewFromInt(2),
	}
	if req.BuyPrice != nil {
		strategy.BuyPrice = decimal.NewNullDecimal(*req.BuyPrice)
	}
	if req.SellPrice != nil {
		strategy.SellPrice = decimal.NewNullDecimal(*req.SellPrice)
	}
	if req.StopLossPercentage != nil {
		strategy.StopLossPercentage = *req.StopLossPercentage
	}
	if req.TakeProfitPercentage != nil {
		strategy.TakeProfitPercentage = *req.TakeProfitPercentage
	}

	if err := s.strategyRepo.Create(strategy); err != nil {
		return nil, err
	}
	return s.strategyRepo.GetByID(strategy.ID)
}

// UpdateStrategyRequest carries the mutable strategy fields
type UpdateStrategyRequest struct {
	Name                 *string                   `json:"name,omitempty"`
	Amount               *decimal.Decimal          `json:"amount,omitempty"`
	BuyPrice             *decimal.Decimal          `json:"buy_price,omitempty"`
	SellPrice            *decimal.Decimal          `json:"sell_price,omitempty"`
	StopLossPercentage   *decimal.Decimal          `json:"stop_loss_percentage,omitempty"`
	TakeProfitPercentage *decimal.Decimal          `json:"take_profit_percentage,omitempty"`
	ExecutionInterval    *models.ExecutionInterval `json:"execution_interval,omitempty"`
}

// Update applies the provided fields to a strategy owned by the user
func (s *StrategyService) Update(userID, strategyID uint, req *UpdateStrategyRequest) (*models.TradingStrategy, error) {
	strategy, err := s.strategyRepo.GetByIDAndUserID(strategyID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		strategy.Name = *req.Name
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		strategy.Amount = *req.Amount
	}
	if req.BuyPrice != nil {
		strategy.BuyPrice = decimal.NewNullDecimal(*req.BuyPrice)
	}
	if req.SellPrice != nil {
		strategy.SellPrice = decimal.NewNullDecimal(*req.SellPrice)
	}
	if req.StopLossPercentage != nil {
		strategy.StopLossPercentage = *req.StopLossPercentage
	}
	if req.TakeProfitPercentage != nil {
		strategy.TakeProfitPercentage = *req.TakeProfitPercentage
	}
	if req.ExecutionInterval != nil {
		if !validIntervals[*req.ExecutionInterval] {
			return nil, ErrUnknownInterval
		}
		strategy.ExecutionInterval = *req.ExecutionInterval
	}

	if err := s.strategyRepo.Update(strategy); err != nil {
		return nil, err
	}
	return strategy, nil
}

// Activate enables a strategy. The execution schedule is cleared so the
// next scheduler scan picks it up immediately.
func (s *StrategyService) Activate(userID, strategyID uint) (*models.TradingStrategy, error) {
	strategy, err := s.strategyRepo.GetByIDAndUserID(strategyID, userID)
	if err != nil {
		return nil, err
	}
	strategy.IsActive = true
	strategy.NextExecutionAt = nil
	if err := s.strategyRepo.Update(strategy); err != nil {
		return nil, err
	}
	return strategy, nil
}

// Deactivate disables a strategy
func (s *StrategyService) Deactivate(userID, strategyID uint) (*models.TradingStrategy, error) {
	strategy, err := s.strategyRepo.GetByIDAndUserID(strategyID, userID)
	if err != nil {
		return nil, err
	}
	strategy.IsActive = false
	if err := s.strategyRepo.Update(strategy); err != nil {
		return nil, err
	}
	return strategy, nil
}

// List returns all strategies owned by the user
func (s *StrategyService) List(userID uint) ([]models.TradingStrategy, error) {
	return s.strategyRepo.GetByUserID(userID)
}

// Get returns one strategy owned by the user
func (s *StrategyService) Get(userID, strategyID uint) (*models.TradingStrategy, error) {
	return s.strategyRepo.GetByIDAndUserID(strategyID, userID)
}

// Delete removes a strategy owned by the user
func (s *StrategyService) Delete(userID, strategyID uint) error {
	strategy, err := s.strategyRepo.GetByIDAndUserID(strategyID, userID)
	if err != nil {
		return err
	}
	return s.strategyRepo.Delete(strategy.ID)
}
