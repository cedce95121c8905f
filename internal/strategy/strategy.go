package strategy

import (
	"context"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"go.uber.org/zap"
)

// Env bundles the dependencies an executor needs to act on a strategy.
type Env struct {
	Trader    *service.PaperTradingService
	Prices    service.PriceResolver
	Positions *repository.PositionRepository
	Logger    *zap.Logger
}

// Executor runs one evaluation cycle of a strategy type.
type Executor interface {
	Type() models.StrategyType
	Execute(ctx context.Context, env *Env, st *models.TradingStrategy) error
}
