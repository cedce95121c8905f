package strategy

import (
	"context"

	"github.com/paper-trader/internal/models"
	"go.uber.org/zap"
)

// GridExecutor is a placeholder for grid trading. It only applies the
// protective exits until ladder placement is implemented.
type GridExecutor struct{}

func (e *GridExecutor) Type() models.StrategyType {
	return models.StrategyTypeGrid
}

func (e *GridExecutor) Execute(ctx context.Context, env *Env, st *models.TradingStrategy) error {
	env.Logger.Debug("grid strategy cycle",
		zap.Uint("strategy_id", st.ID),
		zap.String("symbol", st.TradingPair.Symbol))
	return CheckStopLossTakeProfit(ctx, env, st)
}
