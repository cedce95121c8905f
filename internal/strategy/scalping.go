package strategy

import (
	"context"

	"github.com/paper-trader/internal/models"
	"go.uber.org/zap"
)

// ScalpingExecutor is a placeholder for short-horizon scalping. It only
// applies the protective exits until a signal source is wired in.
type ScalpingExecutor struct{}

func (e *ScalpingExecutor) Type() models.StrategyType {
	return models.StrategyTypeScalping
}

func (e *ScalpingExecutor) Execute(ctx context.Context, env *Env, st *models.TradingStrategy) error {
	env.Logger.Debug("scalping strategy cycle",
		zap.Uint("strategy_id", st.ID),
		zap.String("symbol", st.TradingPair.Symbol))
	return CheckStopLossTakeProfit(ctx, env, st)
}
