package strategy

import (
	"context"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/service"
	"go.uber.org/zap"
)

// DCAExecutor buys a fixed amount on every cycle regardless of price,
// then applies the strategy's protective exits.
type DCAExecutor struct{}

func (e *DCAExecutor) Type() models.StrategyType {
	return models.StrategyTypeDCA
}

func (e *DCAExecutor) Execute(ctx context.Context, env *Env, st *models.TradingStrategy) error {
	_, err := env.Trader.ExecuteBuy(ctx, &service.TradeRequest{
		UserID:     st.UserID,
		Symbol:     st.TradingPair.Symbol,
		Amount:     st.Amount,
		OrderType:  models.OrderTypeMarket,
		StrategyID: &st.ID,
	})
	if err != nil {
		return err
	}

	env.Logger.Info("dca buy executed",
		zap.Uint("strategy_id", st.ID),
		zap.String("symbol", st.TradingPair.Symbol),
		zap.String("amount", st.Amount.String()))

	return CheckStopLossTakeProfit(ctx, env, st)
}
