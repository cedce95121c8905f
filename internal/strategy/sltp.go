package strategy

import (
	"context"
	"errors"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var oneHundred = decimal.NewFromInt(100)

// CheckStopLossTakeProfit liquidates the strategy's position when the
// current price crosses its stop loss or take profit threshold. The
// stop loss is evaluated first and the whole position is sold. Nothing
// happens when the position is empty or the symbol cannot be priced.
func CheckStopLossTakeProfit(ctx context.Context, env *Env, st *models.TradingStrategy) error {
	position, err := env.Positions.GetByUserAndPair(st.UserID, st.TradingPairID)
	if err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return nil
		}
		return err
	}
	if !position.IsOpen() {
		return nil
	}

	price, err := env.Prices.GetPrice(ctx, st.TradingPair.Symbol)
	if err != nil || !price.IsPositive() {
		env.Logger.Warn("skipping stop loss check, symbol unpriceable",
			zap.Uint("strategy_id", st.ID),
			zap.String("symbol", st.TradingPair.Symbol),
			zap.Error(err))
		return nil
	}

	avg := position.AverageBuyPrice
	stopAt := avg.Mul(oneHundred.Sub(st.StopLossPercentage)).Div(oneHundred)
	profitAt := avg.Mul(oneHundred.Add(st.TakeProfitPercentage)).Div(oneHundred)

	var orderType models.OrderType
	switch {
	case price.LessThanOrEqual(stopAt):
		orderType = models.OrderTypeStopLoss
	case price.GreaterThanOrEqual(profitAt):
		orderType = models.OrderTypeTakeProfit
	default:
		return nil
	}

	_, err = env.Trader.ExecuteSell(ctx, &service.TradeRequest{
		UserID:     st.UserID,
		Symbol:     st.TradingPair.Symbol,
		Amount:     position.Amount,
		OrderType:  orderType,
		StrategyID: &st.ID,
	})
	if err != nil {
		return err
	}

	env.Logger.Info("protective exit executed",
		zap.Uint("strategy_id", st.ID),
		zap.String("symbol", st.TradingPair.Symbol),
		zap.String("order_type", string(orderType)),
		zap.String("price", price.String()))
	return nil
}
