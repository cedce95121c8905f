package strategy

import (
	"context"
	"errors"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"go.uber.org/zap"
)

// ManualExecutor trades against user-defined price levels: buy when
// the price falls to the buy level, sell the held amount when it rises
// to the sell level. Levels left unset are ignored.
type ManualExecutor struct{}

func (e *ManualExecutor) Type() models.StrategyType {
	return models.StrategyTypeManual
}

func (e *ManualExecutor) Execute(ctx context.Context, env *Env, st *models.TradingStrategy) error {
	price, err := env.Prices.GetPrice(ctx, st.TradingPair.Symbol)
	if err != nil {
		return err
	}

	if st.BuyPrice.Valid && price.LessThanOrEqual(st.BuyPrice.Decimal) {
		_, err := env.Trader.ExecuteBuy(ctx, &service.TradeRequest{
			UserID:     st.UserID,
			Symbol:     st.TradingPair.Symbol,
			Amount:     st.Amount,
			OrderType:  models.OrderTypeLimit,
			StrategyID: &st.ID,
		})
		if err != nil {
			return err
		}
		env.Logger.Info("manual buy level hit",
			zap.Uint("strategy_id", st.ID),
			zap.String("symbol", st.TradingPair.Symbol),
			zap.String("price", price.String()))
	} else if st.SellPrice.Valid && price.GreaterThanOrEqual(st.SellPrice.Decimal) {
		amount := st.Amount
		position, err := env.Positions.GetByUserAndPair(st.UserID, st.TradingPairID)
		if err != nil {
			if !errors.Is(err, repository.ErrPositionNotFound) {
				return err
			}
			return nil
		}
		if position.Amount.LessThan(amount) {
			amount = position.Amount
		}
		if !amount.IsPositive() {
			return nil
		}

		_, err = env.Trader.ExecuteSell(ctx, &service.TradeRequest{
			UserID:     st.UserID,
			Symbol:     st.TradingPair.Symbol,
			Amount:     amount,
			OrderType:  models.OrderTypeLimit,
			StrategyID: &st.ID,
		})
		if err != nil {
			return err
		}
		env.Logger.Info("manual sell level hit",
			zap.Uint("strategy_id", st.ID),
			zap.String("symbol", st.TradingPair.Symbol),
			zap.String("price", price.String()))
	}

	return CheckStopLossTakeProfit(ctx, env, st)
}
