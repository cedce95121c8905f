package worker

import (
	"context"
	"time"

	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"go.uber.org/zap"
)

// AlertWorker evaluates armed price alerts against current prices and
// marks them triggered. An alert fires at most once.
type AlertWorker struct {
	alertRepo *repository.AlertRepository
	prices    service.PriceResolver
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	now       func() time.Time
}

// NewAlertWorker creates a new AlertWorker
func NewAlertWorker(
	alertRepo *repository.AlertRepository,
	prices service.PriceResolver,
	interval time.Duration,
	logger *zap.Logger,
) *AlertWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AlertWorker{
		alertRepo: alertRepo,
		prices:    prices,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
}

// Start begins the evaluation loop
func (w *AlertWorker) Start() {
	w.logger.Info("alert worker started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.EvaluateAlerts(context.Background()); err != nil {
				w.logger.Error("alert evaluation failed", zap.Error(err))
			}
		case <-w.stopChan:
			w.logger.Info("alert worker stopped")
			return
		}
	}
}

// Stop stops the evaluation loop
func (w *AlertWorker) Stop() {
	close(w.stopChan)
}

// EvaluateAlerts checks every armed alert once
func (w *AlertWorker) EvaluateAlerts(ctx context.Context) error {
	alerts, err := w.alertRepo.GetActiveUntriggered()
	if err != nil {
		return err
	}

	for i := range alerts {
		alert := &alerts[i]
		price, err := w.prices.GetPrice(ctx, alert.TradingPair.Symbol)
		if err != nil || !price.IsPositive() {
			continue
		}
		if !alert.ShouldTrigger(price) {
			continue
		}

		now := w.now()
		alert.Triggered = true
		alert.IsActive = false
		alert.TriggeredAt = &now
		if err := w.alertRepo.Update(alert); err != nil {
			w.logger.Error("failed to mark alert triggered",
				zap.Uint("alert_id", alert.ID),
				zap.Error(err))
			continue
		}

		w.logger.Info("price alert triggered",
			zap.Uint("alert_id", alert.ID),
			zap.Uint("user_id", alert.UserID),
			zap.String("symbol", alert.TradingPair.Symbol),
			zap.String("condition", string(alert.Condition)),
			zap.String("target", alert.TargetPrice.String()),
			zap.String("price", price.String()))
	}
	return nil
}
