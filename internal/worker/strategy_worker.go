package worker

import (
	"context"
	"errors"
	"time"

	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/strategy"
	"go.uber.org/zap"
)

// ErrStrategyExecutionFailed wraps executor failures so callers can
// distinguish them from scheduling errors.
var ErrStrategyExecutionFailed = errors.New("strategy execution failed")

// StrategyWorker periodically scans for due strategies and runs them.
// Each strategy is rescheduled and counted whether or not its executor
// succeeds, so one failing strategy cannot stall the rest.
type StrategyWorker struct {
	strategyRepo *repository.StrategyRepository
	env          *strategy.Env
	interval     time.Duration
	logger       *zap.Logger
	stopChan     chan struct{}
	now          func() time.Time
}

// NewStrategyWorker creates a new StrategyWorker
func NewStrategyWorker(
	strategyRepo *repository.StrategyRepository,
	env *strategy.Env,
	interval time.Duration,
	logger *zap.Logger,
) *StrategyWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StrategyWorker{
		strategyRepo: strategyRepo,
		env:          env,
		interval:     interval,
		logger:       logger,
		stopChan:     make(chan struct{}),
		now:          time.Now,
	}
}

// Start begins the scheduling loop
func (w *StrategyWorker) Start() {
	w.logger.Info("strategy worker started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunDueStrategies(context.Background()); err != nil {
				w.logger.Error("strategy scan failed", zap.Error(err))
			}
		case <-w.stopChan:
			w.logger.Info("strategy worker stopped")
			return
		}
	}
}

// Stop stops the scheduling loop
func (w *StrategyWorker) Stop() {
	close(w.stopChan)
}

// RunDueStrategies executes every due strategy once and returns the
// number attempted. Executor failures are logged and isolated.
func (w *StrategyWorker) RunDueStrategies(ctx context.Context) (int, error) {
	strategies, err := w.strategyRepo.GetDue(w.now())
	if err != nil {
		return 0, err
	}

	for i := range strategies {
		st := &strategies[i]
		if err := w.runOne(ctx, st); err != nil {
			w.logger.Error("strategy execution failed",
				zap.Uint("strategy_id", st.ID),
				zap.String("name", st.Name),
				zap.String("type", string(st.Type)),
				zap.Error(err))
		}
	}
	return len(strategies), nil
}

// runOne executes a single strategy and reschedules it. Rescheduling
// always happens, even after a failure, so a broken strategy keeps its
// cadence instead of being retried every scan.
func (w *StrategyWorker) runOne(ctx context.Context, st *models.TradingStrategy) error {
	execErr := w.execute(ctx, st)

	now := w.now()
	next := now.Add(st.ExecutionInterval.Duration())
	st.LastExecutedAt = &now
	st.NextExecutionAt = &next
	st.TotalExecutions++
	if err := w.strategyRepo.Update(st); err != nil {
		return err
	}

	if execErr != nil {
		return errors.Join(ErrStrategyExecutionFailed, execErr)
	}
	return nil
}

func (w *StrategyWorker) execute(ctx context.Context, st *models.TradingStrategy) error {
	executor, err := strategy.Get(st.Type)
	if err != nil {
		return err
	}
	return executor.Execute(ctx, w.env, st)
}
