package strategy

import (
	"errors"
	"sync"

	"github.com/paper-trader/internal/models"
)

var (
	registry = make(map[models.StrategyType]Executor)
	mu       sync.RWMutex
)

var ErrUnknownStrategy = errors.New("unknown strategy type")

// Register adds an executor to the registry, replacing any executor
// already registered for the same type.
func Register(e Executor) {
	mu.Lock()
	defer mu.Unlock()
	registry[e.Type()] = e
}

// Get returns the executor for a strategy type
func Get(t models.StrategyType) (Executor, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[t]
	if !ok {
		return nil, ErrUnknownStrategy
	}
	return e, nil
}

// RegisterDefaults installs the built-in executors
func RegisterDefaults() {
	Register(&DCAExecutor{})
	Register(&ManualExecutor{})
	Register(&GridExecutor{})
	Register(&ScalpingExecutor{})
}
