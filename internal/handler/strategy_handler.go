package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paper-trader/internal/middleware"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/internal/worker"
	"github.com/paper-trader/pkg/response"
)

// StrategyHandler handles strategy API requests
type StrategyHandler struct {
	strategyService *service.StrategyService
	strategyWorker  *worker.StrategyWorker
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(strategyService *service.StrategyService, strategyWorker *worker.StrategyWorker) *StrategyHandler {
	return &StrategyHandler{
		strategyService: strategyService,
		strategyWorker:  strategyWorker,
	}
}

// Create creates a strategy
// POST /api/v1/strategies
func (h *StrategyHandler) Create(c *gin.Context) {
	var req service.CreateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	strategy, err := h.strategyService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		h.handleStrategyError(c, err)
		return
	}
	response.Created(c, strategy)
}

// List returns the user's strategies
// GET /api/v1/strategies
func (h *StrategyHandler) List(c *gin.Context) {
	strategies, err := h.strategyService.List(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list strategies")
		return
	}
	response.Success(c, strategies)
}

// Get returns one strategy
// GET /api/v1/strategies/:id
func (h *StrategyHandler) Get(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}

	strategy, err := h.strategyService.Get(middleware.GetUserID(c), id)
	if err != nil {
		h.handleStrategyError(c, err)
		return
	}
	response.Success(c, strategy)
}

// Update updates a strategy
// PUT /api/v1/strategies/:id
func (h *StrategyHandler) Update(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}

	var req service.UpdateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	strategy, err := h.strategyService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		h.handleStrategyError(c, err)
		return
	}
	response.Success(c, strategy)
}

// Activate enables a strategy
// POST /api/v1/strategies/:id/activate
func (h *StrategyHandler) Activate(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}

	strategy, err := h.strategyService.Activate(middleware.GetUserID(c), id)
	if err != nil {
		h.handleStrategyError(c, err)
		return
	}
	response.Success(c, strategy)
}

// Deactivate disables a strategy
// POST /api/v1/strategies/:id/deactivate
func (h *StrategyHandler) Deactivate(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}

	strategy, err := h.strategyService.Deactivate(middleware.GetUserID(c), id)
	if err != nil {
		h.handleStrategyError(c, err)
		return
	}
	response.Success(c, strategy)
}

// Delete removes a strategy
// DELETE /api/v1/strategies/:id
func (h *StrategyHandler) Delete(c *gin.Context) {
	id, ok := h.strategyID(c)
	if !ok {
		return
	}

	if err := h.strategyService.Delete(middleware.GetUserID(c), id); err != nil {
		h.handleStrategyError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}

// RunDue triggers one scheduler scan immediately
// POST /api/v1/strategies/run-due
func (h *StrategyHandler) RunDue(c *gin.Context) {
	executed, err := h.strategyWorker.RunDueStrategies(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to run due strategies")
		return
	}
	response.Success(c, gin.H{"executed": executed})
}

func (h *StrategyHandler) strategyID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid strategy id")
		return 0, false
	}
	return uint(id), true
}

func (h *StrategyHandler) handleStrategyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrStrategyNotFound):
		response.NotFound(c, "strategy not found")
	case errors.Is(err, service.ErrUnknownStrategyType):
		response.BadRequest(c, "unknown strategy type")
	case errors.Is(err, service.ErrUnknownInterval):
		response.BadRequest(c, "unknown execution interval")
	case errors.Is(err, service.ErrInvalidSymbol):
		response.NotFound(c, "unknown trading pair")
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, "amount must be positive")
	default:
		response.InternalError(c, "strategy operation failed")
	}
}

// RegisterRoutes registers strategy routes
func (h *StrategyHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	strategies := rg.Group("/strategies", authMiddleware)
	{
		strategies.POST("", h.Create)
		strategies.GET("", h.List)
		strategies.POST("/run-due", h.RunDue)
		strategies.GET("/:id", h.Get)
		strategies.PUT("/:id", h.Update)
		strategies.DELETE("/:id", h.Delete)
		strategies.POST("/:id/activate", h.Activate)
		strategies.POST("/:id/deactivate", h.Deactivate)
	}
}
