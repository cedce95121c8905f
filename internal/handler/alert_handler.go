package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paper-trader/internal/middleware"
	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/pkg/response"
	"github.com/shopspring/decimal"
)

// AlertHandler handles price alert API requests
type AlertHandler struct {
	alertRepo *repository.AlertRepository
	pairRepo  *repository.PairRepository
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertRepo *repository.AlertRepository, pairRepo *repository.PairRepository) *AlertHandler {
	return &AlertHandler{
		alertRepo: alertRepo,
		pairRepo:  pairRepo,
	}
}

// CreateAlertRequest is the alert creation payload
type CreateAlertRequest struct {
	Symbol      string                `json:"symbol" binding:"required"`
	Condition   models.AlertCondition `json:"condition" binding:"required,oneof=above below"`
	TargetPrice decimal.Decimal       `json:"target_price" binding:"required"`
}

// Create creates an alert
// POST /api/v1/alerts
func (h *AlertHandler) Create(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !req.TargetPrice.IsPositive() {
		response.BadRequest(c, "target price must be positive")
		return
	}

	pair, err := h.pairRepo.GetBySymbol(req.Symbol)
	if err != nil {
		if errors.Is(err, repository.ErrPairNotFound) {
			response.NotFound(c, "unknown trading pair")
			return
		}
		response.InternalError(c, "failed to look up trading pair")
		return
	}

	alert := &models.PriceAlert{
		UserID:        middleware.GetUserID(c),
		TradingPairID: pair.ID,
		Condition:     req.Condition,
		TargetPrice:   req.TargetPrice,
		IsActive:      true,
	}
	if err := h.alertRepo.Create(alert); err != nil {
		response.InternalError(c, "failed to create alert")
		return
	}
	response.Created(c, alert)
}

// List returns the user's alerts
// GET /api/v1/alerts
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.alertRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list alerts")
		return
	}
	response.Success(c, alerts)
}

// Delete removes an alert
// DELETE /api/v1/alerts/:id
func (h *AlertHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid alert id")
		return
	}

	alert, err := h.alertRepo.GetByIDAndUserID(uint(id), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			response.NotFound(c, "alert not found")
			return
		}
		response.InternalError(c, "failed to look up alert")
		return
	}

	if err := h.alertRepo.Delete(alert.ID); err != nil {
		response.InternalError(c, "failed to delete alert")
		return
	}
	response.Success(c, gin.H{"deleted": alert.ID})
}

// RegisterRoutes registers alert routes
func (h *AlertHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	alerts := rg.Group("/alerts", authMiddleware)
	{
		alerts.POST("", h.Create)
		alerts.GET("", h.List)
		alerts.DELETE("/:id", h.Delete)
	}
}
