package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paper-trader/internal/middleware"
	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/pkg/response"
	"github.com/shopspring/decimal"
)

// TradingHandler handles paper trading API requests
type TradingHandler struct {
	tradingService *service.PaperTradingService
	pnlService     *service.PnLService
}

// NewTradingHandler creates a new TradingHandler
func NewTradingHandler(tradingService *service.PaperTradingService, pnlService *service.PnLService) *TradingHandler {
	return &TradingHandler{
		tradingService: tradingService,
		pnlService:     pnlService,
	}
}

// PlaceOrderRequest is the order placement payload
type PlaceOrderRequest struct {
	Symbol string           `json:"symbol" binding:"required"`
	Side   models.OrderSide `json:"side" binding:"required,oneof=buy sell"`
	Amount decimal.Decimal  `json:"amount" binding:"required"`
	Type   models.OrderType `json:"type,omitempty"`
}

// PlaceOrder executes a buy or sell at the current price
// POST /api/v1/trading/orders
func (h *TradingHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tradeReq := &service.TradeRequest{
		UserID:    middleware.GetUserID(c),
		Symbol:    req.Symbol,
		Amount:    req.Amount,
		OrderType: req.Type,
	}

	var result *service.TradeResult
	var err error
	if req.Side == models.OrderSideBuy {
		result, err = h.tradingService.ExecuteBuy(c.Request.Context(), tradeReq)
	} else {
		result, err = h.tradingService.ExecuteSell(c.Request.Context(), tradeReq)
	}
	if err != nil {
		h.handleTradeError(c, err)
		return
	}

	response.Created(c, result)
}

// handleTradeError maps trade failures to HTTP responses
func (h *TradingHandler) handleTradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, "trade amount must be positive")
	case errors.Is(err, service.ErrInvalidSymbol):
		response.NotFound(c, "unknown trading pair")
	case errors.Is(err, service.ErrUnpriceableAsset):
		response.UnprocessableEntity(c, "no price available for symbol")
	case errors.Is(err, service.ErrInsufficientBalance):
		response.BadRequest(c, "insufficient paper balance")
	case errors.Is(err, service.ErrInsufficientPosition):
		response.BadRequest(c, "insufficient position")
	default:
		response.InternalError(c, "failed to execute trade")
	}
}

// ListOrders returns the user's orders
// GET /api/v1/trading/orders
func (h *TradingHandler) ListOrders(c *gin.Context) {
	page, pageSize := pagination(c)
	orders, total, err := h.tradingService.GetOrders(middleware.GetUserID(c), page, pageSize)
	if err != nil {
		response.InternalError(c, "failed to list orders")
		return
	}
	response.SuccessPaginated(c, orders, total, page, pageSize)
}

// CancelOrder cancels a pending order
// DELETE /api/v1/trading/orders/:id
func (h *TradingHandler) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.tradingService.CancelOrder(middleware.GetUserID(c), uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrOrderNotCancellable):
			response.BadRequest(c, "order cannot be cancelled")
		default:
			response.InternalError(c, "failed to cancel order")
		}
		return
	}
	response.Success(c, order)
}

// ListTrades returns the user's trade history
// GET /api/v1/trading/trades
func (h *TradingHandler) ListTrades(c *gin.Context) {
	page, pageSize := pagination(c)
	trades, total, err := h.tradingService.GetTrades(middleware.GetUserID(c), page, pageSize)
	if err != nil {
		response.InternalError(c, "failed to list trades")
		return
	}
	response.SuccessPaginated(c, trades, total, page, pageSize)
}

// GetPortfolio returns the user's balance and open positions
// GET /api/v1/trading/portfolio
func (h *TradingHandler) GetPortfolio(c *gin.Context) {
	portfolio, err := h.tradingService.GetPortfolio(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to build portfolio")
		return
	}
	response.Success(c, portfolio)
}

// GetPnL returns the profit and loss report
// GET /api/v1/trading/pnl?period=all|today|week|month|custom&from=...&to=...
func (h *TradingHandler) GetPnL(c *gin.Context) {
	period := service.ReportPeriod(c.DefaultQuery("period", string(service.PeriodAll)))

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid from timestamp")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid to timestamp")
			return
		}
		to = t
	}

	report, err := h.pnlService.GetReport(c.Request.Context(), middleware.GetUserID(c), period, from, to)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) {
			response.BadRequest(c, "invalid report period")
			return
		}
		response.InternalError(c, "failed to build pnl report")
		return
	}
	response.Success(c, report)
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// RegisterRoutes registers trading routes
func (h *TradingHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	trading := rg.Group("/trading", authMiddleware)
	{
		trading.POST("/orders", h.PlaceOrder)
		trading.GET("/orders", h.ListOrders)
		trading.DELETE("/orders/:id", h.CancelOrder)
		trading.GET("/trades", h.ListTrades)
		trading.GET("/portfolio", h.GetPortfolio)
		trading.GET("/pnl", h.GetPnL)
	}
}
