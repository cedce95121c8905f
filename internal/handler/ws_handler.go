package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/paper-trader/internal/service"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler streams ticker prices over a websocket
type WSHandler struct {
	prices       service.PriceResolver
	pushInterval time.Duration
	logger       *zap.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(prices service.PriceResolver, pushInterval time.Duration, logger *zap.Logger) *WSHandler {
	if pushInterval <= 0 {
		pushInterval = 2 * time.Second
	}
	return &WSHandler{
		prices:       prices,
		pushInterval: pushInterval,
		logger:       logger,
	}
}

type tickerUpdate struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// Ticker upgrades the connection and pushes prices for the requested
// symbols until the client disconnects.
// GET /api/v1/ws/ticker?symbols=BTCUSDT,ETHUSDT
func (h *WSHandler) Ticker(c *gin.Context) {
	symbolsParam := c.Query("symbols")
	if symbolsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols query parameter required"})
		return
	}
	symbols := strings.Split(symbolsParam, ",")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Reader goroutine drains control frames and signals disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			updates := make([]tickerUpdate, 0, len(symbols))
			for _, symbol := range symbols {
				symbol = strings.TrimSpace(symbol)
				price, err := h.prices.GetPrice(c.Request.Context(), symbol)
				if err != nil || !price.IsPositive() {
					continue
				}
				updates = append(updates, tickerUpdate{
					Symbol:    symbol,
					Price:     price.String(),
					Timestamp: time.Now().UnixMilli(),
				})
			}
			if err := conn.WriteJSON(updates); err != nil {
				return
			}
		}
	}
}

// RegisterRoutes registers websocket routes
func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/ws")
	{
		ws.GET("/ticker", h.Ticker)
	}
}
