package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/pkg/response"
)

// PairHandler handles trading pair and price API requests
type PairHandler struct {
	pairRepo *repository.PairRepository
	prices   service.PriceResolver
}

// NewPairHandler creates a new PairHandler
func NewPairHandler(pairRepo *repository.PairRepository, prices service.PriceResolver) *PairHandler {
	return &PairHandler{
		pairRepo: pairRepo,
		prices:   prices,
	}
}

// ListPairs returns all active trading pairs
// GET /api/v1/pairs
func (h *PairHandler) ListPairs(c *gin.Context) {
	pairs, err := h.pairRepo.GetActive()
	if err != nil {
		response.InternalError(c, "failed to list trading pairs")
		return
	}
	response.Success(c, pairs)
}

// GetPrice returns the current price for a symbol
// GET /api/v1/pairs/:symbol/price
func (h *PairHandler) GetPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	if _, err := h.pairRepo.GetBySymbol(symbol); err != nil {
		if errors.Is(err, repository.ErrPairNotFound) {
			response.NotFound(c, "unknown trading pair")
			return
		}
		response.InternalError(c, "failed to look up trading pair")
		return
	}

	price, err := h.prices.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, service.ErrUnpriceableAsset) {
			response.UnprocessableEntity(c, "no price available for symbol")
			return
		}
		response.InternalError(c, "failed to resolve price")
		return
	}

	response.Success(c, gin.H{
		"symbol": symbol,
		"price":  price,
	})
}

// RegisterRoutes registers pair routes
func (h *PairHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pairs := rg.Group("/pairs")
	{
		pairs.GET("", h.ListPairs)
		pairs.GET("/:symbol/price", h.GetPrice)
	}
}
