package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/paper-trader/internal/middleware"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/pkg/response"
)

// SettingsHandler handles user settings API requests
type SettingsHandler struct {
	accountService *service.AccountService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(accountService *service.AccountService) *SettingsHandler {
	return &SettingsHandler{
		accountService: accountService,
	}
}

// Get returns the user's settings
// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	settings, err := h.accountService.GetSettings(userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			// Provision on first read for users created before the
			// settings table existed.
			if err := h.accountService.EnsureSettings(userID); err != nil {
				response.InternalError(c, "failed to provision settings")
				return
			}
			settings, err = h.accountService.GetSettings(userID)
			if err != nil {
				response.InternalError(c, "failed to load settings")
				return
			}
		} else {
			response.InternalError(c, "failed to load settings")
			return
		}
	}
	response.Success(c, settings)
}

// Update applies settings changes
// PUT /api/v1/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.accountService.UpdateSettings(middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			response.NotFound(c, "settings not found")
			return
		}
		response.InternalError(c, "failed to update settings")
		return
	}
	response.Success(c, settings)
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	settings := rg.Group("/settings", authMiddleware)
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
	}
}
