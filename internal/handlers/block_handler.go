package handlers

import (
	"net/http"

	"github.com/anonto42/reelnote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// BlockHandler handles block/unblock HTTP requests
type BlockHandler struct {
	blockRepository repositories.BlockRepository
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(blockRepo repositories.BlockRepository) *BlockHandler {
	return &BlockHandler{blockRepository: blockRepo}
}

// RegisterBlockRoutes registers block-related routes
func (h *BlockHandler) RegisterBlockRoutes(g *echo.Group) {
	g.POST("/users/:id/block", h.BlockUser)
	g.DELETE("/users/:id/block", h.UnblockUser)
	g.GET("/users/blocked", h.GetBlockedUsers)
}

// BlockUser stops the target from notifying the current user
func (h *BlockHandler) BlockUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if targetID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot block yourself")
	}

	if err := h.blockRepository.CreateBlock(c.Request().Context(), currentUserID, targetID); err != nil {
		return httpError(err, "User")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"blocked": true}})
}

// UnblockUser removes a block edge
func (h *BlockHandler) UnblockUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if err := h.blockRepository.DeleteBlock(c.Request().Context(), currentUserID, targetID); err != nil {
		return httpError(err, "Block")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"blocked": false}})
}

// GetBlockedUsers lists the ids the current user has blocked
func (h *BlockHandler) GetBlockedUsers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ids, err := h.blockRepository.GetBlockedIDs(c.Request().Context(), currentUserID)
	if err != nil {
		return httpError(err, "User")
	}
	if ids == nil {
		ids = []string{}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"blocked_ids": ids}})
}
