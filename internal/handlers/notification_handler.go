package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/reelnote/backend/internal/inbox"
	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const maxPageLimit = 50

// BadgeCounter computes the unread badge value, see notify.BadgeAggregator
type BadgeCounter interface {
	UnreadCount(ctx context.Context, userID string, now time.Time) (int, error)
}

// NotificationHandler serves the inbox API
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	badges                 BadgeCounter
	pageSize               int
	now                    func() time.Time
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, badges BadgeCounter, pageSize int) *NotificationHandler {
	if pageSize <= 0 || pageSize > maxPageLimit {
		pageSize = inbox.PageSize
	}
	return &NotificationHandler{
		notificationRepository: notifRepo,
		badges:                 badges,
		pageSize:               pageSize,
		now:                    time.Now,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/workspaces/:workspace_id/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.GET("/notifications/:id/state", h.GetReadState)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

// GetNotifications returns one keyset page of canonical notifications addressed to the caller
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxPageLimit {
		limit = h.pageSize
	}

	cursor, err := inbox.ParseCursor(c.QueryParam("cursor"))
	if err != nil {
		return httpError(err, "Cursor")
	}

	notifications, err := h.notificationRepository.PageNotifications(
		c.Request().Context(), currentUserID, c.Param("workspace_id"), cursor, limit)
	if err != nil {
		return httpError(err, "Notification")
	}

	page := models.NotificationPage{Notifications: notifications}
	if page.Notifications == nil {
		page.Notifications = []models.Notification{}
	}
	if len(notifications) == limit {
		page.NextCursor = inbox.CursorAfter(notifications[len(notifications)-1]).Token()
	}

	return c.JSON(http.StatusOK, page)
}

// GetReadState returns the caller's read flag for one notification
func (h *NotificationHandler) GetReadState(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	rn, err := h.notificationRepository.GetRecipientNotification(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return httpError(err, "Notification")
	}

	return c.JSON(http.StatusOK, models.ReadState{NotificationID: rn.NotificationID, IsRead: rn.IsRead})
}

// GetUnreadCount returns the badge value over the recent window
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	now := h.now()
	count, err := h.badges.UnreadCount(c.Request().Context(), currentUserID, now)
	if err != nil {
		return httpError(err, "Notification")
	}

	return c.JSON(http.StatusOK, models.UnreadCount{Count: count, ConfirmedAt: now.UTC()})
}

// MarkAsRead marks a notification as read; repeating it is not an error
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return httpError(err, "Notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks every unread notification of a workspace as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	workspaceID := c.QueryParam("workspace_id")
	if workspaceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'workspace_id' is required")
	}

	updated, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID, workspaceID)
	if err != nil {
		return httpError(err, "Notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "updated": updated})
}
