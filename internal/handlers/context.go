package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/reelnote/backend/internal/inbox"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"github.com/labstack/echo/v4"
)

// firebaseUIDKey is set by middleware.FirebaseAuthMiddleware
const firebaseUIDKey = "firebaseUID"

// getUserIDFromContext returns the authenticated Firebase UID, or "" when absent
func getUserIDFromContext(c echo.Context) string {
	uid, _ := c.Get(firebaseUIDKey).(string)
	return uid
}

// httpError maps repository and engine errors onto HTTP status codes
func httpError(err error, what string) *echo.HTTPError {
	switch {
	case errors.Is(err, notify.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	case errors.Is(err, inbox.ErrInvalidCursor):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
