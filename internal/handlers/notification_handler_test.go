package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func seedNotifications(t *testing.T, repo *memoryNotifications, n int, workspace string, receivers ...string) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("N-%03d", i)
		created := baseTime.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.CreateNotification(context.Background(), &models.Notification{
			ID:          id,
			SenderID:    "alice",
			ReceiverIDs: receivers,
			FeedbackID:  "f1",
			VideoID:     "v1",
			WorkspaceID: workspace,
			CreatedAt:   created,
		}))
		for _, r := range receivers {
			require.NoError(t, repo.CreateRecipientNotification(context.Background(), &models.RecipientNotification{
				NotificationID: id, UserID: r, WorkspaceID: workspace, CreatedAt: created,
			}))
		}
	}
}

func newNotificationEcho(repo *memoryNotifications, badges BadgeCounter) *echo.Echo {
	e, api := newTestEcho()
	h := NewNotificationHandler(repo, badges, 20)
	h.now = func() time.Time { return baseTime }
	h.RegisterNotificationRoutes(api)
	return e
}

func decodePage(t *testing.T, body []byte) models.NotificationPage {
	t.Helper()
	var page models.NotificationPage
	require.NoError(t, json.Unmarshal(body, &page))
	return page
}

func TestGetNotifications_PagesWithCursor(t *testing.T) {
	repo := newMemoryNotifications()
	seedNotifications(t, repo, 45, "ws1", "bob")
	e := newNotificationEcho(repo, fixedBadges{})

	var ids []string
	cursor := ""
	sizes := []int{}
	for i := 0; i < 3; i++ {
		rec := do(e, http.MethodGet, "/api/v1/workspaces/ws1/notifications?cursor="+cursor, "bob", "")
		require.Equal(t, http.StatusOK, rec.Code)
		page := decodePage(t, rec.Body.Bytes())
		sizes = append(sizes, len(page.Notifications))
		for _, n := range page.Notifications {
			ids = append(ids, n.ID)
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, []int{20, 20, 5}, sizes)
	assert.Empty(t, cursor)
	assert.Equal(t, "N-044", ids[0])
	assert.Equal(t, "N-000", ids[44])
	assert.Len(t, ids, 45)
}

func TestGetNotifications_ScopedToWorkspaceAndReceiver(t *testing.T) {
	repo := newMemoryNotifications()
	seedNotifications(t, repo, 3, "ws1", "bob")
	seedNotifications(t, repo, 2, "ws2", "bob")
	e := newNotificationEcho(repo, fixedBadges{})

	rec := do(e, http.MethodGet, "/api/v1/workspaces/ws2/notifications", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodePage(t, rec.Body.Bytes()).Notifications, 2)

	rec = do(e, http.MethodGet, "/api/v1/workspaces/ws1/notifications", "carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodePage(t, rec.Body.Bytes()).Notifications)
}

func TestGetNotifications_Errors(t *testing.T) {
	e := newNotificationEcho(newMemoryNotifications(), fixedBadges{})

	rec := do(e, http.MethodGet, "/api/v1/workspaces/ws1/notifications", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/workspaces/ws1/notifications?cursor=bm9waXBl", "bob", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAsRead_IdempotentAndScoped(t *testing.T) {
	repo := newMemoryNotifications()
	seedNotifications(t, repo, 1, "ws1", "bob", "carol")
	e := newNotificationEcho(repo, fixedBadges{})

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPut, "/api/v1/notifications/N-000/read", "bob", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(e, http.MethodGet, "/api/v1/notifications/N-000/state", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state models.ReadState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.IsRead)

	rec = do(e, http.MethodGet, "/api/v1/notifications/N-000/state", "carol", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.IsRead)

	rec = do(e, http.MethodPut, "/api/v1/notifications/N-999/read", "bob", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newMemoryNotifications()
	seedNotifications(t, repo, 4, "ws1", "bob")
	e := newNotificationEcho(repo, fixedBadges{})

	rec := do(e, http.MethodPut, "/api/v1/notifications/read-all", "bob", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPut, "/api/v1/notifications/read-all?workspace_id=ws1", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"updated":4}`, rec.Body.String())
}

func TestGetUnreadCount(t *testing.T) {
	e := newNotificationEcho(newMemoryNotifications(), fixedBadges{count: 7})

	rec := do(e, http.MethodGet, "/api/v1/notifications/unread-count", "bob", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var count models.UnreadCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	assert.Equal(t, 7, count.Count)
	assert.True(t, count.ConfirmedAt.Equal(baseTime))
}
