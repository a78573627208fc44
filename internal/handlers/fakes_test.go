package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/reelnote/backend/internal/inbox"
	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"github.com/anonto42/reelnote/backend/validators"
	"github.com/labstack/echo/v4"
)

type memoryNotifications struct {
	mu         sync.Mutex
	canonical  []models.Notification
	recipients map[string]*models.RecipientNotification
}

func newMemoryNotifications() *memoryNotifications {
	return &memoryNotifications{recipients: make(map[string]*models.RecipientNotification)}
}

func rnKey(userID, notificationID string) string { return userID + "/" + notificationID }

func (m *memoryNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canonical = append(m.canonical, *n)
	return nil
}

func (m *memoryNotifications) CreateRecipientNotification(_ context.Context, rn *models.RecipientNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipients[rnKey(rn.UserID, rn.NotificationID)]; !ok {
		cp := *rn
		m.recipients[rnKey(rn.UserID, rn.NotificationID)] = &cp
	}
	return nil
}

func (m *memoryNotifications) CountUnreadSince(_ context.Context, userID string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, rn := range m.recipients {
		if rn.UserID == userID && !rn.IsRead && !rn.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryNotifications) PageNotifications(_ context.Context, userID, workspaceID string, after *inbox.Cursor, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.canonical {
		if n.WorkspaceID != workspaceID || !n.HasReceiver(userID) {
			continue
		}
		if after != nil && !(n.CreatedAt.Before(after.CreatedAt) || (n.CreatedAt.Equal(after.CreatedAt) && n.ID < after.ID)) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryNotifications) GetRecipientNotification(_ context.Context, userID, notificationID string) (*models.RecipientNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rn, ok := m.recipients[rnKey(userID, notificationID)]
	if !ok {
		return nil, notify.ErrNotFound
	}
	cp := *rn
	return &cp, nil
}

func (m *memoryNotifications) MarkAsRead(_ context.Context, userID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rn, ok := m.recipients[rnKey(userID, notificationID)]
	if !ok {
		return notify.ErrNotFound
	}
	rn.IsRead = true
	return nil
}

func (m *memoryNotifications) MarkAllAsRead(_ context.Context, userID, workspaceID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, rn := range m.recipients {
		if rn.UserID == userID && rn.WorkspaceID == workspaceID && !rn.IsRead {
			rn.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memoryNotifications) ListMissingRecipientNotifications(context.Context, string) ([]models.Notification, error) {
	return nil, nil
}

type memoryBlocks struct {
	mu    sync.Mutex
	edges map[string][]string
}

func (b *memoryBlocks) CreateBlock(_ context.Context, blockerID, blockedID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.edges == nil {
		b.edges = make(map[string][]string)
	}
	for _, id := range b.edges[blockerID] {
		if id == blockedID {
			return nil
		}
	}
	b.edges[blockerID] = append(b.edges[blockerID], blockedID)
	return nil
}

func (b *memoryBlocks) DeleteBlock(_ context.Context, blockerID, blockedID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.edges[blockerID]
	for i, id := range ids {
		if id == blockedID {
			b.edges[blockerID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return notify.ErrNotFound
}

func (b *memoryBlocks) IsBlocked(_ context.Context, recipientID, senderID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.edges[recipientID] {
		if id == senderID {
			return true, nil
		}
	}
	return false, nil
}

func (b *memoryBlocks) GetBlockedIDs(_ context.Context, blockerID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.edges[blockerID]...), nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (u *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, notify.ErrNotFound
	}
	return &user, nil
}

func (u *memoryUsers) SaveUser(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.users == nil {
		u.users = make(map[string]models.User)
	}
	u.users[user.ID] = *user
	return nil
}

func (u *memoryUsers) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []models.User
	for _, user := range u.users {
		if strings.Contains(strings.ToLower(user.DisplayName), strings.ToLower(query)) {
			out = append(out, user)
		}
	}
	return out, nil
}

type fixedBadges struct {
	count int
	err   error
}

func (f fixedBadges) UnreadCount(context.Context, string, time.Time) (int, error) {
	return f.count, f.err
}

// newTestEcho returns an Echo whose /api/v1 group authenticates every
// request as the uid in the X-Test-User header.
func newTestEcho() (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := c.Request().Header.Get("X-Test-User"); uid != "" {
				c.Set(firebaseUIDKey, uid)
			}
			return next(c)
		}
	})
	return e, api
}

func do(e *echo.Echo, method, target, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
