package inbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/reelnote/backend/internal/models"
)

// PageSize is the number of canonical notifications fetched per load.
const PageSize = 20

// Cursor points at the last document of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorAfter returns the cursor positioned on n.
func CursorAfter(n models.Notification) *Cursor {
	return &Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
}

// Token encodes the cursor for transport.
func (c *Cursor) Token() string {
	if c == nil {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

var ErrInvalidCursor = errors.New("invalid cursor")

// ParseCursor decodes a token produced by Token. An empty token yields nil.
func ParseCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	ns, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &Cursor{CreatedAt: time.Unix(0, ns).UTC(), ID: id}, nil
}

// Pager returns canonical notifications addressed to userID within
// workspaceID, newest first, strictly after the cursor when one is given.
type Pager interface {
	PageNotifications(ctx context.Context, userID, workspaceID string, after *Cursor, limit int) ([]models.Notification, error)
}

// Loader fetches fixed-size pages using keyset cursors, so pages stay
// stable when newer notifications are inserted between loads.
type Loader struct {
	pager    Pager
	pageSize int
}

func NewLoader(pager Pager, pageSize int) *Loader {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return &Loader{pager: pager, pageSize: pageSize}
}

// Load returns one page and the cursor for the next one. The next cursor is
// nil once a page comes back shorter than the page size.
func (l *Loader) Load(ctx context.Context, userID, workspaceID string, cursor *Cursor) ([]models.Notification, *Cursor, error) {
	page, err := l.pager.PageNotifications(ctx, userID, workspaceID, cursor, l.pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("load notifications page: %w", err)
	}
	if len(page) > l.pageSize {
		page = page[:l.pageSize]
	}
	if len(page) < l.pageSize {
		return page, nil, nil
	}
	return page, CursorAfter(page[len(page)-1]), nil
}
