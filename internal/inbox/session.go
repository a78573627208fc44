package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ReadMarker sets isRead on the caller's recipient row. Marking an already
// read notification must succeed.
type ReadMarker interface {
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// UnreadCounter returns the authoritative badge count.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// Mutator is the only writer of read state after creation.
type Mutator struct {
	marker ReadMarker
	badge  *Badge
}

func NewMutator(marker ReadMarker, badge *Badge) *Mutator {
	return &Mutator{marker: marker, badge: badge}
}

// MarkRead marks the notification read and, when it was unread, decrements
// the cached badge instead of re-querying the count.
func (m *Mutator) MarkRead(ctx context.Context, userID, notificationID string, wasUnread bool) error {
	if err := m.marker.MarkRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}
	if wasUnread {
		m.badge.Decrement()
	}
	return nil
}

// Session holds one user's inbox for one workspace: the merged item list,
// the pagination cursor and the cached badge. Methods are safe to call from
// multiple goroutines; visible state only changes under the session lock.
type Session struct {
	userID      string
	workspaceID string

	loader   *Loader
	enricher *Enricher
	lookups  Lookups
	mutator  *Mutator
	counter  UnreadCounter
	badge    *Badge
	now      func() time.Time
	log      *slog.Logger

	loading atomic.Bool

	mu          sync.Mutex
	items       []Item
	seen        map[string]struct{}
	cursor      *Cursor
	canLoadMore bool
}

type SessionDeps struct {
	Pager   Pager
	Lookups Lookups
	Marker  ReadMarker
	Counter UnreadCounter
	Logger  *slog.Logger
}

func NewSession(userID, workspaceID string, d SessionDeps) *Session {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	badge := NewBadge()
	return &Session{
		userID:      userID,
		workspaceID: workspaceID,
		loader:      NewLoader(d.Pager, PageSize),
		enricher:    NewEnricher(d.Lookups, log),
		lookups:     d.Lookups,
		mutator:     NewMutator(d.Marker, badge),
		counter:     d.Counter,
		badge:       badge,
		now:         time.Now,
		log:         log.With("user_id", userID, "workspace_id", workspaceID),
		seen:        make(map[string]struct{}),
		canLoadMore: true,
	}
}

// Reset clears the cursor and the in-memory list.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.seen = make(map[string]struct{})
	s.cursor = nil
	s.canLoadMore = true
}

// LoadNotifications loads and merges the next page, or the first page when
// reset is true. It is a no-op while another load is in flight or when there
// is nothing more to load. Visible state only changes when the load succeeds,
// so a failed or cancelled refresh keeps the current list.
func (s *Session) LoadNotifications(ctx context.Context, reset bool) error {
	if !s.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.loading.Store(false)

	var cursor *Cursor
	if !reset {
		s.mu.Lock()
		more := s.canLoadMore
		cursor = s.cursor
		s.mu.Unlock()
		if !more {
			return nil
		}
	}

	page, next, err := s.loader.Load(ctx, s.userID, s.workspaceID, cursor)
	if err != nil {
		return err
	}
	batch := s.enricher.Enrich(ctx, s.userID, page)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reset {
		s.items = nil
		s.seen = make(map[string]struct{})
	}
	for _, item := range batch {
		if _, dup := s.seen[item.NotificationID]; dup {
			continue
		}
		s.seen[item.NotificationID] = struct{}{}
		s.items = append(s.items, item)
	}
	s.cursor = next
	s.canLoadMore = next != nil
	return nil
}

// Refresh reloads the first page and re-confirms the badge from the server.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.LoadNotifications(ctx, true); err != nil {
		return err
	}
	return s.RefreshBadge(ctx)
}

// RefreshBadge replaces the cached badge with the server count.
func (s *Session) RefreshBadge(ctx context.Context) error {
	count, err := s.counter.UnreadCount(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("refresh unread count: %w", err)
	}
	s.badge.Confirm(count, s.now())
	return nil
}

// MarkAsRead marks a notification read and updates the local item and badge.
// A notification that is not in the loaded list, such as one opened from a
// push before the inbox loaded, has its read state fetched first.
func (s *Session) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	s.mu.Lock()
	wasUnread := false
	idx := -1
	for i := range s.items {
		if s.items[i].NotificationID == notificationID {
			idx = i
			wasUnread = !s.items[i].IsRead
			break
		}
	}
	s.mu.Unlock()

	if idx < 0 {
		read, err := s.lookups.IsRead(ctx, userID, notificationID)
		if err != nil {
			// the badge is floored and re-confirmed on refresh
			s.log.DebugContext(ctx, "read state unknown, assuming unread",
				"notification_id", notificationID, "error", err)
		}
		wasUnread = err != nil || !read
	}

	if err := s.mutator.MarkRead(ctx, userID, notificationID, wasUnread); err != nil {
		s.log.WarnContext(ctx, "mark as read failed", "notification_id", notificationID, "error", err)
		return err
	}

	if idx >= 0 {
		s.mu.Lock()
		if idx < len(s.items) && s.items[idx].NotificationID == notificationID {
			s.items[idx].IsRead = true
		}
		s.mu.Unlock()
	}
	return nil
}

// Items returns a copy of the merged list.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

func (s *Session) CanLoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canLoadMore
}

func (s *Session) Loading() bool {
	return s.loading.Load()
}

// Badge returns the observable unread count.
func (s *Session) Badge() *Badge {
	return s.badge
}

// SubscribeBadge streams badge snapshots until cancel is called.
func (s *Session) SubscribeBadge() (<-chan BadgeSnapshot, func()) {
	return s.badge.Subscribe()
}
