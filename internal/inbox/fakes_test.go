package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
)

var base = time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryPager keeps notifications newest first and pages with keyset cursors.
type memoryPager struct {
	mu    sync.Mutex
	all   []models.Notification
	calls int
	err   error
	// gate, when set, blocks PageNotifications until closed or ctx is done.
	gate    chan struct{}
	entered chan struct{}
}

func newMemoryPager(n int) *memoryPager {
	p := &memoryPager{}
	for i := 0; i < n; i++ {
		p.insert(notification(i))
	}
	return p
}

func notification(i int) models.Notification {
	n := models.Notification{
		ID:          fmt.Sprintf("N%03d", i),
		SenderID:    "sam",
		ReceiverIDs: []string{"alice"},
		FeedbackID:  fmt.Sprintf("F%03d", i),
		VideoID:     "V1",
		WorkspaceID: "ws-1",
		Content:     fmt.Sprintf("note %d", i),
		CreatedAt:   base.Add(time.Duration(i) * time.Minute),
	}
	if i%3 == 0 {
		reply := fmt.Sprintf("R%03d", i)
		n.ReplyID = &reply
	}
	return n
}

func (p *memoryPager) insert(n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.all = append(p.all, n)
	sort.Slice(p.all, func(i, j int) bool {
		if !p.all[i].CreatedAt.Equal(p.all[j].CreatedAt) {
			return p.all[i].CreatedAt.After(p.all[j].CreatedAt)
		}
		return p.all[i].ID > p.all[j].ID
	})
}

func (p *memoryPager) PageNotifications(ctx context.Context, userID, workspaceID string, after *Cursor, limit int) ([]models.Notification, error) {
	p.mu.Lock()
	p.calls++
	gate, entered, failure := p.gate, p.entered, p.err
	p.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Notification
	for _, n := range p.all {
		if n.WorkspaceID != workspaceID || !n.HasReceiver(userID) {
			continue
		}
		if after != nil {
			older := n.CreatedAt.Before(after.CreatedAt) ||
				(n.CreatedAt.Equal(after.CreatedAt) && n.ID < after.ID)
			if !older {
				continue
			}
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeLookups struct {
	mu        sync.Mutex
	read      map[string]bool
	failVideo map[string]bool
	failRead  map[string]bool
	noRow     map[string]bool // notifications without a recipient row
	delay     func(id string) time.Duration
}

func newFakeLookups() *fakeLookups {
	return &fakeLookups{read: map[string]bool{}, failVideo: map[string]bool{}, failRead: map[string]bool{}, noRow: map[string]bool{}}
}

func (f *fakeLookups) VideoMeta(_ context.Context, videoID string) (models.VideoMeta, error) {
	if f.failVideo[videoID] {
		return models.VideoMeta{}, errors.New("video lookup failed")
	}
	return models.VideoMeta{ID: videoID, Title: "Title " + videoID, URL: "https://cdn.example.com/" + videoID}, nil
}

func (f *fakeLookups) SenderName(_ context.Context, userID string) (string, error) {
	return "Name of " + userID, nil
}

func (f *fakeLookups) IsRead(_ context.Context, _ string, notificationID string) (bool, error) {
	if f.delay != nil {
		time.Sleep(f.delay(notificationID))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead[notificationID] {
		return false, errors.New("read state lookup failed")
	}
	if f.noRow[notificationID] {
		return false, notify.ErrNotFound
	}
	return f.read[notificationID], nil
}

func (f *fakeLookups) MarkRead(_ context.Context, _ string, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read[notificationID] = true
	return nil
}

type fixedCounter struct {
	count int
	err   error
}

func (c *fixedCounter) UnreadCount(context.Context, string) (int, error) {
	return c.count, c.err
}

func newTestSession(p *memoryPager, l *fakeLookups, counter *fixedCounter) *Session {
	return NewSession("alice", "ws-1", SessionDeps{
		Pager:   p,
		Lookups: l,
		Marker:  l,
		Counter: counter,
		Logger:  discardLogger(),
	})
}
