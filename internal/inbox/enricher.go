package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"golang.org/x/sync/errgroup"
)

type Kind string

const (
	KindFeedback Kind = "feedback"
	KindReply    Kind = "reply"
)

// Item is a display-ready notification. It is rebuilt on every load.
type Item struct {
	NotificationID string    `json:"notification_id"`
	Kind           Kind      `json:"kind"`
	VideoID        string    `json:"video_id"`
	VideoTitle     string    `json:"video_title"`
	VideoURL       string    `json:"video_url"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	IsRead         bool      `json:"is_read"`
	WorkspaceID    string    `json:"workspace_id"`
}

// Lookups resolves the data joined into an Item.
type Lookups interface {
	VideoMeta(ctx context.Context, videoID string) (models.VideoMeta, error)
	SenderName(ctx context.Context, userID string) (string, error)
	IsRead(ctx context.Context, userID, notificationID string) (bool, error)
}

const maxParallelItems = 8

// Enricher hydrates canonical notifications into Items.
type Enricher struct {
	lookups Lookups
	log     *slog.Logger
}

func NewEnricher(lookups Lookups, log *slog.Logger) *Enricher {
	if log == nil {
		log = slog.Default()
	}
	return &Enricher{lookups: lookups, log: log}
}

// Enrich builds Items for a page concurrently. A notification whose lookups
// fail is left out of the result, except that a missing read state counts
// as unread. The batch is sorted newest first.
func (e *Enricher) Enrich(ctx context.Context, userID string, page []models.Notification) []Item {
	var (
		mu    sync.Mutex
		items = make([]Item, 0, len(page))
		g     errgroup.Group
	)
	g.SetLimit(maxParallelItems)
	for _, n := range page {
		g.Go(func() error {
			item, err := e.enrichOne(ctx, userID, n)
			if err != nil {
				e.log.WarnContext(ctx, "dropping notification from inbox batch",
					"notification_id", n.ID, "user_id", userID, "error", err)
				return nil
			}
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	SortNewestFirst(items)
	return items
}

func (e *Enricher) enrichOne(ctx context.Context, userID string, n models.Notification) (Item, error) {
	item := Item{
		NotificationID: n.ID,
		Kind:           KindFeedback,
		VideoID:        n.VideoID,
		Content:        n.Content,
		CreatedAt:      n.CreatedAt,
		WorkspaceID:    n.WorkspaceID,
	}
	if n.IsReply() {
		item.Kind = KindReply
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta, err := e.lookups.VideoMeta(gctx, n.VideoID)
		if err != nil {
			return fmt.Errorf("video %s: %w", n.VideoID, err)
		}
		item.VideoTitle, item.VideoURL = meta.Title, meta.URL
		return nil
	})
	g.Go(func() error {
		name, err := e.lookups.SenderName(gctx, n.SenderID)
		if err != nil {
			return fmt.Errorf("sender %s: %w", n.SenderID, err)
		}
		item.SenderName = name
		return nil
	})
	g.Go(func() error {
		read, err := e.lookups.IsRead(gctx, userID, n.ID)
		switch {
		case errors.Is(err, notify.ErrNotFound):
			// recipient row not written yet; reconciliation recreates it unread
			e.log.InfoContext(ctx, "missing recipient row, showing as unread",
				"notification_id", n.ID, "user_id", userID)
			read = false
		case err != nil:
			return fmt.Errorf("read state: %w", err)
		}
		item.IsRead = read
		return nil
	})
	if err := g.Wait(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// SortNewestFirst orders items by creation time descending, ties by id.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].NotificationID > items[j].NotificationID
	})
}
