package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NewNotificationID returns a fresh uppercase UUID.
func NewNotificationID() string {
	return strings.ToUpper(uuid.NewString())
}

// WriteRequest carries the resolved audience and event metadata.
type WriteRequest struct {
	SenderID    string
	ReceiverIDs []string
	FeedbackID  string
	ReplyID     string // empty for feedback events
	VideoID     string
	WorkspaceID string
	Content     string
}

// WriteResult reports which recipient rows were persisted.
type WriteResult struct {
	Notification *models.Notification
	Written      []string
	Failed       []string
}

// Writer is the only producer of Notification and RecipientNotification records.
type Writer struct {
	store NotificationStore
	newID func() string
	log   *slog.Logger
}

func NewWriter(store NotificationStore, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{store: store, newID: NewNotificationID, log: log}
}

// Write persists the canonical record, then one recipient row per receiver.
// The id is generated before any write. A failure on the canonical record is
// returned and nothing else is written; recipient rows are best effort.
func (w *Writer) Write(ctx context.Context, req WriteRequest) (*WriteResult, error) {
	if len(req.ReceiverIDs) == 0 {
		return nil, fmt.Errorf("write notification: empty receiver set")
	}

	n := &models.Notification{
		ID:          w.newID(),
		SenderID:    req.SenderID,
		ReceiverIDs: append([]string(nil), req.ReceiverIDs...),
		FeedbackID:  req.FeedbackID,
		VideoID:     req.VideoID,
		WorkspaceID: req.WorkspaceID,
		Content:     req.Content,
	}
	if req.ReplyID != "" {
		replyID := req.ReplyID
		n.ReplyID = &replyID
	}

	if err := w.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification %s: %w", n.ID, err)
	}

	res := &WriteResult{Notification: n}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxParallelChecks)
	for _, userID := range n.ReceiverIDs {
		g.Go(func() error {
			rn := &models.RecipientNotification{
				NotificationID: n.ID,
				UserID:         userID,
				WorkspaceID:    n.WorkspaceID,
				CreatedAt:      n.CreatedAt,
				UpdatedAt:      n.CreatedAt,
			}
			err := w.store.CreateRecipientNotification(ctx, rn)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				w.log.ErrorContext(ctx, "recipient notification write failed",
					"notification_id", n.ID, "user_id", userID, "error", err)
				res.Failed = append(res.Failed, userID)
				return nil
			}
			res.Written = append(res.Written, userID)
			return nil
		})
	}
	_ = g.Wait()

	return res, nil
}
