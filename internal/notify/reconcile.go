package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anonto42/reelnote/backend/internal/models"
)

// Reconciler recreates recipient rows lost to best-effort fan-out,
// using the canonical record as source of truth.
type Reconciler struct {
	store ReconcileStore
	log   *slog.Logger
}

func NewReconciler(store ReconcileStore, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{store: store, log: log}
}

// ReconcileUser creates the missing recipient rows of userID and returns how
// many were created. Rows that already exist are left untouched, so running
// it twice is safe.
func (r *Reconciler) ReconcileUser(ctx context.Context, userID string) (int, error) {
	missing, err := r.store.ListMissingRecipientNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list missing notifications for %s: %w", userID, err)
	}

	created := 0
	for _, n := range missing {
		if !n.HasReceiver(userID) {
			continue
		}
		rn := &models.RecipientNotification{
			NotificationID: n.ID,
			UserID:         userID,
			WorkspaceID:    n.WorkspaceID,
			CreatedAt:      n.CreatedAt,
			UpdatedAt:      n.CreatedAt,
		}
		if err := r.store.CreateRecipientNotification(ctx, rn); err != nil {
			return created, fmt.Errorf("restore notification %s for %s: %w", n.ID, userID, err)
		}
		created++
	}

	if created > 0 {
		r.log.InfoContext(ctx, "recipient notifications restored", "user_id", userID, "count", created)
	}
	return created, nil
}
