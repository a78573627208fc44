package notify

import (
	"context"
	"time"
)

// DefaultBadgeWindow bounds the unread count without deleting older rows.
const DefaultBadgeWindow = 30 * 24 * time.Hour

// BadgeAggregator computes a user's unread count over a rolling window.
// It holds no state, so concurrent calls for many users are independent.
type BadgeAggregator struct {
	counter UnreadCounter
	window  time.Duration
}

func NewBadgeAggregator(counter UnreadCounter, window time.Duration) *BadgeAggregator {
	if window <= 0 {
		window = DefaultBadgeWindow
	}
	return &BadgeAggregator{counter: counter, window: window}
}

// UnreadCount counts unread rows for userID created at or after now-window.
func (b *BadgeAggregator) UnreadCount(ctx context.Context, userID string, now time.Time) (int, error) {
	count, err := b.counter.CountUnreadSince(ctx, userID, now.Add(-b.window))
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
