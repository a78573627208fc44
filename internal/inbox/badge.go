package inbox

import (
	"sync"
	"time"
)

// BadgeSnapshot is the locally cached unread count. Count was last confirmed
// by the server at ConfirmedAt and has since received Decrements optimistic
// decrements. Version increases on every change.
type BadgeSnapshot struct {
	Count       int       `json:"count"`
	ConfirmedAt time.Time `json:"confirmed_at"`
	Decrements  int       `json:"decrements"`
	Version     uint64    `json:"version"`
}

// Badge is an observable, best-effort mirror of the server unread count.
type Badge struct {
	mu   sync.Mutex
	snap BadgeSnapshot
	subs map[chan BadgeSnapshot]struct{}
}

func NewBadge() *Badge {
	return &Badge{subs: make(map[chan BadgeSnapshot]struct{})}
}

// Snapshot returns the current value.
func (b *Badge) Snapshot() BadgeSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// Confirm replaces the cached value with an authoritative count.
func (b *Badge) Confirm(count int, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if count < 0 {
		count = 0
	}
	b.snap = BadgeSnapshot{Count: count, ConfirmedAt: at, Version: b.snap.Version + 1}
	b.publish()
}

// Decrement lowers the count by one, never below zero.
func (b *Badge) Decrement() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snap.Count == 0 {
		return
	}
	b.snap.Count--
	b.snap.Decrements++
	b.snap.Version++
	b.publish()
}

// Subscribe returns a channel receiving every new snapshot and a cancel func.
// Slow subscribers miss intermediate values but always see the latest one
// once they catch up.
func (b *Badge) Subscribe() (<-chan BadgeSnapshot, func()) {
	ch := make(chan BadgeSnapshot, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	ch <- b.snap
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// publish must be called with b.mu held.
func (b *Badge) publish() {
	for ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- b.snap
	}
}
