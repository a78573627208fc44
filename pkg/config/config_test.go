package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DEEP_LINK_SCHEME", "PUSH_LOCALE", "BADGE_WINDOW_DAYS", "INBOX_PAGE_SIZE", "WATCH_CHANGE_STREAMS", "MONGO_DATABASE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "reelnote", cfg.DeepLinkScheme)
	assert.Equal(t, "en", cfg.PushLocale)
	assert.Equal(t, 30, cfg.BadgeWindowDays)
	assert.Equal(t, 30*24*time.Hour, cfg.BadgeWindow())
	assert.Equal(t, 20, cfg.InboxPageSize)
	assert.False(t, cfg.WatchChangeStreams)
	assert.Equal(t, "reelnote", cfg.MongoDatabase)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PUSH_LOCALE", "ko")
	t.Setenv("BADGE_WINDOW_DAYS", "7")
	t.Setenv("INBOX_PAGE_SIZE", "not-a-number")
	t.Setenv("WATCH_CHANGE_STREAMS", "true")

	cfg := Load()

	assert.Equal(t, "ko", cfg.PushLocale)
	assert.Equal(t, 7, cfg.BadgeWindowDays)
	assert.Equal(t, 20, cfg.InboxPageSize)
	assert.True(t, cfg.WatchChangeStreams)
}
