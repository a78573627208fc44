package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"golang.org/x/sync/errgroup"
)

// Data payload keys read by the mobile client on tap.
const (
	DataKeyLink           = "link"
	DataKeyNotificationID = "notificationId"
)

// Push is the rendered content shared by every recipient of one notification.
type Push struct {
	NotificationID string
	Kind           EventKind
	SenderName     string
	Content        string
	VideoID        string
	VideoTitle     string
	VideoURL       string
}

// DispatchReport lists recipients by delivery result.
type DispatchReport struct {
	Sent    []string `json:"sent"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
}

// Dispatcher sends one push per recipient with a freshly computed badge.
type Dispatcher struct {
	messenger Messenger
	tokens    TokenStore
	badges    *BadgeAggregator
	scheme    string
	locale    Locale
	now       func() time.Time
	log       *slog.Logger
}

type DispatcherConfig struct {
	DeepLinkScheme string
	Locale         string
}

func NewDispatcher(messenger Messenger, tokens TokenStore, badges *BadgeAggregator, cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	scheme := cfg.DeepLinkScheme
	if scheme == "" {
		scheme = "reelnote"
	}
	return &Dispatcher{
		messenger: messenger,
		tokens:    tokens,
		badges:    badges,
		scheme:    scheme,
		locale:    LocaleFor(cfg.Locale),
		now:       time.Now,
		log:       log,
	}
}

// Dispatch sends push to every recipient concurrently. Each send is isolated:
// a missing token skips that recipient, a send error is recorded and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, push Push, recipients []string) DispatchReport {
	title := d.locale.Title(push.SenderName, push.Kind)
	link := DeepLink(d.scheme, push.VideoID, push.VideoTitle, push.VideoURL)

	var (
		report DispatchReport
		mu     sync.Mutex
		g      errgroup.Group
	)
	record := func(list *[]string, userID string) {
		mu.Lock()
		*list = append(*list, userID)
		mu.Unlock()
	}

	g.SetLimit(maxParallelChecks)
	for _, userID := range recipients {
		g.Go(func() error {
			log := d.log.With("notification_id", push.NotificationID, "user_id", userID)

			token, err := d.tokens.DeviceToken(ctx, userID)
			if err != nil {
				if errors.Is(err, ErrNoToken) || errors.Is(err, ErrNotFound) {
					log.InfoContext(ctx, "no device token, skipping push")
				} else {
					log.ErrorContext(ctx, "device token lookup failed", "error", err)
				}
				record(&report.Skipped, userID)
				return nil
			}

			var badge *int
			if count, err := d.badges.UnreadCount(ctx, userID, d.now()); err != nil {
				log.WarnContext(ctx, "unread count failed, sending without badge", "error", err)
			} else {
				badge = &count
			}

			msg := buildMessage(token, title, push, link, badge)
			if _, err := d.messenger.Send(ctx, msg); err != nil {
				log.ErrorContext(ctx, "push send failed", "error", err)
				record(&report.Failed, userID)
				return nil
			}
			log.DebugContext(ctx, "push sent")
			record(&report.Sent, userID)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func buildMessage(token, title string, push Push, link string, badge *int) *messaging.Message {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  push.Content,
		},
		Data: map[string]string{
			DataKeyLink:           link,
			DataKeyNotificationID: push.NotificationID,
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Badge: badge, Sound: "default"},
			},
		},
	}
	if badge != nil {
		msg.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{NotificationCount: badge},
		}
	}
	return msg
}
