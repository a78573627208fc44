package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/reelnote/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBlocks struct {
	edges map[[2]string]bool // {blocker, blocked}
	fail  map[string]bool    // recipients whose lookup errors
}

func (f *fakeBlocks) IsBlocked(_ context.Context, recipientID, senderID string) (bool, error) {
	if f.fail[recipientID] {
		return false, errors.New("block store unavailable")
	}
	return f.edges[[2]string{recipientID, senderID}], nil
}

func blocks(pairs ...[2]string) *fakeBlocks {
	f := &fakeBlocks{edges: map[[2]string]bool{}, fail: map[string]bool{}}
	for _, p := range pairs {
		f.edges[p] = true
	}
	return f
}

type fakeStore struct {
	mu             sync.Mutex
	now            time.Time
	notifications  []*models.Notification
	recipients     map[[2]string]*models.RecipientNotification // {notificationID, userID}
	failCanonical  bool
	failRecipient  map[string]bool
	afterCanonical func()
	honorContext   bool // recipient inserts fail once ctx is done
}

func newFakeStore(now time.Time) *fakeStore {
	return &fakeStore{
		now:           now,
		recipients:    map[[2]string]*models.RecipientNotification{},
		failRecipient: map[string]bool{},
	}
}

func (s *fakeStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if s.failCanonical {
		return errors.New("insert failed")
	}
	s.mu.Lock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now
	}
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	if s.afterCanonical != nil {
		s.afterCanonical()
	}
	return nil
}

func (s *fakeStore) CreateRecipientNotification(ctx context.Context, rn *models.RecipientNotification) error {
	if s.honorContext && ctx.Err() != nil {
		return ctx.Err()
	}
	if s.failRecipient[rn.UserID] {
		return errors.New("insert failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{rn.NotificationID, rn.UserID}
	if _, ok := s.recipients[key]; ok {
		return nil
	}
	copied := *rn
	s.recipients[key] = &copied
	return nil
}

func (s *fakeStore) CountUnreadSince(_ context.Context, userID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rn := range s.recipients {
		if rn.UserID == userID && !rn.IsRead && !rn.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ListMissingRecipientNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if !n.HasReceiver(userID) {
			continue
		}
		if _, ok := s.recipients[[2]string{n.ID, userID}]; ok {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *fakeStore) recipientUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for key := range s.recipients {
		out = append(out, key[1])
	}
	return out
}

type fakeTokens struct {
	tokens map[string]string
}

func (f *fakeTokens) DeviceToken(_ context.Context, userID string) (string, error) {
	if t, ok := f.tokens[userID]; ok {
		return t, nil
	}
	return "", ErrNoToken
}

type fakeMessenger struct {
	mu     sync.Mutex
	sent   []*messaging.Message
	failOn map[string]bool // tokens that fail
}

func (m *fakeMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	if m.failOn[msg.Token] {
		return "", errors.New("unregistered token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return "projects/test/messages/" + msg.Token, nil
}

func (m *fakeMessenger) byToken(token string) *messaging.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.sent {
		if msg.Token == token {
			return msg
		}
	}
	return nil
}

type fakeDirectory struct {
	users     map[string]*models.User
	videos    map[string]*models.Video
	feedbacks map[string]*models.Feedback
}

func (d *fakeDirectory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (d *fakeDirectory) GetVideoByID(_ context.Context, id string) (*models.Video, error) {
	if v, ok := d.videos[id]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (d *fakeDirectory) GetFeedbackByID(_ context.Context, id string) (*models.Feedback, error) {
	if fb, ok := d.feedbacks[id]; ok {
		return fb, nil
	}
	return nil, ErrNotFound
}

// harness wires a Pipeline over fakes.
type harness struct {
	now       time.Time
	store     *fakeStore
	blocks    *fakeBlocks
	tokens    *fakeTokens
	messenger *fakeMessenger
	dir       *fakeDirectory
	pipeline  *Pipeline
	videoID   string
}

func newHarness(b *fakeBlocks) *harness {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	videoID := primitive.NewObjectID()
	h := &harness{
		now:    now,
		store:  newFakeStore(now),
		blocks: b,
		tokens: &fakeTokens{tokens: map[string]string{
			"alice": "tok-alice", "bob": "tok-bob", "carol": "tok-carol", "sam": "tok-sam",
		}},
		messenger: &fakeMessenger{failOn: map[string]bool{}},
		dir: &fakeDirectory{
			users: map[string]*models.User{
				"sam":   {ID: "sam", DisplayName: "Sam"},
				"alice": {ID: "alice", DisplayName: "Alice"},
				"bob":   {ID: "bob", DisplayName: "Bob"},
			},
			videos: map[string]*models.Video{
				videoID.Hex(): {ID: videoID, Title: "Cut 3 final", URL: "https://cdn.example.com/v/3.m3u8"},
			},
			feedbacks: map[string]*models.Feedback{},
		},
		videoID: videoID.Hex(),
	}

	log := discardLogger()
	badges := NewBadgeAggregator(h.store, DefaultBadgeWindow)
	dispatcher := NewDispatcher(h.messenger, h.tokens, badges, DispatcherConfig{DeepLinkScheme: "reelnote", Locale: "en"}, log)
	dispatcher.now = func() time.Time { return now }
	h.pipeline = NewPipeline(PipelineDeps{
		Resolver:   NewResolver(b, log),
		Writer:     NewWriter(h.store, log),
		Dispatcher: dispatcher,
		Feedbacks:  h.dir,
		Users:      h.dir,
		Videos:     h.dir,
		Logger:     log,
	})
	return h
}

func (h *harness) feedback(author string, tagged ...string) *models.Feedback {
	fb := &models.Feedback{
		ID:            primitive.NewObjectID(),
		WorkspaceID:   "ws-1",
		VideoID:       h.videoID,
		AuthorID:      author,
		Content:       "Color shifts at 00:42",
		TaggedUserIDs: tagged,
	}
	h.dir.feedbacks[fb.ID.Hex()] = fb
	return fb
}

func (h *harness) reply(fb *models.Feedback, author string, tagged ...string) *models.Reply {
	return &models.Reply{
		ID:            primitive.NewObjectID(),
		FeedbackID:    fb.ID.Hex(),
		AuthorID:      author,
		Content:       "Fixed in v4",
		TaggedUserIDs: tagged,
	}
}
