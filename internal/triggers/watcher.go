package triggers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Pipeline is the notification flow run for every inserted document.
type Pipeline interface {
	OnFeedbackCreated(ctx context.Context, fb *models.Feedback) notify.Outcome
	OnReplyCreated(ctx context.Context, reply *models.Reply) notify.Outcome
}

// changeEvent is the subset of a change stream event the watcher reads.
type changeEvent[T any] struct {
	OperationType string `bson:"operationType"`
	FullDocument  *T     `bson:"fullDocument"`
}

// Watcher runs the pipeline on feedback and reply inserts, as an alternative
// to the HTTP webhooks.
type Watcher struct {
	feedbacks *mongo.Collection
	replies   *mongo.Collection
	pipeline  Pipeline
	log       *slog.Logger
}

func NewWatcher(db *mongo.Database, pipeline Pipeline, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		feedbacks: db.Collection("feedbacks"),
		replies:   db.Collection("replies"),
		pipeline:  pipeline,
		log:       log.With("component", "change_stream"),
	}
}

// Run watches both collections until ctx is cancelled or a stream fails.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.watch(ctx, w.feedbacks, w.HandleFeedbackEvent)
	})
	g.Go(func() error {
		return w.watch(ctx, w.replies, w.HandleReplyEvent)
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watcher) watch(ctx context.Context, coll *mongo.Collection, handle func(context.Context, bson.Raw) error) error {
	match := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}}}
	stream, err := coll.Watch(ctx, match, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return fmt.Errorf("watch %s: %w", coll.Name(), err)
	}
	defer stream.Close(context.Background())

	w.log.InfoContext(ctx, "watching collection", "collection", coll.Name())
	for stream.Next(ctx) {
		if err := handle(ctx, stream.Current); err != nil {
			w.log.WarnContext(ctx, "skipping change event", "collection", coll.Name(), "error", err)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("change stream %s: %w", coll.Name(), err)
	}
	return ctx.Err()
}

// HandleFeedbackEvent decodes one feedback change event and runs the pipeline.
func (w *Watcher) HandleFeedbackEvent(ctx context.Context, raw bson.Raw) error {
	fb, err := decodeInsert[models.Feedback](raw)
	if err != nil || fb == nil {
		return err
	}
	// shutdown stops the stream, not an event already in flight
	ctx = context.WithoutCancel(ctx)
	outcome := w.pipeline.OnFeedbackCreated(ctx, fb)
	outcome.Log(ctx, w.log, "feedback_id", fb.ID.Hex())
	return nil
}

// HandleReplyEvent decodes one reply change event and runs the pipeline.
func (w *Watcher) HandleReplyEvent(ctx context.Context, raw bson.Raw) error {
	reply, err := decodeInsert[models.Reply](raw)
	if err != nil || reply == nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	outcome := w.pipeline.OnReplyCreated(ctx, reply)
	outcome.Log(ctx, w.log, "reply_id", reply.ID.Hex(), "feedback_id", reply.FeedbackID)
	return nil
}

// decodeInsert returns the inserted document, or nil for any other operation.
func decodeInsert[T any](raw bson.Raw) (*T, error) {
	var ev changeEvent[T]
	if err := bson.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode change event: %w", err)
	}
	if ev.OperationType != "insert" {
		return nil, nil
	}
	if ev.FullDocument == nil {
		return nil, errors.New("insert event without fullDocument")
	}
	return ev.FullDocument, nil
}
