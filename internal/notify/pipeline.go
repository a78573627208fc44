package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anonto42/reelnote/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

// Pipeline turns a feedback or reply write into notifications and pushes.
// Each call is an independent invocation; the only shared state is the
// collaborators, which must be safe for concurrent use.
type Pipeline struct {
	resolver   *Resolver
	writer     *Writer
	dispatcher *Dispatcher
	feedbacks  FeedbackSource
	users      UserDirectory
	videos     VideoCatalog
	log        *slog.Logger
}

type PipelineDeps struct {
	Resolver   *Resolver
	Writer     *Writer
	Dispatcher *Dispatcher
	Feedbacks  FeedbackSource
	Users      UserDirectory
	Videos     VideoCatalog
	Logger     *slog.Logger
}

func NewPipeline(d PipelineDeps) *Pipeline {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		resolver:   d.Resolver,
		writer:     d.Writer,
		dispatcher: d.Dispatcher,
		feedbacks:  d.Feedbacks,
		users:      d.Users,
		videos:     d.Videos,
		log:        log,
	}
}

// OnFeedbackCreated notifies the users tagged in a new feedback.
// The run ignores cancellation of ctx so a started event is never left
// with a canonical row and no recipient rows.
func (p *Pipeline) OnFeedbackCreated(ctx context.Context, fb *models.Feedback) Outcome {
	ctx = context.WithoutCancel(ctx)
	if len(fb.TaggedUserIDs) == 0 {
		return aborted(KindFeedback, ReasonNoTags, nil)
	}

	receivers := p.resolver.ResolveFeedback(ctx, fb.AuthorID, fb.TaggedUserIDs)
	if len(receivers) == 0 {
		return aborted(KindFeedback, ReasonNoReceivers, nil)
	}

	return p.deliver(ctx, KindFeedback, WriteRequest{
		SenderID:    fb.AuthorID,
		ReceiverIDs: receivers,
		FeedbackID:  fb.ID.Hex(),
		VideoID:     fb.VideoID,
		WorkspaceID: fb.WorkspaceID,
		Content:     fb.Content,
	})
}

// OnReplyCreated notifies the parent feedback author and the users tagged in the reply.
// Cancellation of ctx is ignored, as in OnFeedbackCreated.
func (p *Pipeline) OnReplyCreated(ctx context.Context, reply *models.Reply) Outcome {
	ctx = context.WithoutCancel(ctx)
	parent, err := p.feedbacks.GetFeedbackByID(ctx, reply.FeedbackID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return aborted(KindReply, ReasonMissingParent, err)
		}
		return failed(KindReply, StageResolve, fmt.Errorf("load feedback %s: %w", reply.FeedbackID, err))
	}
	if parent.AuthorID == "" || parent.WorkspaceID == "" || parent.VideoID == "" {
		return aborted(KindReply, ReasonMissingParent,
			fmt.Errorf("feedback %s is missing author, workspace or video: %w", reply.FeedbackID, ErrNotFound))
	}

	receivers := p.resolver.ResolveReply(ctx, parent.AuthorID, reply.AuthorID, reply.TaggedUserIDs)
	if len(receivers) == 0 {
		if parent.AuthorID == reply.AuthorID {
			return aborted(KindReply, ReasonSelfReply, nil)
		}
		return aborted(KindReply, ReasonNoReceivers, nil)
	}

	return p.deliver(ctx, KindReply, WriteRequest{
		SenderID:    reply.AuthorID,
		ReceiverIDs: receivers,
		FeedbackID:  reply.FeedbackID,
		ReplyID:     reply.ID.Hex(),
		VideoID:     parent.VideoID,
		WorkspaceID: parent.WorkspaceID,
		Content:     reply.Content,
	})
}

// deliver runs write -> enrich -> dispatch for a resolved audience.
func (p *Pipeline) deliver(ctx context.Context, kind EventKind, req WriteRequest) Outcome {
	written, err := p.writer.Write(ctx, req)
	if err != nil {
		return failed(kind, StageWrite, err)
	}
	n := written.Notification

	sender, video, err := p.lookupMetadata(ctx, req.SenderID, req.VideoID)
	if err != nil {
		var out Outcome
		if errors.Is(err, ErrNotFound) {
			out = aborted(kind, ReasonMissingMetadata, err)
		} else {
			out = failed(kind, StageEnrich, err)
		}
		out.NotificationID = n.ID
		out.Recipients = n.ReceiverIDs
		return out
	}

	report := p.dispatcher.Dispatch(ctx, Push{
		NotificationID: n.ID,
		Kind:           kind,
		SenderName:     sender.DisplayName,
		Content:        n.Content,
		VideoID:        n.VideoID,
		VideoTitle:     video.Title,
		VideoURL:       video.URL,
	}, n.ReceiverIDs)

	return Outcome{
		Kind:           OutcomeDispatched,
		Event:          kind,
		NotificationID: n.ID,
		Recipients:     n.ReceiverIDs,
		Report:         report,
	}
}

func (p *Pipeline) lookupMetadata(ctx context.Context, senderID, videoID string) (*models.User, *models.Video, error) {
	var (
		sender *models.User
		video  *models.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := p.users.GetUserByID(gctx, senderID)
		if err != nil {
			return fmt.Errorf("load sender %s: %w", senderID, err)
		}
		sender = u
		return nil
	})
	g.Go(func() error {
		v, err := p.videos.GetVideoByID(gctx, videoID)
		if err != nil {
			return fmt.Errorf("load video %s: %w", videoID, err)
		}
		video = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sender, video, nil
}
