package notify

import (
	"context"
	"log/slog"
)

type OutcomeKind string

const (
	OutcomeAborted    OutcomeKind = "aborted"
	OutcomeFailed     OutcomeKind = "failed"
	OutcomeDispatched OutcomeKind = "dispatched"
)

type Stage string

const (
	StageResolve  Stage = "resolve"
	StageWrite    Stage = "write"
	StageEnrich   Stage = "enrich"
	StageDispatch Stage = "dispatch"
)

// Abort reasons.
const (
	ReasonNoTags          = "feedback has no tagged users"
	ReasonNoReceivers     = "no eligible receivers"
	ReasonSelfReply       = "reply on own feedback without tags"
	ReasonMissingParent   = "parent feedback unavailable"
	ReasonMissingMetadata = "sender or video metadata unavailable"
)

// Outcome is the terminal state of one trigger invocation.
type Outcome struct {
	Kind           OutcomeKind
	Event          EventKind
	Reason         string
	Stage          Stage
	Err            error
	NotificationID string
	Recipients     []string
	Report         DispatchReport
}

func aborted(event EventKind, reason string, cause error) Outcome {
	return Outcome{Kind: OutcomeAborted, Event: event, Reason: reason, Err: cause}
}

func failed(event EventKind, stage Stage, cause error) Outcome {
	return Outcome{Kind: OutcomeFailed, Event: event, Stage: stage, Err: cause}
}

// Log writes the outcome once, at a level matching its severity:
// plain aborts at info, aborts caused by a missing reference and failures at error.
func (o Outcome) Log(ctx context.Context, log *slog.Logger, attrs ...any) {
	attrs = append(attrs, "event_kind", string(o.Event), "outcome", string(o.Kind))
	if o.NotificationID != "" {
		attrs = append(attrs, "notification_id", o.NotificationID)
	}

	switch o.Kind {
	case OutcomeAborted:
		attrs = append(attrs, "reason", o.Reason)
		if o.Err != nil {
			log.ErrorContext(ctx, "notification aborted", append(attrs, "error", o.Err)...)
			return
		}
		log.InfoContext(ctx, "notification aborted", attrs...)
	case OutcomeFailed:
		log.ErrorContext(ctx, "notification failed", append(attrs, "stage", string(o.Stage), "error", o.Err)...)
	default:
		log.InfoContext(ctx, "notification dispatched", append(attrs,
			"recipients", len(o.Recipients),
			"sent", len(o.Report.Sent),
			"skipped", len(o.Report.Skipped),
			"failed", len(o.Report.Failed))...)
	}
}
