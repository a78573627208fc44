package notify

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// maxParallelChecks bounds concurrent lookups issued by a single event.
const maxParallelChecks = 16

// Resolver computes the final audience of a feedback or reply event.
type Resolver struct {
	blocks BlockRegistry
	log    *slog.Logger
}

func NewResolver(blocks BlockRegistry, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{blocks: blocks, log: log}
}

// ResolveFeedback returns the tagged users that have not blocked the sender.
// The sender is never part of the result, even when self-tagged.
// An empty result means no notification must be created.
func (r *Resolver) ResolveFeedback(ctx context.Context, senderID string, tagged []string) []string {
	allowed := r.filterBlocked(ctx, senderID, uniqueIDs(tagged))
	return without(allowed, senderID)
}

// ResolveReply returns the audience of a reply: the parent feedback author
// (unless they wrote the reply) plus tagged users that have not blocked the
// reply author. The reply author is always removed.
func (r *Resolver) ResolveReply(ctx context.Context, feedbackAuthorID, replyAuthorID string, tagged []string) []string {
	allowed := r.filterBlocked(ctx, replyAuthorID, uniqueIDs(tagged))
	if feedbackAuthorID == replyAuthorID && len(allowed) == 0 {
		return nil
	}

	candidates := allowed
	if feedbackAuthorID != replyAuthorID {
		candidates = uniqueIDs(append([]string{feedbackAuthorID}, allowed...))
	}
	return without(candidates, replyAuthorID)
}

// filterBlocked checks every candidate in parallel and keeps the input order.
// A candidate whose block lookup fails is dropped: a user who may have blocked
// the sender is never notified.
func (r *Resolver) filterBlocked(ctx context.Context, senderID string, candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}

	keep := make([]bool, len(candidates))
	var g errgroup.Group
	g.SetLimit(maxParallelChecks)
	for i, candidate := range candidates {
		g.Go(func() error {
			blocked, err := r.blocks.IsBlocked(ctx, candidate, senderID)
			if err != nil {
				r.log.WarnContext(ctx, "block lookup failed, dropping candidate",
					"recipient_id", candidate, "sender_id", senderID, "error", err)
				return nil
			}
			if blocked {
				r.log.InfoContext(ctx, "recipient blocks sender", "recipient_id", candidate, "sender_id", senderID)
				return nil
			}
			keep[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(candidates))
	for i, candidate := range candidates {
		if keep[i] {
			out = append(out, candidate)
		}
	}
	return out
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func without(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
