package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"github.com/anonto42/reelnote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// EventPipeline runs the notification flow for a created document
type EventPipeline interface {
	OnFeedbackCreated(ctx context.Context, fb *models.Feedback) notify.Outcome
	OnReplyCreated(ctx context.Context, reply *models.Reply) notify.Outcome
}

// UserReconciler backfills missing recipient rows
type UserReconciler interface {
	ReconcileUser(ctx context.Context, userID string) (int, error)
}

// TriggerHandler receives document-created webhooks from the upstream writers
type TriggerHandler struct {
	feedbackRepository repositories.FeedbackRepository
	pipeline           EventPipeline
	reconciler         UserReconciler
	log                *slog.Logger
}

func NewTriggerHandler(feedbackRepo repositories.FeedbackRepository, pipeline EventPipeline, reconciler UserReconciler, log *slog.Logger) *TriggerHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TriggerHandler{
		feedbackRepository: feedbackRepo,
		pipeline:           pipeline,
		reconciler:         reconciler,
		log:                log.With("component", "trigger_handler"),
	}
}

// RegisterTriggerRoutes registers the creation webhooks. They must not be
// served while the change stream watcher runs, or every event fans out twice.
func (h *TriggerHandler) RegisterTriggerRoutes(g *echo.Group) {
	g.POST("/triggers/feedback", h.FeedbackCreated)
	g.POST("/triggers/reply", h.ReplyCreated)
}

// RegisterReconcileRoutes registers the repair route, served in both trigger modes
func (h *TriggerHandler) RegisterReconcileRoutes(g *echo.Group) {
	g.POST("/reconcile/:user_id", h.Reconcile)
}

// outcomeResponse is returned for every outcome; aborts and failures are not HTTP errors
type outcomeResponse struct {
	Outcome        string   `json:"outcome"`
	Reason         string   `json:"reason,omitempty"`
	Stage          string   `json:"stage,omitempty"`
	NotificationID string   `json:"notification_id,omitempty"`
	Recipients     []string `json:"recipients"`
	Sent           int      `json:"sent"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
}

func newOutcomeResponse(o notify.Outcome) outcomeResponse {
	recipients := o.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	return outcomeResponse{
		Outcome:        string(o.Kind),
		Reason:         o.Reason,
		Stage:          string(o.Stage),
		NotificationID: o.NotificationID,
		Recipients:     recipients,
		Sent:           len(o.Report.Sent),
		Skipped:        len(o.Report.Skipped),
		Failed:         len(o.Report.Failed),
	}
}

// FeedbackCreated loads the feedback and runs the pipeline
func (h *TriggerHandler) FeedbackCreated(c echo.Context) error {
	var req models.FeedbackCreatedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	fb, err := h.feedbackRepository.GetFeedbackByID(ctx, req.FeedbackID)
	if err != nil {
		return httpError(err, "Feedback")
	}

	// the caller hanging up must not interrupt a half-written fan-out
	ctx = context.WithoutCancel(ctx)
	outcome := h.pipeline.OnFeedbackCreated(ctx, fb)
	outcome.Log(ctx, h.log, "feedback_id", req.FeedbackID)
	return c.JSON(http.StatusOK, newOutcomeResponse(outcome))
}

// ReplyCreated loads the reply and runs the pipeline
func (h *TriggerHandler) ReplyCreated(c echo.Context) error {
	var req models.ReplyCreatedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	reply, err := h.feedbackRepository.GetReplyByID(ctx, req.ReplyID)
	if err != nil {
		return httpError(err, "Reply")
	}

	ctx = context.WithoutCancel(ctx)
	outcome := h.pipeline.OnReplyCreated(ctx, reply)
	outcome.Log(ctx, h.log, "reply_id", req.ReplyID, "feedback_id", reply.FeedbackID)
	return c.JSON(http.StatusOK, newOutcomeResponse(outcome))
}

// Reconcile creates missing recipient rows for one user
func (h *TriggerHandler) Reconcile(c echo.Context) error {
	userID := c.Param("user_id")
	created, err := h.reconciler.ReconcileUser(c.Request().Context(), userID)
	if err != nil {
		return httpError(err, "User")
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "created": created})
}
