package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/events"
	"github.com/campus-fixit/issue-service/internal/notification"
	"github.com/campus-fixit/issue-service/internal/observability"
	"github.com/campus-fixit/issue-service/internal/repository"
)

// NotificationService turns domain events into student emails.
type NotificationService struct {
	dispatcher  events.Dispatcher
	users       repository.UserRepository
	mailer      notification.Mailer
	metrics     *observability.Metrics
	logger      *zap.Logger
	sendTimeout time.Duration
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher  events.Dispatcher
	UserRepo    repository.UserRepository
	Mailer      notification.Mailer
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	SendTimeout time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:  deps.Dispatcher,
		users:       deps.UserRepo,
		mailer:      deps.Mailer,
		metrics:     deps.Metrics,
		logger:      logger,
		sendTimeout: deps.SendTimeout,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueCreated, n.handleIssueCreated)
	n.dispatcher.Subscribe(events.EventIssueUpdated, n.handleIssueUpdated)
}

func (n *NotificationService) handleIssueCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("IssueCreated",
		zap.String("issue_id", event.IssueID),
		zap.String("owner_id", payload.OwnerID),
		zap.String("category", string(payload.Category)),
		zap.Bool("has_image", payload.HasImage))
	return nil
}

// handleIssueUpdated emails the reporting student. A missing admin only drops
// the "updated by" line; a missing student drops the email.
func (n *NotificationService) handleIssueUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if n.mailer == nil {
		return nil
	}

	student, err := n.users.GetByID(ctx, payload.OwnerID)
	if err != nil {
		n.metrics.NotificationFailed()
		if errors.Is(err, repository.ErrNotFound) {
			n.logger.Warn("issue owner not found; skipping email",
				zap.String("issue_id", event.IssueID),
				zap.String("owner_id", payload.OwnerID))
			return nil
		}
		return fmt.Errorf("load issue owner: %w", err)
	}

	adminName := ""
	if admin, err := n.users.GetByID(ctx, event.Actor.UserID); err == nil {
		adminName = admin.Name
	}

	msg, err := notification.NewStatusUpdateMessage(student.Email, notification.StatusUpdate{
		StudentName: student.Name,
		Title:       payload.Title,
		Category:    payload.Category,
		OldStatus:   payload.OldStatus,
		NewStatus:   payload.NewStatus,
		Remark:      payload.Remark,
		AdminName:   adminName,
	})
	if err != nil {
		n.metrics.NotificationFailed()
		return fmt.Errorf("render status email: %w", err)
	}

	sendCtx := ctx
	if n.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, n.sendTimeout)
		defer cancel()
	}
	if err := n.mailer.Send(sendCtx, msg); err != nil {
		n.metrics.NotificationFailed()
		return fmt.Errorf("send status email for issue %s: %w", event.IssueID, err)
	}

	n.metrics.NotificationSent()
	n.logger.Info("status email sent",
		zap.String("issue_id", event.IssueID),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}
