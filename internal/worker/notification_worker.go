package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/service"
)

// Drainer waits for in-flight event handlers.
type Drainer interface {
	Drain(ctx context.Context) error
}

// NotificationWorker owns the notification handlers for the process lifetime.
type NotificationWorker struct {
	notifications *service.NotificationService
	drainer       Drainer
	logger        *zap.Logger
}

// StartNotificationWorker registers notification handlers. drainer may be nil
// when the dispatcher runs handlers inline.
func StartNotificationWorker(notificationService *service.NotificationService, drainer Drainer, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	return &NotificationWorker{notifications: notificationService, drainer: drainer, logger: logger}
}

// Stop waits for pending notifications until ctx expires.
func (w *NotificationWorker) Stop(ctx context.Context) {
	if w == nil || w.drainer == nil {
		return
	}
	if err := w.drainer.Drain(ctx); err != nil {
		w.logger.Warn("pending notifications abandoned at shutdown", zap.Error(err))
		return
	}
	w.logger.Info("notification worker drained")
}
