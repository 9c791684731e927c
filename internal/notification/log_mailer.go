package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LogMailer logs messages instead of sending them and keeps them for inspection.
type LogMailer struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("email queued",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// Sent returns a copy of every message handed to the mailer.
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
