// Package notification renders and delivers outbound email.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer hands a message to an email provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer selects the provider configured in cfg.
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "log", "":
		return NewLogMailer(logger), nil
	case "resend":
		return NewResendMailer(cfg.ResendAPIKey, cfg.From), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
