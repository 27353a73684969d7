package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers the verification link to a freshly signed up user.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

// LogMailer writes the link to the log instead of sending mail. Used in
// development and whenever no SMTP relay is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(_ context.Context, email, link string) error {
	m.log.Info("verification email", zap.String("to", email), zap.String("link", link))
	return nil
}
