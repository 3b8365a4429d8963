package notify

import (
	"context"

	"go.uber.org/zap"
)

// Mail is a single outbound message
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer writes mail to the log instead of delivering it. Used in
// development and tests; production wires a real provider behind the same
// interface.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger.Named("mailer")}
}

// Send logs the mail at info level
func (m *LogMailer) Send(_ context.Context, mail Mail) error {
	m.logger.Info("mail sent",
		zap.String("to", mail.To),
		zap.String("subject", mail.Subject),
	)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
