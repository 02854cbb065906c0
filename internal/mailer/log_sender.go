// AngelaMos | 2026
// log_sender.go

package mailer

import (
	"context"
	"log/slog"
)

// LogSender writes outgoing mail to the log instead of delivering it. Used
// in development when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail not delivered: smtp disabled",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.HTML,
	)
	return nil
}
