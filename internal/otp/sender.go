// GlowDesk | 2026
// sender.go

package otp

import (
	"context"
	"log/slog"
)

// Sender delivers a passcode to a phone number. Delivery failures are the
// sender's to report; the code stays stored either way so the caller can
// retry the request.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the application log instead of dispatching SMS.
// Used in development and as the default until an SMS provider is wired up.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, phone, code string) error {
	s.logger.Info("otp issued",
		slog.String("phone", phone),
		slog.String("code", code),
	)
	return nil
}
