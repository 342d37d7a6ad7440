package auth

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers password reset codes.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string, expires time.Time) error
}

// LogMailer writes reset codes to the log instead of sending email.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendResetCode(ctx context.Context, email, code string, expires time.Time) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset code issued",
		"email", email, "code", code, "expires", expires.Format(time.RFC3339))
	return nil
}
