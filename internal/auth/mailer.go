// AngelaMos | 2026
// mailer.go

package auth

import (
	"context"
	"log/slog"
)

// Mailer is the outbound-notification collaborator. Template rendering
// and SMTP delivery live outside this service; the core only hands over
// the recipient and the one-time token.
type Mailer interface {
	SendVerification(ctx context.Context, email, nombre, token string) error
	SendPasswordReset(ctx context.Context, email, nombre, token string) error
}

// SlogMailer logs instead of sending. Used in development and as the
// default when no delivery backend is wired.
type SlogMailer struct {
	Logger *slog.Logger
}

func NewSlogMailer(logger *slog.Logger) *SlogMailer {
	return &SlogMailer{Logger: logger}
}

func (m *SlogMailer) SendVerification(
	ctx context.Context,
	email, nombre, token string,
) error {
	m.Logger.Info("verification email",
		"email", email,
		"nombre", nombre,
		"token", token,
	)
	return nil
}

func (m *SlogMailer) SendPasswordReset(
	ctx context.Context,
	email, nombre, token string,
) error {
	m.Logger.Info("password reset email",
		"email", email,
		"nombre", nombre,
		"token", token,
	)
	return nil
}
