// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"socialconnect/internal/config"
	"socialconnect/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Mailer is the interface services depend on so tests can capture mail.
type Mailer interface {
	SendVerification(ctx context.Context, to, verifyURL string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// SMTPMailer delivers mail through the configured SMTP relay with a small
// retry loop (1s, 2s, 4s backoff).
type SMTPMailer struct {
	cfg *config.Config
}

// NewSMTPMailer returns a mailer backed by the configured SMTP relay.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.cfg.SMTPFromName, m.cfg.SMTPFrom))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPassword)

	for attempt := 0; attempt < 3; attempt++ {
		if err := dialer.DialAndSend(msg); err != nil {
			delay := time.Duration(1<<attempt) * time.Second
			middleware.Logger.WarnContext(ctx, "email send failed",
				slog.String("to", to),
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("email send cancelled: %w", ctx.Err())
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to send email to %s after 3 attempts", to)
}

// SendVerification mails the account activation link.
func (m *SMTPMailer) SendVerification(ctx context.Context, to, verifyURL string) error {
	body := fmt.Sprintf(
		`<p>Welcome to SocialConnect!</p><p>Confirm your email address by clicking <a href="%s">this link</a>.</p>`,
		verifyURL,
	)
	return m.send(ctx, to, "Verify your email address", body)
}

// SendPasswordReset mails the password reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(
		`<p>A password reset was requested for your account.</p><p>Choose a new password via <a href="%s">this link</a>. If you did not request this, ignore this mail.</p>`,
		resetURL,
	)
	return m.send(ctx, to, "Reset your password", body)
}
