package notify

import (
	"context"

	"peakform/coaching-app/internal/config"
	"peakform/coaching-app/internal/platform/logger"

	"github.com/resend/resend-go/v2"
)

// Sender delivers a notification out of band (email today).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// resendSender delivers email through the Resend API.
type resendSender struct {
	client *resend.Client
	from   string
	log    *logger.Logger
}

// NewResendSender builds a Sender backed by Resend. With no API key
// configured it degrades to a no-op that only logs, so local development
// never needs email credentials.
func NewResendSender(cfg config.NotifierConfig, log *logger.Logger) Sender {
	if cfg.ResendAPIKey == "" {
		log.Warn("no resend api key configured, email delivery disabled")
		return NopSender{log: log}
	}
	return &resendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
		log:    log.With("component", "email"),
	}
}

func (s *resendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.log.Error("email send failed", "to", to, "subject", subject, "err", err)
		return err
	}
	s.log.Info("email sent", "to", to, "id", sent.Id)
	return nil
}

// NopSender logs instead of sending. Used in tests and keyless dev setups.
type NopSender struct {
	log *logger.Logger
}

func NewNopSender(log *logger.Logger) NopSender {
	return NopSender{log: log}
}

func (s NopSender) Send(ctx context.Context, to, subject, body string) error {
	if s.log != nil {
		s.log.Info("email suppressed", "to", to, "subject", subject)
	}
	return nil
}
