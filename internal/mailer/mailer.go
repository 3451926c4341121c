// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/sagarchy-05/ecommerce-backend/internal/config"
)

// Sender delivers a plain-text email.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPMailer implements Sender with net/smtp and PLAIN auth.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.logger.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}
	return nil
}

// NopSender satisfies Sender when outbound email is disabled.
type NopSender struct{}

func (NopSender) Send(string, string, string) error { return nil }
