package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jobhive/jobhive/internal/config"
)

// smtpSender delivers through a plain SMTP relay.
type smtpSender struct {
	cfg *config.Email
}

func (s *smtpSender) Send(_ context.Context, msg *Message) error {
	c := s.cfg.SMTP

	var auth smtp.Auth
	if c.Username != "" {
		auth = smtp.PlainAuth("", c.Username, c.Password, c.Host)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, msg.To, msg.Subject, msg.HTML)

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("smtp: failed to send email: %w", err)
	}
	return nil
}
