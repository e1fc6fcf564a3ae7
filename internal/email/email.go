// Package email sends transactional mail through a configurable provider.
package email

import (
	"context"
	"errors"

	"github.com/jobhive/jobhive/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender is a generic interface for sending emails.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender returns a Sender for the configured provider. A nil or empty
// configuration yields no sender and no error; the notification layer
// treats that as "log only".
func NewSender(cfg *config.Email) (Sender, error) {
	if cfg == nil || cfg.Provider == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case "smtp":
		if cfg.SMTP == nil || cfg.SMTP.Host == "" {
			return nil, errors.New("email: invalid SMTP configuration")
		}
		return &smtpSender{cfg: cfg}, nil
	case "sendgrid":
		if cfg.SendGrid == nil || cfg.SendGrid.Key == "" {
			return nil, errors.New("email: invalid SendGrid configuration")
		}
		return &sendGridSender{cfg: cfg}, nil
	case "mailgun":
		if cfg.Mailgun == nil || cfg.Mailgun.Domain == "" || cfg.Mailgun.Key == "" {
			return nil, errors.New("email: invalid Mailgun configuration")
		}
		return newMailgunSender(cfg), nil
	default:
		return nil, errors.New("email: unknown provider " + cfg.Provider)
	}
}
