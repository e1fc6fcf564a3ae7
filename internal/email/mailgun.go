package email

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/jobhive/jobhive/internal/config"
)

type mailgunSender struct {
	cfg    *config.Email
	client *mailgun.MailgunImpl
}

func newMailgunSender(cfg *config.Email) *mailgunSender {
	return &mailgunSender{
		cfg:    cfg,
		client: mailgun.NewMailgun(cfg.Mailgun.Domain, cfg.Mailgun.Key),
	}
}

func (s *mailgunSender) Send(ctx context.Context, msg *Message) error {
	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	m := s.client.NewMessage(from, msg.Subject, msg.Text)
	if err := m.AddRecipient(msg.To); err != nil {
		return fmt.Errorf("mailgun: invalid recipient: %w", err)
	}
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, _, err := s.client.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun: failed to send email: %w", err)
	}
	return nil
}
