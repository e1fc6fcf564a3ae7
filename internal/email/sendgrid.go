package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jobhive/jobhive/internal/config"
)

type sendGridSender struct {
	cfg *config.Email
}

func (s *sendGridSender) Send(ctx context.Context, msg *Message) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.From)
	to := mail.NewEmail(msg.ToName, msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	client := sendgrid.NewSendClient(s.cfg.SendGrid.Key)
	response, err := client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if response.StatusCode != 202 {
		return fmt.Errorf("sendgrid: unexpected status code %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
