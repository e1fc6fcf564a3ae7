// Package notification consumes workflow events and turns them into
// outbound email, honoring per-account notification preferences. Delivery
// is best effort: failures are logged and never reach the operation that
// triggered them.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/email"
	"github.com/jobhive/jobhive/internal/event"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

// Dispatcher routes events to email notifications.
type Dispatcher struct {
	accounts repository.AccountRepository
	prefs    repository.PreferenceRepository
	sender   email.Sender
	breaker  *gobreaker.CircuitBreaker
	logger   *logger.Logger
}

// NewDispatcher creates a dispatcher. A nil sender is allowed; every
// notification is then logged instead of delivered, which keeps local
// development working without a mail provider.
func NewDispatcher(accounts repository.AccountRepository, prefs repository.PreferenceRepository,
	sender email.Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		accounts: accounts,
		prefs:    prefs,
		sender:   sender,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "email",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		logger: log,
	}
}

// Register subscribes the dispatcher's handlers on the bus.
func (d *Dispatcher) Register(bus *event.Bus) {
	bus.Subscribe(event.TypeApplicationReceived, d.onApplicationReceived)
	bus.Subscribe(event.TypeApplicationStatusChanged, d.onApplicationStatusChanged)
	bus.Subscribe(event.TypeJobPublished, d.onJobPublished)
	bus.Subscribe(event.TypePaymentFailed, d.onPaymentFailed)
}

// onApplicationReceived notifies the employer of a new application and
// sends a confirmation to the applicant.
func (d *Dispatcher) onApplicationReceived(ctx context.Context, e *event.Event) error {
	jobTitle := e.PayloadString("job_title")
	employerID := e.PayloadString("employer_id")
	applicantID := e.PayloadString("applicant_id")

	data := templateData{
		JobTitle:      jobTitle,
		ApplicantName: e.PayloadString("applicant_name"),
	}

	if d.allowed(ctx, employerID, func(p prefFlags) bool { return p.newApplications }) {
		if err := d.deliver(ctx, employerID, "New application: "+jobTitle, "application_received", data); err != nil {
			d.logger.Error(ctx, "failed to notify employer of application",
				"employer_id", employerID, "error", err)
		}
	}

	if d.allowed(ctx, applicantID, func(p prefFlags) bool { return p.applicationUpdates }) {
		if err := d.deliver(ctx, applicantID, "Application sent: "+jobTitle, "application_confirmation", data); err != nil {
			d.logger.Error(ctx, "failed to send application confirmation",
				"applicant_id", applicantID, "error", err)
		}
	}

	return nil
}

// onApplicationStatusChanged notifies the applicant of a status change.
func (d *Dispatcher) onApplicationStatusChanged(ctx context.Context, e *event.Event) error {
	applicantID := e.PayloadString("applicant_id")
	jobTitle := e.PayloadString("job_title")

	if !d.allowed(ctx, applicantID, func(p prefFlags) bool { return p.applicationUpdates }) {
		return nil
	}

	data := templateData{
		JobTitle:  jobTitle,
		OldStatus: e.PayloadString("old_status"),
		NewStatus: e.PayloadString("new_status"),
	}
	if err := d.deliver(ctx, applicantID, "Application update: "+jobTitle, "application_status_update", data); err != nil {
		d.logger.Error(ctx, "failed to send status update",
			"applicant_id", applicantID, "error", err)
	}
	return nil
}

// onJobPublished confirms publication to the posting's employer. This is a
// receipt for the employer's own action, so it is not preference gated.
func (d *Dispatcher) onJobPublished(ctx context.Context, e *event.Event) error {
	employerID := e.PayloadString("employer_id")
	jobTitle := e.PayloadString("job_title")

	data := templateData{JobTitle: jobTitle}
	if err := d.deliver(ctx, employerID, "Your posting is live: "+jobTitle, "job_published", data); err != nil {
		d.logger.Error(ctx, "failed to send publish confirmation",
			"employer_id", employerID, "error", err)
	}
	return nil
}

// onPaymentFailed records the failure for operators. No email goes out:
// the payment provider already surfaces the failure to the payer.
func (d *Dispatcher) onPaymentFailed(ctx context.Context, e *event.Event) error {
	d.logger.Warn(ctx, "payment failed",
		"intent_id", e.PayloadString("intent_id"),
		"job_id", e.PayloadString("job_id"),
		"employer_id", e.PayloadString("employer_id"),
		"reason", e.PayloadString("reason"))
	return nil
}

type prefFlags struct {
	newApplications    bool
	applicationUpdates bool
}

// allowed reports whether the account has the given category enabled.
// Preference lookup failures fall back to opted in.
func (d *Dispatcher) allowed(ctx context.Context, accountID string, flag func(prefFlags) bool) bool {
	if accountID == "" {
		return false
	}
	p, err := d.prefs.Get(ctx, accountID)
	if err != nil {
		d.logger.Warn(ctx, "preference lookup failed, assuming opted in",
			"account_id", accountID, "error", err)
		return true
	}
	return flag(prefFlags{
		newApplications:    p.EmailNewApplications,
		applicationUpdates: p.EmailApplicationUpdates,
	})
}

// deliver renders the template and sends it to the account's email address
// through the circuit breaker.
func (d *Dispatcher) deliver(ctx context.Context, accountID, subject, tmplName string, td templateData) error {
	account, err := d.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}

	html, err := render(tmplName, td)
	if err != nil {
		return err
	}

	msg := &email.Message{
		To:      account.Email,
		ToName:  account.FullName,
		Subject: subject,
		HTML:    html,
	}

	if d.sender == nil {
		d.logger.Info(ctx, "email delivery skipped, no sender configured",
			"to", account.Email, "subject", subject)
		return nil
	}

	_, err = d.breaker.Execute(func() (any, error) {
		return nil, d.sender.Send(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	d.logger.Info(ctx, "email delivered", "to", account.Email, "subject", subject)
	return nil
}
