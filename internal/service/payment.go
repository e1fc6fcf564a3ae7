package service

import (
	"context"
	"time"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/event"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/payment"
)

// PaymentRequest is returned to the client so it can complete the payment
// with the provider directly.
type PaymentRequest struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentService binds external payment events to posting publication.
type PaymentService struct {
	provider payment.Provider
	jobs     repository.JobRepository
	bus      *event.Bus
	currency string
	logger   *logger.Logger
}

// NewPaymentService creates a new payment service instance.
func NewPaymentService(provider payment.Provider, jobs repository.JobRepository,
	bus *event.Bus, currency string, log *logger.Logger) *PaymentService {
	if currency == "" {
		currency = "eur"
	}
	return &PaymentService{provider: provider, jobs: jobs, bus: bus, currency: currency, logger: log}
}

// CreatePaymentRequest creates a payment intent for publishing a draft on a
// paid plan. The intent metadata carries everything the confirmation paths
// need to locate the posting later.
func (s *PaymentService) CreatePaymentRequest(ctx context.Context, caller domain.Caller, jobID string, plan domain.JobPlan) (*PaymentRequest, error) {
	if !plan.Paid() {
		return nil, ecode.Validation("plan %q does not require payment", plan)
	}
	amount, err := payment.AmountFor(plan)
	if err != nil {
		return nil, ecode.Validation("unknown plan %q", plan)
	}

	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, ecode.NotFound("posting %s not found", jobID)
	}
	if !j.OwnedBy(caller.AccountID) {
		return nil, ecode.Authorization("posting %s is not owned by the caller", jobID)
	}
	if j.Status != domain.JobDraft {
		return nil, ecode.AlreadyPublished("posting %s is already published", jobID)
	}

	intent, err := s.provider.CreateIntent(ctx, amount, s.currency, map[string]string{
		payment.MetaJobID:      j.ID,
		payment.MetaPlan:       string(plan),
		payment.MetaEmployerID: j.EmployerID,
		payment.MetaJobTitle:   j.Title,
	})
	if err != nil {
		return nil, ecode.Internal(err, "failed to create payment intent")
	}

	s.logger.Info(ctx, "payment intent created",
		"intent_id", intent.ID, "job_id", jobID, "plan", plan, "amount", amount)
	return &PaymentRequest{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     s.currency,
	}, nil
}

// ConfirmFromIntentID is the user-driven confirmation path: the client
// reports the intent id after checkout and the posting is published if the
// payment succeeded. The update is scoped to (jobId, employerId) so a
// mismatched caller cannot publish another employer's posting.
func (s *PaymentService) ConfirmFromIntentID(ctx context.Context, caller domain.Caller, intentID string) (*domain.JobPosting, error) {
	intent, err := s.provider.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to retrieve payment intent")
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, ecode.PaymentNotCompleted("payment %s has not succeeded", intentID)
	}
	return s.publishPaid(ctx, intent, caller.AccountID)
}

// ConfirmFromWebhook is the provider-driven confirmation path. It is
// idempotent: the publication write sets absolute fields, so replays of the
// same event converge on the same state. Failed payments are recorded and
// cause no posting mutation.
func (s *PaymentService) ConfirmFromWebhook(ctx context.Context, body []byte, signature string) error {
	e, err := s.provider.VerifyWebhook(body, signature)
	if err != nil {
		return ecode.Authorization("webhook signature verification failed")
	}

	switch e.Type {
	case payment.EventIntentSucceeded:
		// No caller to cross-check here; the metadata employer id scopes
		// the write instead.
		if _, err := s.publishPaid(ctx, e.Intent, e.Intent.Metadata[payment.MetaEmployerID]); err != nil {
			return err
		}
	case payment.EventIntentFailed:
		s.publishEvent(ctx, event.TypePaymentFailed, map[string]any{
			"intent_id":   e.Intent.ID,
			"job_id":      e.Intent.Metadata[payment.MetaJobID],
			"employer_id": e.Intent.Metadata[payment.MetaEmployerID],
			"reason":      "payment failed",
		})
	}
	return nil
}

// publishPaid publishes the posting named by the intent metadata with the
// paid plan. Racing confirmations both issue the same absolute write.
func (s *PaymentService) publishPaid(ctx context.Context, intent *payment.Intent, employerID string) (*domain.JobPosting, error) {
	jobID := intent.Metadata[payment.MetaJobID]
	plan := domain.JobPlan(intent.Metadata[payment.MetaPlan])
	if jobID == "" || !plan.Paid() {
		return nil, ecode.Validation("payment intent %s carries no posting metadata", intent.ID)
	}

	now := time.Now().UTC()
	ok, err := s.jobs.Publish(ctx, jobID, employerID, plan, now, now.Add(domain.PublishWindow))
	if err != nil {
		return nil, ecode.Internal(err, "failed to publish posting")
	}
	if !ok {
		return nil, ecode.NotFound("posting %s not found for employer", jobID)
	}

	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to load published posting")
	}

	s.publishEvent(ctx, event.TypeJobPublished, map[string]any{
		"job_id":      j.ID,
		"job_title":   j.Title,
		"employer_id": j.EmployerID,
		"plan":        string(plan),
	})
	s.logger.Info(ctx, "posting published after payment",
		"job_id", jobID, "plan", plan, "intent_id", intent.ID)
	return j, nil
}

func (s *PaymentService) publishEvent(ctx context.Context, t event.Type, payload map[string]any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, &event.Event{Type: t, Payload: payload}); err != nil {
		s.logger.Warn(ctx, "failed to publish event", "type", t, "error", err)
	}
}
