package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/payment"
)

type fakePaymentProvider struct {
	intents map[string]*payment.Intent
	seq     int

	webhookEvent *payment.WebhookEvent
	webhookErr   error
}

func newFakePaymentProvider() *fakePaymentProvider {
	return &fakePaymentProvider{intents: make(map[string]*payment.Intent)}
}

func (p *fakePaymentProvider) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	p.seq++
	intent := &payment.Intent{
		ID:           "pi_" + string(rune('0'+p.seq)),
		ClientSecret: "secret",
		Status:       payment.StatusPending,
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	p.intents[intent.ID] = intent
	return intent, nil
}

func (p *fakePaymentProvider) RetrieveIntent(_ context.Context, id string) (*payment.Intent, error) {
	intent, ok := p.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	return intent, nil
}

func (p *fakePaymentProvider) VerifyWebhook(_ []byte, _ string) (*payment.WebhookEvent, error) {
	if p.webhookErr != nil {
		return nil, p.webhookErr
	}
	return p.webhookEvent, nil
}

type paymentFixture struct {
	svc      *PaymentService
	provider *fakePaymentProvider
	jobs     *fakeJobRepo
	job      *domain.JobPosting
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	jobs := newFakeJobRepo()
	provider := newFakePaymentProvider()
	svc := NewPaymentService(provider, jobs, nil, "eur", logger.Discard())

	jobSvc := NewJobService(jobs, nil, logger.Discard())
	j, err := jobSvc.CreateDraft(context.Background(), employer, validInput())
	if err != nil {
		t.Fatal(err)
	}
	return &paymentFixture{svc: svc, provider: provider, jobs: jobs, job: j}
}

func TestCreatePaymentRequest(t *testing.T) {
	f := newPaymentFixture(t)

	pr, err := f.svc.CreatePaymentRequest(context.Background(), employer, f.job.ID, domain.PlanPremium)
	if err != nil {
		t.Fatalf("CreatePaymentRequest failed: %v", err)
	}
	if pr.Amount != 988 {
		t.Errorf("amount = %d, want 988", pr.Amount)
	}
	if pr.ClientSecret == "" || pr.IntentID == "" {
		t.Error("handle not returned")
	}

	intent := f.provider.intents[pr.IntentID]
	want := map[string]string{
		payment.MetaJobID:      f.job.ID,
		payment.MetaPlan:       "premium",
		payment.MetaEmployerID: employer.AccountID,
		payment.MetaJobTitle:   f.job.Title,
	}
	for k, v := range want {
		if intent.Metadata[k] != v {
			t.Errorf("metadata[%s] = %q, want %q", k, intent.Metadata[k], v)
		}
	}

	// The stored posting is untouched until confirmation.
	stored, _ := f.jobs.GetByID(context.Background(), f.job.ID)
	if stored.Status != domain.JobDraft {
		t.Errorf("status = %s, want draft", stored.Status)
	}
}

func TestPaymentPriceTable(t *testing.T) {
	prices := map[domain.JobPlan]int64{
		domain.PlanStandard: 488,
		domain.PlanPremium:  988,
		domain.PlanPro:      1988,
	}
	for plan, want := range prices {
		got, err := payment.AmountFor(plan)
		if err != nil {
			t.Fatalf("AmountFor(%s): %v", plan, err)
		}
		if got != want {
			t.Errorf("AmountFor(%s) = %d, want %d", plan, got, want)
		}
	}
	if _, err := payment.AmountFor(domain.PlanFree); err == nil {
		t.Error("free plan must have no price")
	}
}

func TestCreatePaymentRequestGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("free plan", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanFree)
		if !ecode.Is(err, ecode.KindValidation) {
			t.Errorf("kind = %s, want validation", ecode.KindOf(err))
		}
	})

	t.Run("not owner", func(t *testing.T) {
		f := newPaymentFixture(t)
		other := domain.Caller{AccountID: "emp-2", Role: domain.RoleEmployer}
		_, err := f.svc.CreatePaymentRequest(ctx, other, f.job.ID, domain.PlanStandard)
		if !ecode.Is(err, ecode.KindAuthorization) {
			t.Errorf("kind = %s, want authorization", ecode.KindOf(err))
		}
	})

	t.Run("already published", func(t *testing.T) {
		f := newPaymentFixture(t)
		jobSvc := NewJobService(f.jobs, nil, logger.Discard())
		if _, err := jobSvc.PublishFree(ctx, employer, f.job.ID); err != nil {
			t.Fatal(err)
		}
		_, err := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanStandard)
		if !ecode.Is(err, ecode.KindAlreadyPublished) {
			t.Errorf("kind = %s, want already_published", ecode.KindOf(err))
		}
	})
}

func TestLapsedPaidPostingCanPayAgain(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	jobSvc := NewJobService(f.jobs, nil, logger.Discard())

	pr, err := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanPro)
	if err != nil {
		t.Fatal(err)
	}
	f.provider.intents[pr.IntentID].Status = payment.StatusSucceeded
	if _, err := f.svc.ConfirmFromIntentID(ctx, employer, pr.IntentID); err != nil {
		t.Fatal(err)
	}
	lapse(f.jobs, f.job.ID)

	// While lapsed, the stored status is still published.
	if _, err := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanPro); !ecode.Is(err, ecode.KindAlreadyPublished) {
		t.Fatalf("kind = %s, want already_published", ecode.KindOf(err))
	}

	// Unpublishing reopens the paid flow.
	if _, err := jobSvc.SetStatus(ctx, employer, f.job.ID, domain.JobDraft); err != nil {
		t.Fatalf("unpublish of lapsed posting failed: %v", err)
	}
	if _, err := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanPro); err != nil {
		t.Fatalf("payment request after unpublish failed: %v", err)
	}
}

func TestConfirmFromIntentID(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	pr, _ := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanPro)

	// Not succeeded yet.
	_, err := f.svc.ConfirmFromIntentID(ctx, employer, pr.IntentID)
	if !ecode.Is(err, ecode.KindPaymentNotCompleted) {
		t.Fatalf("kind = %s, want payment_not_completed", ecode.KindOf(err))
	}
	stored, _ := f.jobs.GetByID(ctx, f.job.ID)
	if stored.Status != domain.JobDraft {
		t.Fatalf("incomplete payment mutated status to %s", stored.Status)
	}

	f.provider.intents[pr.IntentID].Status = payment.StatusSucceeded
	j, err := f.svc.ConfirmFromIntentID(ctx, employer, pr.IntentID)
	if err != nil {
		t.Fatalf("ConfirmFromIntentID failed: %v", err)
	}
	if j.Status != domain.JobPublished || j.Plan != domain.PlanPro {
		t.Errorf("status=%s plan=%s, want published/pro", j.Status, j.Plan)
	}
	if j.PublishedAt == nil || j.ExpiresAt == nil {
		t.Fatal("timestamps not set")
	}
	if got := j.ExpiresAt.Sub(*j.PublishedAt); got != domain.PublishWindow {
		t.Errorf("validity window = %s, want %s", got, domain.PublishWindow)
	}
}

func TestConfirmScopedToEmployer(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	pr, _ := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanStandard)
	f.provider.intents[pr.IntentID].Status = payment.StatusSucceeded

	hijacker := domain.Caller{AccountID: "emp-2", Role: domain.RoleEmployer}
	if _, err := f.svc.ConfirmFromIntentID(ctx, hijacker, pr.IntentID); !ecode.Is(err, ecode.KindNotFound) {
		t.Fatalf("kind = %s, want not_found", ecode.KindOf(err))
	}
	stored, _ := f.jobs.GetByID(ctx, f.job.ID)
	if stored.Status != domain.JobDraft {
		t.Errorf("hijacked confirmation mutated status to %s", stored.Status)
	}
}

func TestConfirmFromWebhookIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	pr, _ := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanStandard)
	intent := f.provider.intents[pr.IntentID]
	intent.Status = payment.StatusSucceeded
	f.provider.webhookEvent = &payment.WebhookEvent{Type: payment.EventIntentSucceeded, Intent: intent}

	if err := f.svc.ConfirmFromWebhook(ctx, []byte("{}"), "sig"); err != nil {
		t.Fatalf("first webhook failed: %v", err)
	}
	first, _ := f.jobs.GetByID(ctx, f.job.ID)

	// Replay of the same event converges on the same state without error.
	if err := f.svc.ConfirmFromWebhook(ctx, []byte("{}"), "sig"); err != nil {
		t.Fatalf("replayed webhook failed: %v", err)
	}
	second, _ := f.jobs.GetByID(ctx, f.job.ID)

	if first.Status != domain.JobPublished || second.Status != domain.JobPublished {
		t.Error("posting not published")
	}
	if second.Plan != first.Plan {
		t.Errorf("replay changed plan from %s to %s", first.Plan, second.Plan)
	}
}

func TestConfirmFromWebhookFailedPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	pr, _ := f.svc.CreatePaymentRequest(ctx, employer, f.job.ID, domain.PlanStandard)
	intent := f.provider.intents[pr.IntentID]
	intent.Status = payment.StatusFailed
	f.provider.webhookEvent = &payment.WebhookEvent{Type: payment.EventIntentFailed, Intent: intent}

	if err := f.svc.ConfirmFromWebhook(ctx, []byte("{}"), "sig"); err != nil {
		t.Fatalf("failed-payment webhook errored: %v", err)
	}
	stored, _ := f.jobs.GetByID(ctx, f.job.ID)
	if stored.Status != domain.JobDraft {
		t.Errorf("failed payment mutated status to %s", stored.Status)
	}
}

func TestConfirmFromWebhookBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	f.provider.webhookErr = errors.New("bad signature")

	err := f.svc.ConfirmFromWebhook(context.Background(), []byte("{}"), "sig")
	if !ecode.Is(err, ecode.KindAuthorization) {
		t.Fatalf("kind = %s, want authorization", ecode.KindOf(err))
	}
}
