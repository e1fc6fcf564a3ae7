// Package payment abstracts the payment provider behind a small interface
// so the workflow services never touch provider SDK types directly.
package payment

import (
	"context"
	"fmt"

	"github.com/jobhive/jobhive/internal/domain"
)

// Metadata keys attached to every payment intent. The webhook consumer
// relies on these to locate the posting being paid for.
const (
	MetaJobID      = "jobId"
	MetaPlan       = "plan"
	MetaEmployerID = "employerId"
	MetaJobTitle   = "jobTitle"
)

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// IntentStatus is the provider-neutral payment intent status.
type IntentStatus string

const (
	StatusSucceeded IntentStatus = "succeeded"
	StatusPending   IntentStatus = "pending"
	StatusFailed    IntentStatus = "failed"
)

// WebhookEvent is a verified provider webhook event.
type WebhookEvent struct {
	Type   WebhookEventType
	Intent *Intent
}

// WebhookEventType classifies the webhook events the workflow acts on.
type WebhookEventType string

const (
	EventIntentSucceeded WebhookEventType = "payment_intent.succeeded"
	EventIntentFailed    WebhookEventType = "payment_intent.payment_failed"
	EventIgnored         WebhookEventType = "ignored"
)

// Provider is implemented by payment backends.
type Provider interface {
	// CreateIntent creates a payment intent with the given amount in minor
	// units and attaches the metadata.
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	// RetrieveIntent fetches the current state of an intent.
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	// VerifyWebhook validates the webhook signature and decodes the event.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// AmountFor returns the price of a paid plan in minor currency units.
func AmountFor(plan domain.JobPlan) (int64, error) {
	switch plan {
	case domain.PlanStandard:
		return 488, nil
	case domain.PlanPremium:
		return 988, nil
	case domain.PlanPro:
		return 1988, nil
	default:
		return 0, fmt.Errorf("plan %q has no price", plan)
	}
}
