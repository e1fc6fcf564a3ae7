// Package service implements the workflow operations of the job board. Every
// operation takes the authenticated caller explicitly; nothing is read from
// ambient state.
package service

import (
	"context"
	"time"

	"github.com/gosimple/slug"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/event"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/nanoid"
	"github.com/jobhive/jobhive/internal/validation/validator"
)

// JobInput carries the mutable posting fields for create and update.
type JobInput struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Country           string `json:"country"`
	City              string `json:"city"`
	IsGlobalRemote    bool   `json:"is_global_remote"`
	IsVisaSponsorship bool   `json:"is_visa_sponsorship"`
	SalaryFrom        *int   `json:"salary_from"`
	SalaryTo          *int   `json:"salary_to"`
	EmailToApply      string `json:"email_to_apply"`
	LinkToApply       string `json:"link_to_apply"`
	Sphere            string `json:"sphere"`
}

// JobService owns the posting lifecycle: creation, quota, and status
// transitions.
type JobService struct {
	jobs     repository.JobRepository
	bus      *event.Bus
	payments *PaymentService
	logger   *logger.Logger
}

// NewJobService creates a new job service instance.
func NewJobService(jobs repository.JobRepository, bus *event.Bus, log *logger.Logger) *JobService {
	return &JobService{jobs: jobs, bus: bus, logger: log}
}

// AttachPayments wires the paid publication path. Called once at assembly.
func (s *JobService) AttachPayments(p *PaymentService) { s.payments = p }

// RequestPaidPublish starts the paid publication flow for a draft. The
// stored status does not change until a confirmation path runs.
func (s *JobService) RequestPaidPublish(ctx context.Context, caller domain.Caller, jobID string, plan domain.JobPlan) (*PaymentRequest, error) {
	if s.payments == nil {
		return nil, ecode.Internal(nil, "payments are not configured")
	}
	return s.payments.CreatePaymentRequest(ctx, caller, jobID, plan)
}

// validateJobInput checks the field rules shared by create and update:
// non-empty title and description, ordered salary range, and exactly one
// application method.
func validateJobInput(in *JobInput) error {
	if validator.IsEmpty(in.Title) {
		return ecode.Validation("title is required")
	}
	if validator.IsEmpty(in.Description) {
		return ecode.Validation("description is required")
	}
	if in.SalaryFrom != nil && in.SalaryTo != nil && *in.SalaryFrom > *in.SalaryTo {
		return ecode.Validation("salary_from must not exceed salary_to")
	}

	hasEmail := !validator.IsEmpty(in.EmailToApply)
	hasLink := !validator.IsEmpty(in.LinkToApply)
	switch {
	case hasEmail == hasLink:
		return ecode.Validation("exactly one of email_to_apply or link_to_apply is required")
	case hasEmail && !validator.IsEmail(in.EmailToApply):
		return ecode.Validation("email_to_apply is not a valid email address")
	case hasLink && !validator.IsURL(in.LinkToApply):
		return ecode.Validation("link_to_apply is not a valid URL")
	}
	return nil
}

// CreateDraft validates the fields and inserts a draft posting owned by the
// caller. Only employers may create postings.
func (s *JobService) CreateDraft(ctx context.Context, caller domain.Caller, in *JobInput) (*domain.JobPosting, error) {
	if !caller.IsEmployer() {
		return nil, ecode.Authorization("only employers can create postings")
	}
	if err := validateJobInput(in); err != nil {
		return nil, err
	}

	j := &domain.JobPosting{
		ID:                nanoid.PrimaryKey(),
		EmployerID:        caller.AccountID,
		Title:             in.Title,
		Slug:              slug.Make(in.Title) + "-" + nanoid.Must(6),
		Description:       in.Description,
		Country:           in.Country,
		City:              in.City,
		IsGlobalRemote:    in.IsGlobalRemote,
		IsVisaSponsorship: in.IsVisaSponsorship,
		SalaryFrom:        in.SalaryFrom,
		SalaryTo:          in.SalaryTo,
		EmailToApply:      in.EmailToApply,
		LinkToApply:       in.LinkToApply,
		Sphere:            in.Sphere,
		Status:            domain.JobDraft,
		Plan:              domain.PlanFree,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, ecode.Internal(err, "failed to create posting")
	}

	s.logger.Info(ctx, "draft posting created", "job_id", j.ID, "employer_id", caller.AccountID)
	return j, nil
}

// PublishFree publishes a draft on the free plan, enforcing the concurrent
// free posting quota.
func (s *JobService) PublishFree(ctx context.Context, caller domain.Caller, jobID string) (*domain.JobPosting, error) {
	j, err := s.ownedPosting(ctx, caller, jobID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	count, err := s.jobs.CountPublishedFree(ctx, caller.AccountID, now)
	if err != nil {
		return nil, ecode.Internal(err, "failed to count published postings")
	}
	if count >= domain.FreePublishLimit {
		return nil, ecode.QuotaExceeded("free plan allows at most %d published postings", domain.FreePublishLimit)
	}

	expires := now.Add(domain.PublishWindow)
	ok, err := s.jobs.Publish(ctx, jobID, caller.AccountID, domain.PlanFree, now, expires)
	if err != nil {
		return nil, ecode.Internal(err, "failed to publish posting")
	}
	if !ok {
		return nil, ecode.NotFound("posting %s not found", jobID)
	}

	j.Status = domain.JobPublished
	j.Plan = domain.PlanFree
	j.PublishedAt = &now
	j.ExpiresAt = &expires

	s.publishEvent(ctx, event.TypeJobPublished, map[string]any{
		"job_id":      j.ID,
		"job_title":   j.Title,
		"employer_id": j.EmployerID,
		"plan":        string(domain.PlanFree),
	})
	s.logger.Info(ctx, "posting published on free plan", "job_id", jobID)
	return j, nil
}

// UpdateFields re-validates and overwrites the posting's mutable fields.
// Editing is allowed in any status; publication state is untouched.
func (s *JobService) UpdateFields(ctx context.Context, caller domain.Caller, jobID string, in *JobInput) (*domain.JobPosting, error) {
	j, err := s.ownedPosting(ctx, caller, jobID)
	if err != nil {
		return nil, err
	}
	if err := validateJobInput(in); err != nil {
		return nil, err
	}

	j.Title = in.Title
	j.Description = in.Description
	j.Country = in.Country
	j.City = in.City
	j.IsGlobalRemote = in.IsGlobalRemote
	j.IsVisaSponsorship = in.IsVisaSponsorship
	j.SalaryFrom = in.SalaryFrom
	j.SalaryTo = in.SalaryTo
	j.EmailToApply = in.EmailToApply
	j.LinkToApply = in.LinkToApply
	j.Sphere = in.Sphere

	if err := s.jobs.UpdateFields(ctx, j); err != nil {
		return nil, ecode.Internal(err, "failed to update posting")
	}
	return j, nil
}

// SetStatus moves a posting between its persisted statuses. Publishing and
// republishing reset the validity window; unpublishing clears it.
func (s *JobService) SetStatus(ctx context.Context, caller domain.Caller, jobID string, newStatus domain.JobStatus) (*domain.JobPosting, error) {
	if !newStatus.Persistable() {
		return nil, ecode.InvalidTransition("status %q cannot be set directly", newStatus)
	}

	j, err := s.ownedPosting(ctx, caller, jobID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(j.Status, newStatus) {
		return nil, ecode.InvalidTransition("cannot move posting from %s to %s", j.Status, newStatus)
	}

	now := time.Now().UTC()
	switch newStatus {
	case domain.JobPublished:
		// A free posting that is not currently live (draft or lapsed) goes
		// through the quota check; a live one just extends its window.
		if j.Plan == domain.PlanFree && j.Status != domain.JobPublished {
			return s.PublishFree(ctx, caller, jobID)
		}
		expires := now.Add(domain.PublishWindow)
		ok, err := s.jobs.Publish(ctx, jobID, caller.AccountID, j.Plan, now, expires)
		if err != nil {
			return nil, ecode.Internal(err, "failed to publish posting")
		}
		if !ok {
			return nil, ecode.NotFound("posting %s not found", jobID)
		}
		j.Status = domain.JobPublished
		j.PublishedAt = &now
		j.ExpiresAt = &expires
	case domain.JobDraft:
		ok, err := s.jobs.Unpublish(ctx, jobID, caller.AccountID)
		if err != nil {
			return nil, ecode.Internal(err, "failed to unpublish posting")
		}
		if !ok {
			return nil, ecode.NotFound("posting %s not found", jobID)
		}
		j.Status = domain.JobDraft
	}
	return j, nil
}

// Delete removes a posting and all its applications. Irreversible.
func (s *JobService) Delete(ctx context.Context, caller domain.Caller, jobID string) error {
	if _, err := s.ownedPosting(ctx, caller, jobID); err != nil {
		return err
	}
	if err := s.jobs.DeleteCascade(ctx, jobID); err != nil {
		return ecode.Internal(err, "failed to delete posting")
	}
	s.logger.Info(ctx, "posting deleted", "job_id", jobID, "employer_id", caller.AccountID)
	return nil
}

// Get returns a posting for its owner with the derived status applied.
func (s *JobService) Get(ctx context.Context, caller domain.Caller, jobID string) (*domain.JobPosting, error) {
	return s.ownedPosting(ctx, caller, jobID)
}

// ListMine returns all of the caller's postings, any status, with the
// derived status applied.
func (s *JobService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.JobPosting, error) {
	if !caller.IsEmployer() {
		return nil, ecode.Authorization("only employers have postings")
	}
	jobs, err := s.jobs.ListByEmployer(ctx, caller.AccountID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to list postings")
	}
	now := time.Now().UTC()
	for _, j := range jobs {
		j.Status = j.EffectiveStatus(now)
	}
	return jobs, nil
}

// ownedPosting loads a posting and checks ownership, applying the derived
// status.
func (s *JobService) ownedPosting(ctx context.Context, caller domain.Caller, jobID string) (*domain.JobPosting, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, ecode.NotFound("posting %s not found", jobID)
	}
	if !j.OwnedBy(caller.AccountID) {
		return nil, ecode.Authorization("posting %s is not owned by the caller", jobID)
	}
	j.Status = j.EffectiveStatus(time.Now().UTC())
	return j, nil
}

func (s *JobService) publishEvent(ctx context.Context, t event.Type, payload map[string]any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, &event.Event{Type: t, Payload: payload}); err != nil {
		s.logger.Warn(ctx, "failed to publish event", "type", t, "error", err)
	}
}
