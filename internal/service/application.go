package service

import (
	"context"
	"time"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/event"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/nanoid"
)

// ApplicationService manages the application workflow from submission to
// resolution.
type ApplicationService struct {
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	accounts     repository.AccountRepository
	bus          *event.Bus
	logger       *logger.Logger
}

// NewApplicationService creates a new application service instance.
func NewApplicationService(applications repository.ApplicationRepository, jobs repository.JobRepository,
	accounts repository.AccountRepository, bus *event.Bus, log *logger.Logger) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		accounts:     accounts,
		bus:          bus,
		logger:       log,
	}
}

// Submit creates an application against a published posting. The
// preconditions are checked in order and each violation maps to its own
// error kind; the one-application-per-candidate rule is enforced by the
// store's unique constraint, not by a read-then-write check.
func (s *ApplicationService) Submit(ctx context.Context, caller domain.Caller, jobID, coverLetter string) (*domain.JobApplication, error) {
	if !caller.IsJobSeeker() {
		return nil, ecode.NotAJobSeeker("only job seekers can apply")
	}

	profile, err := s.accounts.GetSeekerProfile(ctx, caller.AccountID)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, ecode.IncompleteProfile("a seeker profile is required before applying")
		}
		return nil, ecode.Internal(err, "failed to load seeker profile")
	}
	if profile.CVURL == "" {
		return nil, ecode.MissingCV("an uploaded CV is required before applying")
	}

	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, ecode.NotFound("posting %s not found", jobID)
	}
	if !j.AcceptingApplications(time.Now().UTC()) {
		return nil, ecode.NotAccepting("posting %s is not accepting applications", jobID)
	}

	a := &domain.JobApplication{
		ID:          nanoid.PrimaryKey(),
		JobID:       jobID,
		ApplicantID: caller.AccountID,
		CoverLetter: coverLetter,
		Status:      domain.ApplicationPending,
	}
	if err := s.applications.Create(ctx, a); err != nil {
		if data.IsUniqueViolation(err) {
			return nil, ecode.DuplicateApplication("an application for this posting already exists")
		}
		return nil, ecode.Internal(err, "failed to create application")
	}

	applicantName := caller.Email
	if account, err := s.accounts.GetByID(ctx, caller.AccountID); err == nil && account.FullName != "" {
		applicantName = account.FullName
	}

	s.publishEvent(ctx, event.TypeApplicationReceived, map[string]any{
		"application_id": a.ID,
		"job_id":         j.ID,
		"job_title":      j.Title,
		"employer_id":    j.EmployerID,
		"applicant_id":   caller.AccountID,
		"applicant_name": applicantName,
	})
	s.logger.Info(ctx, "application submitted", "application_id", a.ID, "job_id", jobID)
	return a, nil
}

// View returns the full application detail to the owning employer. A
// pending application transitions to viewed as a side effect of the first
// view; later views leave the status alone.
func (s *ApplicationService) View(ctx context.Context, caller domain.Caller, applicationID string) (*domain.ApplicationDetail, error) {
	detail, err := s.applications.GetDetail(ctx, applicationID)
	if err != nil {
		return nil, ecode.NotFound("application %s not found", applicationID)
	}
	if err := s.requireOwnership(ctx, caller, detail.JobID); err != nil {
		return nil, err
	}

	if detail.Status == domain.ApplicationPending {
		marked, err := s.applications.MarkViewedIfPending(ctx, applicationID)
		if err != nil {
			return nil, ecode.Internal(err, "failed to mark application viewed")
		}
		if marked {
			detail.Status = domain.ApplicationViewed
		}
	}
	return detail, nil
}

// UpdateStatus moves an application to a new review status and notifies the
// applicant. Terminal statuses admit no further transition.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller domain.Caller, applicationID string, newStatus domain.ApplicationStatus) error {
	a, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return ecode.NotFound("application %s not found", applicationID)
	}

	j, err := s.jobs.GetByID(ctx, a.JobID)
	if err != nil {
		return ecode.Internal(err, "failed to load posting for application")
	}
	if !j.OwnedBy(caller.AccountID) {
		return ecode.Authorization("application %s does not belong to a posting owned by the caller", applicationID)
	}

	if !domain.CanTransitionApplication(a.Status, newStatus) {
		return ecode.InvalidTransition("cannot move application from %s to %s", a.Status, newStatus)
	}
	if a.Status == newStatus {
		return nil
	}

	if err := s.applications.UpdateStatus(ctx, applicationID, newStatus); err != nil {
		return ecode.Internal(err, "failed to update application status")
	}

	s.publishEvent(ctx, event.TypeApplicationStatusChanged, map[string]any{
		"application_id": a.ID,
		"job_id":         j.ID,
		"job_title":      j.Title,
		"applicant_id":   a.ApplicantID,
		"old_status":     string(a.Status),
		"new_status":     string(newStatus),
	})
	s.logger.Info(ctx, "application status updated",
		"application_id", applicationID, "from", a.Status, "to", newStatus)
	return nil
}

// BulkUpdateStatus applies UpdateStatus semantics across a set of
// applications. Ids not belonging to the caller's postings are silently
// excluded, as are applications already in a terminal status. Returns how
// many applications changed.
func (s *ApplicationService) BulkUpdateStatus(ctx context.Context, caller domain.Caller, applicationIDs []string, newStatus domain.ApplicationStatus) (int, error) {
	if !domain.CanTransitionApplication(domain.ApplicationPending, newStatus) {
		return 0, ecode.InvalidTransition("status %q is not a valid target", newStatus)
	}
	if len(applicationIDs) == 0 {
		return 0, nil
	}

	owned, err := s.applications.ListByIDsForEmployer(ctx, applicationIDs, caller.AccountID)
	if err != nil {
		return 0, ecode.Internal(err, "failed to load applications")
	}

	updated := 0
	for _, a := range owned {
		if !domain.CanTransitionApplication(a.Status, newStatus) || a.Status == newStatus {
			continue
		}
		if err := s.UpdateStatus(ctx, caller, a.ID, newStatus); err != nil {
			s.logger.Warn(ctx, "bulk status update skipped application",
				"application_id", a.ID, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}

// ListForJob returns the applications against one of the caller's postings.
func (s *ApplicationService) ListForJob(ctx context.Context, caller domain.Caller, jobID string) ([]*domain.ApplicationDetail, error) {
	if err := s.requireOwnership(ctx, caller, jobID); err != nil {
		return nil, err
	}
	details, err := s.applications.ListByJob(ctx, jobID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to list applications")
	}
	return details, nil
}

// ListMine returns the caller's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.JobApplication, error) {
	if !caller.IsJobSeeker() {
		return nil, ecode.Authorization("only job seekers have applications")
	}
	apps, err := s.applications.ListByApplicant(ctx, caller.AccountID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to list applications")
	}
	return apps, nil
}

// StatusCounts returns per-status application counts for one of the
// caller's postings, as shown on the employer dashboard.
func (s *ApplicationService) StatusCounts(ctx context.Context, caller domain.Caller, jobID string) (map[domain.ApplicationStatus]int, error) {
	if err := s.requireOwnership(ctx, caller, jobID); err != nil {
		return nil, err
	}
	counts, err := s.applications.StatusCounts(ctx, jobID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to count applications")
	}
	return counts, nil
}

func (s *ApplicationService) requireOwnership(ctx context.Context, caller domain.Caller, jobID string) error {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return ecode.NotFound("posting %s not found", jobID)
	}
	if !j.OwnedBy(caller.AccountID) {
		return ecode.Authorization("posting %s is not owned by the caller", jobID)
	}
	return nil
}

func (s *ApplicationService) publishEvent(ctx context.Context, t event.Type, payload map[string]any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, &event.Event{Type: t, Payload: payload}); err != nil {
		s.logger.Warn(ctx, "failed to publish event", "type", t, "error", err)
	}
}
