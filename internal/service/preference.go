package service

import (
	"context"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

// PreferenceInput carries the notification opt-in flags.
type PreferenceInput struct {
	EmailNewApplications    bool `json:"email_new_applications"`
	EmailApplicationUpdates bool `json:"email_application_status_updates"`
	EmailJobMatches         bool `json:"email_job_matches"`
	EmailMarketing          bool `json:"email_marketing"`
}

// PreferenceService manages per-account notification preferences.
type PreferenceService struct {
	prefs  repository.PreferenceRepository
	logger *logger.Logger
}

// NewPreferenceService creates a new preference service instance.
func NewPreferenceService(prefs repository.PreferenceRepository, log *logger.Logger) *PreferenceService {
	return &PreferenceService{prefs: prefs, logger: log}
}

// Get returns the caller's notification preferences, opted-in defaults when
// none were ever saved.
func (s *PreferenceService) Get(ctx context.Context, caller domain.Caller) (*domain.NotificationPreference, error) {
	p, err := s.prefs.Get(ctx, caller.AccountID)
	if err != nil {
		return nil, ecode.Internal(err, "failed to load notification preferences")
	}
	return p, nil
}

// Update stores the caller's notification preferences.
func (s *PreferenceService) Update(ctx context.Context, caller domain.Caller, in *PreferenceInput) (*domain.NotificationPreference, error) {
	p := &domain.NotificationPreference{
		AccountID:               caller.AccountID,
		EmailNewApplications:    in.EmailNewApplications,
		EmailApplicationUpdates: in.EmailApplicationUpdates,
		EmailJobMatches:         in.EmailJobMatches,
		EmailMarketing:          in.EmailMarketing,
	}
	if err := s.prefs.Upsert(ctx, p); err != nil {
		return nil, ecode.Internal(err, "failed to save notification preferences")
	}
	return p, nil
}
