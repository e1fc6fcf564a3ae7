package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

// PreferenceRepository defines notification preference data operations.
// A missing row means the account is opted in to everything.
type PreferenceRepository interface {
	Get(ctx context.Context, accountID string) (*domain.NotificationPreference, error)
	Upsert(ctx context.Context, p *domain.NotificationPreference) error
}

type preferenceRepository struct {
	data   *data.Data
	logger *logger.Logger
}

// NewPreferenceRepository creates a new preference repository instance.
func NewPreferenceRepository(d *data.Data, log *logger.Logger) PreferenceRepository {
	return &preferenceRepository{data: d, logger: log}
}

// Get returns the stored preference, or the opted-in defaults when no row
// exists.
func (r *preferenceRepository) Get(ctx context.Context, accountID string) (*domain.NotificationPreference, error) {
	p := &domain.NotificationPreference{}

	err := r.data.DB().QueryRowContext(ctx,
		`SELECT account_id, email_new_applications, email_application_status_updates,
		        email_job_matches, email_marketing, created_at, updated_at
		 FROM notification_preferences WHERE account_id = $1`, accountID).
		Scan(&p.AccountID, &p.EmailNewApplications, &p.EmailApplicationUpdates,
			&p.EmailJobMatches, &p.EmailMarketing, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if data.IsNotFound(err) {
			return domain.DefaultNotificationPreference(accountID), nil
		}
		r.logger.Error(ctx, "failed to get notification preference", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get notification preference: %w", err)
	}

	return p, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, p *domain.NotificationPreference) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	_, err := r.data.DB().ExecContext(ctx,
		`INSERT INTO notification_preferences
		   (account_id, email_new_applications, email_application_status_updates,
		    email_job_matches, email_marketing, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (account_id) DO UPDATE SET
		   email_new_applications = excluded.email_new_applications,
		   email_application_status_updates = excluded.email_application_status_updates,
		   email_job_matches = excluded.email_job_matches,
		   email_marketing = excluded.email_marketing,
		   updated_at = excluded.updated_at`,
		p.AccountID, p.EmailNewApplications, p.EmailApplicationUpdates,
		p.EmailJobMatches, p.EmailMarketing, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error(ctx, "failed to upsert notification preference", "account_id", p.AccountID, "error", err)
		return fmt.Errorf("failed to upsert notification preference: %w", err)
	}

	return nil
}
