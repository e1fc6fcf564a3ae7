package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

// ApplicationRepository defines application data operations. The unique
// (job_id, applicant_id) constraint in the store backs the one-application-
// per-candidate-per-posting invariant; Create surfaces its violation.
type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.JobApplication) error
	GetByID(ctx context.Context, id string) (*domain.JobApplication, error)
	GetDetail(ctx context.Context, id string) (*domain.ApplicationDetail, error)
	MarkViewedIfPending(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error
	ListByJob(ctx context.Context, jobID string) ([]*domain.ApplicationDetail, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobApplication, error)
	ListByIDsForEmployer(ctx context.Context, ids []string, employerID string) ([]*domain.JobApplication, error)
	StatusCounts(ctx context.Context, jobID string) (map[domain.ApplicationStatus]int, error)
}

type applicationRepository struct {
	data   *data.Data
	logger *logger.Logger
}

// NewApplicationRepository creates a new application repository instance.
func NewApplicationRepository(d *data.Data, log *logger.Logger) ApplicationRepository {
	return &applicationRepository{data: d, logger: log}
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.JobApplication) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.data.DB().ExecContext(ctx,
		`INSERT INTO job_applications (id, job_id, applicant_id, cover_letter, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.JobID, a.ApplicantID, a.CoverLetter, string(a.Status), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if data.IsUniqueViolation(err) {
			return fmt.Errorf("application already exists: %w", err)
		}
		r.logger.Error(ctx, "failed to create application", "job_id", a.JobID, "error", err)
		return fmt.Errorf("failed to create application: %w", err)
	}

	r.logger.Info(ctx, "application created", "id", a.ID, "job_id", a.JobID)
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	a := &domain.JobApplication{}
	var status string

	err := r.data.DB().QueryRowContext(ctx,
		`SELECT id, job_id, applicant_id, cover_letter, status, created_at, updated_at
		 FROM job_applications WHERE id = $1`, id).
		Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, err
		}
		r.logger.Error(ctx, "failed to get application", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	a.Status = domain.ApplicationStatus(status)
	return a, nil
}

func (r *applicationRepository) GetDetail(ctx context.Context, id string) (*domain.ApplicationDetail, error) {
	d := &domain.ApplicationDetail{}
	var status string
	var cvURL, headline, summary, location sql.NullString

	err := r.data.DB().QueryRowContext(ctx,
		`SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.status, a.created_at, a.updated_at,
		        j.title, acc.full_name, acc.email,
		        p.cv_url, p.headline, p.summary, p.location
		 FROM job_applications a
		 JOIN job_postings j ON j.id = a.job_id
		 JOIN accounts acc ON acc.id = a.applicant_id
		 LEFT JOIN job_seeker_profiles p ON p.account_id = a.applicant_id
		 WHERE a.id = $1`, id).
		Scan(&d.ID, &d.JobID, &d.ApplicantID, &d.CoverLetter, &status, &d.CreatedAt, &d.UpdatedAt,
			&d.JobTitle, &d.ApplicantName, &d.ApplicantEmail,
			&cvURL, &headline, &summary, &location)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, err
		}
		r.logger.Error(ctx, "failed to get application detail", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get application detail: %w", err)
	}

	d.Status = domain.ApplicationStatus(status)
	if cvURL.Valid {
		d.Profile = &domain.SeekerProfile{
			AccountID: d.ApplicantID,
			CVURL:     cvURL.String,
			Headline:  headline.String,
			Summary:   summary.String,
			Location:  location.String,
		}
	}
	return d, nil
}

// MarkViewedIfPending transitions pending to viewed in one conditional
// write. Returns whether the transition happened.
func (r *applicationRepository) MarkViewedIfPending(ctx context.Context, id string) (bool, error) {
	res, err := r.data.DB().ExecContext(ctx,
		`UPDATE job_applications SET status = $1, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		string(domain.ApplicationViewed), time.Now().UTC(), id, string(domain.ApplicationPending))
	if err != nil {
		r.logger.Error(ctx, "failed to mark application viewed", "id", id, "error", err)
		return false, fmt.Errorf("failed to mark application viewed: %w", err)
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	res, err := r.data.DB().ExecContext(ctx,
		`UPDATE job_applications SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		r.logger.Error(ctx, "failed to update application status", "id", id, "error", err)
		return fmt.Errorf("failed to update application status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	r.logger.Info(ctx, "application status updated", "id", id, "status", status)
	return nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.ApplicationDetail, error) {
	rows, err := r.data.DB().QueryContext(ctx,
		`SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.status, a.created_at, a.updated_at,
		        j.title, acc.full_name, acc.email,
		        p.cv_url, p.headline, p.summary, p.location
		 FROM job_applications a
		 JOIN job_postings j ON j.id = a.job_id
		 JOIN accounts acc ON acc.id = a.applicant_id
		 LEFT JOIN job_seeker_profiles p ON p.account_id = a.applicant_id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at DESC`, jobID)
	if err != nil {
		r.logger.Error(ctx, "failed to list applications", "job_id", jobID, "error", err)
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var details []*domain.ApplicationDetail
	for rows.Next() {
		d := &domain.ApplicationDetail{}
		var status string
		var cvURL, headline, summary, location sql.NullString

		if err := rows.Scan(&d.ID, &d.JobID, &d.ApplicantID, &d.CoverLetter, &status, &d.CreatedAt, &d.UpdatedAt,
			&d.JobTitle, &d.ApplicantName, &d.ApplicantEmail,
			&cvURL, &headline, &summary, &location); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}

		d.Status = domain.ApplicationStatus(status)
		if cvURL.Valid {
			d.Profile = &domain.SeekerProfile{
				AccountID: d.ApplicantID,
				CVURL:     cvURL.String,
				Headline:  headline.String,
				Summary:   summary.String,
				Location:  location.String,
			}
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return details, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobApplication, error) {
	rows, err := r.data.DB().QueryContext(ctx,
		`SELECT id, job_id, applicant_id, cover_letter, status, created_at, updated_at
		 FROM job_applications WHERE applicant_id = $1
		 ORDER BY created_at DESC`, applicantID)
	if err != nil {
		r.logger.Error(ctx, "failed to list applicant applications", "applicant_id", applicantID, "error", err)
		return nil, fmt.Errorf("failed to list applicant applications: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListByIDsForEmployer returns only the applications from ids whose parent
// posting belongs to the employer. Non-owned ids are absent from the
// result, not an error.
func (r *applicationRepository) ListByIDsForEmployer(ctx context.Context, ids []string, employerID string) ([]*domain.JobApplication, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, employerID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	rows, err := r.data.DB().QueryContext(ctx,
		`SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.status, a.created_at, a.updated_at
		 FROM job_applications a
		 JOIN job_postings j ON j.id = a.job_id
		 WHERE j.employer_id = $1 AND a.id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		r.logger.Error(ctx, "failed to list applications by ids", "employer_id", employerID, "error", err)
		return nil, fmt.Errorf("failed to list applications by ids: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

func (r *applicationRepository) StatusCounts(ctx context.Context, jobID string) (map[domain.ApplicationStatus]int, error) {
	rows, err := r.data.DB().QueryContext(ctx,
		`SELECT status, COUNT(*) FROM job_applications WHERE job_id = $1 GROUP BY status`, jobID)
	if err != nil {
		r.logger.Error(ctx, "failed to count applications", "job_id", jobID, "error", err)
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ApplicationStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan application count: %w", err)
		}
		counts[domain.ApplicationStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate application counts: %w", err)
	}
	return counts, nil
}

func collectApplications(rows *sql.Rows) ([]*domain.JobApplication, error) {
	var apps []*domain.JobApplication
	for rows.Next() {
		a := &domain.JobApplication{}
		var status string
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		a.Status = domain.ApplicationStatus(status)
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}
