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

// JobFilter narrows public published-job queries.
type JobFilter struct {
	Country         string
	GlobalRemote    *bool
	VisaSponsorship *bool
	Sphere          string
	Search          string
}

// JobRepository defines job posting data operations.
type JobRepository interface {
	Create(ctx context.Context, j *domain.JobPosting) error
	GetByID(ctx context.Context, id string) (*domain.JobPosting, error)
	GetBySlug(ctx context.Context, slug string) (*domain.JobPosting, error)
	UpdateFields(ctx context.Context, j *domain.JobPosting) error
	Publish(ctx context.Context, jobID, employerID string, plan domain.JobPlan, publishedAt, expiresAt time.Time) (bool, error)
	Unpublish(ctx context.Context, jobID, employerID string) (bool, error)
	CountPublishedFree(ctx context.Context, employerID string, now time.Time) (int, error)
	ListByEmployer(ctx context.Context, employerID string) ([]*domain.JobPosting, error)
	ListPublished(ctx context.Context, filter JobFilter, before time.Time, now time.Time, limit int) ([]*domain.JobPosting, int, error)
	DeleteCascade(ctx context.Context, jobID string) error
}

type jobRepository struct {
	data   *data.Data
	logger *logger.Logger
}

// NewJobRepository creates a new job repository instance.
func NewJobRepository(d *data.Data, log *logger.Logger) JobRepository {
	return &jobRepository{data: d, logger: log}
}

const jobColumns = `id, employer_id, title, slug, description, country, city,
	is_global_remote, is_visa_sponsorship, salary_from, salary_to,
	email_to_apply, link_to_apply, sphere, status, plan,
	published_at, expires_at, created_at, updated_at`

func (r *jobRepository) Create(ctx context.Context, j *domain.JobPosting) error {
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	_, err := r.data.DB().ExecContext(ctx,
		`INSERT INTO job_postings (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		j.ID, j.EmployerID, j.Title, j.Slug, j.Description, j.Country, j.City,
		j.IsGlobalRemote, j.IsVisaSponsorship, j.SalaryFrom, j.SalaryTo,
		j.EmailToApply, j.LinkToApply, j.Sphere, string(j.Status), string(j.Plan),
		j.PublishedAt, j.ExpiresAt, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		r.logger.Error(ctx, "failed to create job posting", "error", err)
		return fmt.Errorf("failed to create job posting: %w", err)
	}

	r.logger.Info(ctx, "job posting created", "id", j.ID, "employer_id", j.EmployerID)
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.JobPosting, error) {
	return r.getJob(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE id = $1`, id)
}

func (r *jobRepository) GetBySlug(ctx context.Context, slug string) (*domain.JobPosting, error) {
	return r.getJob(ctx, `SELECT `+jobColumns+` FROM job_postings WHERE slug = $1`, slug)
}

func (r *jobRepository) getJob(ctx context.Context, query string, arg any) (*domain.JobPosting, error) {
	row := r.data.DB().QueryRowContext(ctx, query, arg)
	j, err := scanJob(row)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, err
		}
		r.logger.Error(ctx, "failed to get job posting", "error", err)
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return j, nil
}

func (r *jobRepository) UpdateFields(ctx context.Context, j *domain.JobPosting) error {
	j.UpdatedAt = time.Now().UTC()

	res, err := r.data.DB().ExecContext(ctx,
		`UPDATE job_postings SET
		   title = $1, slug = $2, description = $3, country = $4, city = $5,
		   is_global_remote = $6, is_visa_sponsorship = $7,
		   salary_from = $8, salary_to = $9,
		   email_to_apply = $10, link_to_apply = $11, sphere = $12,
		   updated_at = $13
		 WHERE id = $14 AND employer_id = $15`,
		j.Title, j.Slug, j.Description, j.Country, j.City,
		j.IsGlobalRemote, j.IsVisaSponsorship,
		j.SalaryFrom, j.SalaryTo,
		j.EmailToApply, j.LinkToApply, j.Sphere,
		j.UpdatedAt, j.ID, j.EmployerID)
	if err != nil {
		r.logger.Error(ctx, "failed to update job posting", "id", j.ID, "error", err)
		return fmt.Errorf("failed to update job posting: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Publish is an absolute set-fields write scoped to (jobID, employerID).
// Both confirmation paths issue the same statement, so racing calls
// converge on identical state. Returns false when no row matched.
func (r *jobRepository) Publish(ctx context.Context, jobID, employerID string, plan domain.JobPlan, publishedAt, expiresAt time.Time) (bool, error) {
	res, err := r.data.DB().ExecContext(ctx,
		`UPDATE job_postings SET
		   status = $1, plan = $2, published_at = $3, expires_at = $4, updated_at = $5
		 WHERE id = $6 AND employer_id = $7`,
		string(domain.JobPublished), string(plan), publishedAt, expiresAt, time.Now().UTC(),
		jobID, employerID)
	if err != nil {
		r.logger.Error(ctx, "failed to publish job posting", "id", jobID, "error", err)
		return false, fmt.Errorf("failed to publish job posting: %w", err)
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		r.logger.Info(ctx, "job posting published", "id", jobID, "plan", plan)
	}
	return n > 0, nil
}

func (r *jobRepository) Unpublish(ctx context.Context, jobID, employerID string) (bool, error) {
	res, err := r.data.DB().ExecContext(ctx,
		`UPDATE job_postings SET status = $1, updated_at = $2
		 WHERE id = $3 AND employer_id = $4`,
		string(domain.JobDraft), time.Now().UTC(), jobID, employerID)
	if err != nil {
		r.logger.Error(ctx, "failed to unpublish job posting", "id", jobID, "error", err)
		return false, fmt.Errorf("failed to unpublish job posting: %w", err)
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CountPublishedFree counts the employer's free-plan postings that are
// published and still inside their validity window.
func (r *jobRepository) CountPublishedFree(ctx context.Context, employerID string, now time.Time) (int, error) {
	var count int
	err := r.data.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_postings
		 WHERE employer_id = $1 AND status = $2 AND plan = $3 AND expires_at > $4`,
		employerID, string(domain.JobPublished), string(domain.PlanFree), now).
		Scan(&count)
	if err != nil {
		r.logger.Error(ctx, "failed to count published free postings", "employer_id", employerID, "error", err)
		return 0, fmt.Errorf("failed to count published free postings: %w", err)
	}
	return count, nil
}

func (r *jobRepository) ListByEmployer(ctx context.Context, employerID string) ([]*domain.JobPosting, error) {
	rows, err := r.data.DB().QueryContext(ctx,
		`SELECT `+jobColumns+` FROM job_postings
		 WHERE employer_id = $1 ORDER BY created_at DESC`, employerID)
	if err != nil {
		r.logger.Error(ctx, "failed to list employer postings", "employer_id", employerID, "error", err)
		return nil, fmt.Errorf("failed to list employer postings: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListPublished returns published, unexpired postings created before the
// cursor time, newest first, plus the total matching count.
func (r *jobRepository) ListPublished(ctx context.Context, filter JobFilter, before time.Time, now time.Time, limit int) ([]*domain.JobPosting, int, error) {
	where := []string{"status = $1", "expires_at > $2", "created_at < $3"}
	args := []any{string(domain.JobPublished), now, before}

	appendCond := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Country != "" {
		appendCond("country = $%d", filter.Country)
	}
	if filter.GlobalRemote != nil {
		appendCond("is_global_remote = $%d", *filter.GlobalRemote)
	}
	if filter.VisaSponsorship != nil {
		appendCond("is_visa_sponsorship = $%d", *filter.VisaSponsorship)
	}
	if filter.Sphere != "" {
		appendCond("sphere = $%d", filter.Sphere)
	}
	if filter.Search != "" {
		appendCond("LOWER(title) LIKE $%d", "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := strings.Join(where, " AND ")

	var total int
	countArgs := args[:len(args):len(args)]
	if err := r.data.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_postings WHERE `+clause, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count published postings: %w", err)
	}

	args = append(args, limit)
	rows, err := r.data.DB().QueryContext(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE `+clause+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)), args...)
	if err != nil {
		r.logger.Error(ctx, "failed to list published postings", "error", err)
		return nil, 0, fmt.Errorf("failed to list published postings: %w", err)
	}
	defer rows.Close()

	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// DeleteCascade removes the posting's applications first, then the posting
// itself, inside one transaction.
func (r *jobRepository) DeleteCascade(ctx context.Context, jobID string) error {
	err := r.data.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM job_applications WHERE job_id = $1`, jobID); err != nil {
			return fmt.Errorf("failed to delete applications: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM job_postings WHERE id = $1`, jobID)
		if err != nil {
			return fmt.Errorf("failed to delete job posting: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		if !data.IsNotFound(err) {
			r.logger.Error(ctx, "failed to delete job posting", "id", jobID, "error", err)
		}
		return err
	}

	r.logger.Info(ctx, "job posting deleted", "id", jobID)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.JobPosting, error) {
	j := &domain.JobPosting{}
	var status, plan string
	var salaryFrom, salaryTo sql.NullInt64
	var publishedAt, expiresAt sql.NullTime

	err := row.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Slug, &j.Description,
		&j.Country, &j.City, &j.IsGlobalRemote, &j.IsVisaSponsorship,
		&salaryFrom, &salaryTo, &j.EmailToApply, &j.LinkToApply, &j.Sphere,
		&status, &plan, &publishedAt, &expiresAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	j.Status = domain.JobStatus(status)
	j.Plan = domain.JobPlan(plan)
	if salaryFrom.Valid {
		v := int(salaryFrom.Int64)
		j.SalaryFrom = &v
	}
	if salaryTo.Valid {
		v := int(salaryTo.Int64)
		j.SalaryTo = &v
	}
	j.PublishedAt = nullTime(publishedAt)
	j.ExpiresAt = nullTime(expiresAt)
	return j, nil
}

func collectJobs(rows *sql.Rows) ([]*domain.JobPosting, error) {
	var jobs []*domain.JobPosting
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job postings: %w", err)
	}
	return jobs, nil
}
