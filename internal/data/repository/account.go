// Package repository implements persistence for accounts, postings,
// applications, and notification preferences over database/sql.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

// AccountRepository defines account and profile data operations.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetSeekerProfile(ctx context.Context, accountID string) (*domain.SeekerProfile, error)
	UpsertSeekerProfile(ctx context.Context, p *domain.SeekerProfile) error
	GetEmployerProfile(ctx context.Context, accountID string) (*domain.EmployerProfile, error)
	UpsertEmployerProfile(ctx context.Context, p *domain.EmployerProfile) error
}

type accountRepository struct {
	data   *data.Data
	logger *logger.Logger
}

// NewAccountRepository creates a new account repository instance.
func NewAccountRepository(d *data.Data, log *logger.Logger) AccountRepository {
	return &accountRepository{data: d, logger: log}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.data.DB().ExecContext(ctx,
		`INSERT INTO accounts (id, email, full_name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Email, a.FullName, string(a.Role), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if data.IsUniqueViolation(err) {
			return fmt.Errorf("account already exists: %w", err)
		}
		r.logger.Error(ctx, "failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.logger.Info(ctx, "account created", "id", a.ID, "role", a.Role)
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getAccount(ctx, `SELECT id, email, full_name, role, created_at, updated_at
		FROM accounts WHERE id = $1`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getAccount(ctx, `SELECT id, email, full_name, role, created_at, updated_at
		FROM accounts WHERE email = $1`, email)
}

func (r *accountRepository) getAccount(ctx context.Context, query string, arg any) (*domain.Account, error) {
	a := &domain.Account{}
	var role string

	err := r.data.DB().QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Email, &a.FullName, &role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, err
		}
		r.logger.Error(ctx, "failed to get account", "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	a.Role = domain.Role(role)
	return a, nil
}

func (r *accountRepository) GetSeekerProfile(ctx context.Context, accountID string) (*domain.SeekerProfile, error) {
	p := &domain.SeekerProfile{}

	err := r.data.DB().QueryRowContext(ctx,
		`SELECT account_id, cv_url, headline, summary, location, created_at, updated_at
		 FROM job_seeker_profiles WHERE account_id = $1`, accountID).
		Scan(&p.AccountID, &p.CVURL, &p.Headline, &p.Summary, &p.Location, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, err
		}
		r.logger.Error(ctx, "failed to get seeker profile", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get seeker profile: %w", err)
	}

	return p, nil
}

func (r *accountRepository) UpsertSeekerProfile(ctx context.Context, p *domain.SeekerProfile) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	_, err := r.data.DB().ExecContext(ctx,
		`INSERT INTO job_seeker_profiles (account_id, cv_url, headline, summary, location, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (account_id) DO UPDATE SET
		   cv_url = excluded.cv_url,
		   headline = excluded.headline,
		   summary = excluded.summary,
		   location = excluded.location,
		   updated_at = excluded.updated_at`,
		p.AccountID, p.CVURL, p.Headline, p.Summary, p.Location, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error(ctx, "failed to upsert seeker profile", "account_id", p.AccountID, "error", err)
		return fmt.Errorf("failed to upsert seeker profile: %w", err)
	}

	return nil
}

func (r *accountRepository) GetEmployerProfile(ctx context.Context, accountID string) (*domain.EmployerProfile, error) {
	p := &domain.EmployerProfile{}

	err := r.data.DB().QueryRowContext(ctx,
		`SELECT account_id, company_name, website, description, company_size, industry, created_at, updated_at
		 FROM employer_profiles WHERE account_id = $1`, accountID).
		Scan(&p.AccountID, &p.CompanyName, &p.Website, &p.Description, &p.CompanySize, &p.Industry, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if data.IsNotFound(err) {
			return nil, err
		}
		r.logger.Error(ctx, "failed to get employer profile", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get employer profile: %w", err)
	}

	return p, nil
}

func (r *accountRepository) UpsertEmployerProfile(ctx context.Context, p *domain.EmployerProfile) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	_, err := r.data.DB().ExecContext(ctx,
		`INSERT INTO employer_profiles (account_id, company_name, website, description, company_size, industry, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (account_id) DO UPDATE SET
		   company_name = excluded.company_name,
		   website = excluded.website,
		   description = excluded.description,
		   company_size = excluded.company_size,
		   industry = excluded.industry,
		   updated_at = excluded.updated_at`,
		p.AccountID, p.CompanyName, p.Website, p.Description, p.CompanySize, p.Industry, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error(ctx, "failed to upsert employer profile", "account_id", p.AccountID, "error", err)
		return fmt.Errorf("failed to upsert employer profile: %w", err)
	}

	return nil
}

// nullTime converts sql.NullTime to *time.Time.
func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
