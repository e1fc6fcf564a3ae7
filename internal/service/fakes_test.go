package service

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
)

// In-memory repository fakes. Unique violations and missing rows surface
// through the same driver error types the real repositories produce, so the
// services' error classification is exercised for real.

type fakeJobRepo struct {
	jobs map[string]*domain.JobPosting
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*domain.JobPosting)}
}

func (r *fakeJobRepo) Create(_ context.Context, j *domain.JobPosting) error {
	r.seq++
	if j.ID == "" {
		j.ID = "job-" + strconv.Itoa(r.seq)
	}
	j.CreatedAt = time.Now().UTC()
	j.UpdatedAt = j.CreatedAt
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*domain.JobPosting, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) GetBySlug(_ context.Context, slug string) (*domain.JobPosting, error) {
	for _, j := range r.jobs {
		if j.Slug == slug {
			cp := *j
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeJobRepo) UpdateFields(_ context.Context, j *domain.JobPosting) error {
	stored, ok := r.jobs[j.ID]
	if !ok || stored.EmployerID != j.EmployerID {
		return sql.ErrNoRows
	}
	cp := *j
	cp.Status = stored.Status
	cp.Plan = stored.Plan
	cp.PublishedAt = stored.PublishedAt
	cp.ExpiresAt = stored.ExpiresAt
	r.jobs[j.ID] = &cp
	return nil
}

func (r *fakeJobRepo) Publish(_ context.Context, jobID, employerID string, plan domain.JobPlan, publishedAt, expiresAt time.Time) (bool, error) {
	j, ok := r.jobs[jobID]
	if !ok || j.EmployerID != employerID {
		return false, nil
	}
	j.Status = domain.JobPublished
	j.Plan = plan
	j.PublishedAt = &publishedAt
	j.ExpiresAt = &expiresAt
	return true, nil
}

func (r *fakeJobRepo) Unpublish(_ context.Context, jobID, employerID string) (bool, error) {
	j, ok := r.jobs[jobID]
	if !ok || j.EmployerID != employerID {
		return false, nil
	}
	j.Status = domain.JobDraft
	return true, nil
}

func (r *fakeJobRepo) CountPublishedFree(_ context.Context, employerID string, now time.Time) (int, error) {
	count := 0
	for _, j := range r.jobs {
		if j.EmployerID == employerID && j.Status == domain.JobPublished &&
			j.Plan == domain.PlanFree && j.ExpiresAt != nil && j.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (r *fakeJobRepo) ListByEmployer(_ context.Context, employerID string) ([]*domain.JobPosting, error) {
	var out []*domain.JobPosting
	for _, j := range r.jobs {
		if j.EmployerID == employerID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r *fakeJobRepo) ListPublished(_ context.Context, filter repository.JobFilter, before, now time.Time, limit int) ([]*domain.JobPosting, int, error) {
	var out []*domain.JobPosting
	for _, j := range r.jobs {
		if j.Status != domain.JobPublished || j.ExpiresAt == nil || !j.ExpiresAt.After(now) {
			continue
		}
		if !j.CreatedAt.Before(before) {
			continue
		}
		if filter.Country != "" && j.Country != filter.Country {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	total := len(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeJobRepo) DeleteCascade(_ context.Context, jobID string) error {
	delete(r.jobs, jobID)
	return nil
}

type fakeApplicationRepo struct {
	apps map[string]*domain.JobApplication
	seq  int

	// jobOwner resolves a posting's owner for the employer-scoped list.
	jobOwner func(jobID string) string
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[string]*domain.JobApplication)}
}

func (r *fakeApplicationRepo) Create(_ context.Context, a *domain.JobApplication) error {
	for _, existing := range r.apps {
		if existing.JobID == a.JobID && existing.ApplicantID == a.ApplicantID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	r.seq++
	if a.ID == "" {
		a.ID = "app-" + strconv.Itoa(r.seq)
	}
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.apps[a.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id string) (*domain.JobApplication, error) {
	a, ok := r.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) GetDetail(_ context.Context, id string) (*domain.ApplicationDetail, error) {
	a, ok := r.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &domain.ApplicationDetail{JobApplication: *a}, nil
}

func (r *fakeApplicationRepo) MarkViewedIfPending(_ context.Context, id string) (bool, error) {
	a, ok := r.apps[id]
	if !ok {
		return false, sql.ErrNoRows
	}
	if a.Status != domain.ApplicationPending {
		return false, nil
	}
	a.Status = domain.ApplicationViewed
	return true, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id string, status domain.ApplicationStatus) error {
	a, ok := r.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	return nil
}

func (r *fakeApplicationRepo) ListByJob(_ context.Context, jobID string) ([]*domain.ApplicationDetail, error) {
	var out []*domain.ApplicationDetail
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, &domain.ApplicationDetail{JobApplication: *a})
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListByApplicant(_ context.Context, applicantID string) ([]*domain.JobApplication, error) {
	var out []*domain.JobApplication
	for _, a := range r.apps {
		if a.ApplicantID == applicantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListByIDsForEmployer(_ context.Context, ids []string, employerID string) ([]*domain.JobApplication, error) {
	// Ownership scoping is wired in by the test through ownedJobs.
	var out []*domain.JobApplication
	for _, id := range ids {
		a, ok := r.apps[id]
		if !ok {
			continue
		}
		if r.jobOwner != nil && r.jobOwner(a.JobID) != employerID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeApplicationRepo) StatusCounts(_ context.Context, jobID string) (map[domain.ApplicationStatus]int, error) {
	counts := make(map[domain.ApplicationStatus]int)
	for _, a := range r.apps {
		if a.JobID == jobID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
	seekers  map[string]*domain.SeekerProfile
	emps     map[string]*domain.EmployerProfile
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[string]*domain.Account),
		seekers:  make(map[string]*domain.SeekerProfile),
		emps:     make(map[string]*domain.EmployerProfile),
	}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *domain.Account) error {
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeAccountRepo) GetSeekerProfile(_ context.Context, accountID string) (*domain.SeekerProfile, error) {
	p, ok := r.seekers[accountID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *fakeAccountRepo) UpsertSeekerProfile(_ context.Context, p *domain.SeekerProfile) error {
	cp := *p
	r.seekers[p.AccountID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetEmployerProfile(_ context.Context, accountID string) (*domain.EmployerProfile, error) {
	p, ok := r.emps[accountID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *fakeAccountRepo) UpsertEmployerProfile(_ context.Context, p *domain.EmployerProfile) error {
	cp := *p
	r.emps[p.AccountID] = &cp
	return nil
}
