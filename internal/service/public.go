package service

import (
	"context"
	"time"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/paging"
)

// ListPublic returns published, unexpired postings matching the filter,
// newest first, as shown to job seekers. No authentication is required.
func (s *JobService) ListPublic(ctx context.Context, filter repository.JobFilter, params paging.Params) (*paging.Result[*domain.JobPosting], error) {
	now := time.Now().UTC()

	return paging.Paginate(params,
		func(cursor string, limit int) ([]*domain.JobPosting, int, error) {
			before := now
			if cursor != "" {
				t, err := paging.DecodeCursor(cursor)
				if err != nil {
					return nil, 0, ecode.Validation("invalid cursor")
				}
				before = t
			}
			return s.jobs.ListPublished(ctx, filter, before, now, limit)
		},
		// The cursor column must match the repository's ordering column.
		func(j *domain.JobPosting) time.Time { return j.CreatedAt })
}

// GetPublic returns one published posting by slug. Drafts and expired
// postings are not visible here.
func (s *JobService) GetPublic(ctx context.Context, slug string) (*domain.JobPosting, error) {
	j, err := s.jobs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, ecode.NotFound("posting %s not found", slug)
	}
	if !j.AcceptingApplications(time.Now().UTC()) {
		return nil, ecode.NotFound("posting %s not found", slug)
	}
	return j, nil
}
