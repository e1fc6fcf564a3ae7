package service

import (
	"context"
	"testing"
	"time"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/ecode"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/paging"
)

// publishMany creates n published postings with strictly increasing
// creation times so the listing order is deterministic.
func publishMany(t *testing.T, svc *JobService, repo *fakeJobRepo, n int) []string {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		j, err := svc.CreateDraft(ctx, employer, validInput())
		if err != nil {
			t.Fatal(err)
		}
		stored := repo.jobs[j.ID]
		stored.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		stored.Status = domain.JobPublished
		stored.Plan = domain.PlanStandard
		pub := stored.CreatedAt
		exp := stored.CreatedAt.Add(domain.PublishWindow)
		stored.PublishedAt = &pub
		stored.ExpiresAt = &exp
		ids[i] = j.ID
	}
	return ids
}

func TestListPublicPagination(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, logger.Discard())
	ctx := context.Background()

	ids := publishMany(t, svc, repo, 7)

	page1, err := svc.ListPublic(ctx, repository.JobFilter{}, paging.Params{Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(page1.Items) != 5 || !page1.HasNextPage || page1.Total != 7 {
		t.Fatalf("page1: items=%d has_next=%v total=%d", len(page1.Items), page1.HasNextPage, page1.Total)
	}
	// Newest first: the last created posting leads.
	if page1.Items[0].ID != ids[6] {
		t.Errorf("first item = %s, want %s", page1.Items[0].ID, ids[6])
	}

	page2, err := svc.ListPublic(ctx, repository.JobFilter{}, paging.Params{Limit: 5, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatal(err)
	}
	if len(page2.Items) != 2 || page2.HasNextPage {
		t.Fatalf("page2: items=%d has_next=%v", len(page2.Items), page2.HasNextPage)
	}

	seen := map[string]bool{}
	for _, j := range append(page1.Items, page2.Items...) {
		if seen[j.ID] {
			t.Fatalf("posting %s appeared on both pages", j.ID)
		}
		seen[j.ID] = true
	}
}

func TestListPublicInvalidCursor(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, logger.Discard())

	_, err := svc.ListPublic(context.Background(), repository.JobFilter{}, paging.Params{Cursor: "not a cursor"})
	if ecode.KindOf(err) != ecode.KindValidation {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestListPublicHidesDraftsAndExpired(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, logger.Discard())
	ctx := context.Background()

	ids := publishMany(t, svc, repo, 2)

	// One lapsed window, one draft.
	lapsed := repo.jobs[ids[0]]
	exp := time.Now().UTC().Add(-time.Minute)
	lapsed.ExpiresAt = &exp
	if _, err := svc.CreateDraft(ctx, employer, validInput()); err != nil {
		t.Fatal(err)
	}

	res, err := svc.ListPublic(ctx, repository.JobFilter{}, paging.Params{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != ids[1] {
		t.Fatalf("got %d items", len(res.Items))
	}
}

func TestGetPublic(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, logger.Discard())
	ctx := context.Background()

	ids := publishMany(t, svc, repo, 1)
	live := repo.jobs[ids[0]]

	got, err := svc.GetPublic(ctx, live.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != live.ID {
		t.Errorf("got %s", got.ID)
	}

	draft, err := svc.CreateDraft(ctx, employer, validInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetPublic(ctx, draft.Slug); ecode.KindOf(err) != ecode.KindNotFound {
		t.Errorf("draft visible publicly: %v", err)
	}
	if _, err := svc.GetPublic(ctx, "no-such-slug"); ecode.KindOf(err) != ecode.KindNotFound {
		t.Errorf("err = %v, want not found", err)
	}
}
