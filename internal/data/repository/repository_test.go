package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jobhive/jobhive/internal/data"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/nanoid"
)

func newTestData(t *testing.T) *data.Data {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	d := data.NewWithDB(db, "sqlite3", logger.Discard())
	if err := d.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func createAccount(t *testing.T, repo AccountRepository, role domain.Role, email string) *domain.Account {
	t.Helper()
	a := &domain.Account{ID: nanoid.PrimaryKey(), Email: email, FullName: "Test User", Role: role}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func createJob(t *testing.T, repo JobRepository, employerID string) *domain.JobPosting {
	t.Helper()
	j := &domain.JobPosting{
		ID:           nanoid.PrimaryKey(),
		EmployerID:   employerID,
		Title:        "Backend Engineer",
		Slug:         "backend-engineer-" + nanoid.Must(6),
		Description:  "Build the backend.",
		Country:      "DE",
		EmailToApply: "jobs@acme.test",
		Status:       domain.JobDraft,
		Plan:         domain.PlanFree,
	}
	if err := repo.Create(context.Background(), j); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j
}

func TestAccountRoundTrip(t *testing.T) {
	d := newTestData(t)
	repo := NewAccountRepository(d, logger.Discard())
	ctx := context.Background()

	a := createAccount(t, repo, domain.RoleEmployer, "hr@acme.test")

	byID, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if byID.Email != a.Email || byID.Role != domain.RoleEmployer {
		t.Errorf("got %+v", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, "hr@acme.test")
	if err != nil {
		t.Fatal(err)
	}
	if byEmail.ID != a.ID {
		t.Errorf("id = %s, want %s", byEmail.ID, a.ID)
	}

	dup := &domain.Account{ID: nanoid.PrimaryKey(), Email: "hr@acme.test", Role: domain.RoleEmployer}
	err = repo.Create(ctx, dup)
	if err == nil || !data.IsUniqueViolation(err) {
		t.Errorf("duplicate email: err = %v, want unique violation", err)
	}
}

func TestSeekerProfileUpsert(t *testing.T) {
	d := newTestData(t)
	repo := NewAccountRepository(d, logger.Discard())
	ctx := context.Background()

	a := createAccount(t, repo, domain.RoleJobSeeker, "dev@mail.test")

	if _, err := repo.GetSeekerProfile(ctx, a.ID); !data.IsNotFound(err) {
		t.Fatalf("expected no rows, got %v", err)
	}

	p := &domain.SeekerProfile{AccountID: a.ID, Headline: "Go developer"}
	if err := repo.UpsertSeekerProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	p.CVURL = "cvs/x/cv.pdf"
	if err := repo.UpsertSeekerProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetSeekerProfile(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CVURL != "cvs/x/cv.pdf" || got.Headline != "Go developer" {
		t.Errorf("got %+v", got)
	}
}

func TestPublishScopedAndIdempotent(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	j := createJob(t, jobs, emp.ID)

	now := time.Now().UTC().Truncate(time.Second)
	expires := now.Add(domain.PublishWindow)

	// Wrong employer: no row matches, nothing changes.
	ok, err := jobs.Publish(ctx, j.ID, "someone-else", domain.PlanStandard, now, expires)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("publish matched a non-owned posting")
	}

	ok, err = jobs.Publish(ctx, j.ID, emp.ID, domain.PlanStandard, now, expires)
	if err != nil || !ok {
		t.Fatalf("publish: ok=%v err=%v", ok, err)
	}

	// Replay with identical fields converges on the same state.
	ok, err = jobs.Publish(ctx, j.ID, emp.ID, domain.PlanStandard, now, expires)
	if err != nil || !ok {
		t.Fatalf("replayed publish: ok=%v err=%v", ok, err)
	}

	got, err := jobs.GetByID(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.JobPublished || got.Plan != domain.PlanStandard {
		t.Errorf("status=%s plan=%s", got.Status, got.Plan)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(now) {
		t.Errorf("published_at = %v, want %v", got.PublishedAt, now)
	}

	ok, err = jobs.Unpublish(ctx, j.ID, emp.ID)
	if err != nil || !ok {
		t.Fatalf("unpublish: ok=%v err=%v", ok, err)
	}
	got, _ = jobs.GetByID(ctx, j.ID)
	if got.Status != domain.JobDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
}

func TestCountPublishedFree(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	now := time.Now().UTC()

	// Two live free postings, one expired, one paid.
	for i := 0; i < 2; i++ {
		j := createJob(t, jobs, emp.ID)
		jobs.Publish(ctx, j.ID, emp.ID, domain.PlanFree, now, now.Add(domain.PublishWindow))
	}
	old := createJob(t, jobs, emp.ID)
	jobs.Publish(ctx, old.ID, emp.ID, domain.PlanFree, now.Add(-31*24*time.Hour), now.Add(-24*time.Hour))
	paid := createJob(t, jobs, emp.ID)
	jobs.Publish(ctx, paid.ID, emp.ID, domain.PlanPro, now, now.Add(domain.PublishWindow))

	count, err := jobs.CountPublishedFree(ctx, emp.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestListPublishedFilters(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	now := time.Now().UTC()

	de := createJob(t, jobs, emp.ID)
	jobs.Publish(ctx, de.ID, emp.ID, domain.PlanFree, now.Add(-2*time.Hour), now.Add(domain.PublishWindow))

	fr := &domain.JobPosting{
		ID: nanoid.PrimaryKey(), EmployerID: emp.ID, Title: "Data Engineer",
		Slug: "data-engineer-" + nanoid.Must(6), Description: "Pipelines.",
		Country: "FR", IsGlobalRemote: true, EmailToApply: "jobs@acme.test",
		Status: domain.JobDraft, Plan: domain.PlanFree, Sphere: "data",
	}
	if err := jobs.Create(ctx, fr); err != nil {
		t.Fatal(err)
	}
	jobs.Publish(ctx, fr.ID, emp.ID, domain.PlanFree, now.Add(-time.Hour), now.Add(domain.PublishWindow))

	draft := createJob(t, jobs, emp.ID)
	_ = draft

	// The cursor is exclusive on created_at, so query from just past the rows.
	before := time.Now().UTC().Add(time.Second)

	all, total, err := jobs.ListPublished(ctx, JobFilter{}, before, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(all))
	}
	// Newest first.
	if all[0].ID != fr.ID {
		t.Errorf("first = %s, want the most recent posting", all[0].ID)
	}

	byCountry, _, err := jobs.ListPublished(ctx, JobFilter{Country: "FR"}, before, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byCountry) != 1 || byCountry[0].ID != fr.ID {
		t.Errorf("country filter returned %d rows", len(byCountry))
	}

	remote := true
	byRemote, _, err := jobs.ListPublished(ctx, JobFilter{GlobalRemote: &remote}, before, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byRemote) != 1 || byRemote[0].ID != fr.ID {
		t.Errorf("remote filter returned %d rows", len(byRemote))
	}

	bySearch, _, err := jobs.ListPublished(ctx, JobFilter{Search: "data"}, before, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != fr.ID {
		t.Errorf("search filter returned %d rows", len(bySearch))
	}
}

func TestUpdateFieldsScopedToOwner(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	j := createJob(t, jobs, emp.ID)

	j.Title = "Senior Backend Engineer"
	if err := jobs.UpdateFields(ctx, j); err != nil {
		t.Fatal(err)
	}
	got, _ := jobs.GetByID(ctx, j.ID)
	if got.Title != "Senior Backend Engineer" {
		t.Errorf("title = %q", got.Title)
	}

	stolen := *j
	stolen.EmployerID = "someone-else"
	if err := jobs.UpdateFields(ctx, &stolen); !data.IsNotFound(err) {
		t.Errorf("foreign update: err = %v, want no rows", err)
	}
}

func TestApplicationUniqueConstraint(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	apps := NewApplicationRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	seeker := createAccount(t, accounts, domain.RoleJobSeeker, "dev@mail.test")
	j := createJob(t, jobs, emp.ID)

	a := &domain.JobApplication{
		ID: nanoid.PrimaryKey(), JobID: j.ID, ApplicantID: seeker.ID,
		Status: domain.ApplicationPending,
	}
	if err := apps.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	dup := &domain.JobApplication{
		ID: nanoid.PrimaryKey(), JobID: j.ID, ApplicantID: seeker.ID,
		Status: domain.ApplicationPending,
	}
	err := apps.Create(ctx, dup)
	if err == nil || !data.IsUniqueViolation(err) {
		t.Fatalf("duplicate application: err = %v, want unique violation", err)
	}
}

func TestMarkViewedIfPending(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	apps := NewApplicationRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	seeker := createAccount(t, accounts, domain.RoleJobSeeker, "dev@mail.test")
	j := createJob(t, jobs, emp.ID)

	a := &domain.JobApplication{
		ID: nanoid.PrimaryKey(), JobID: j.ID, ApplicantID: seeker.ID,
		Status: domain.ApplicationPending,
	}
	apps.Create(ctx, a)

	marked, err := apps.MarkViewedIfPending(ctx, a.ID)
	if err != nil || !marked {
		t.Fatalf("first mark: marked=%v err=%v", marked, err)
	}
	marked, err = apps.MarkViewedIfPending(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if marked {
		t.Error("second mark reported a transition")
	}

	got, _ := apps.GetByID(ctx, a.ID)
	if got.Status != domain.ApplicationViewed {
		t.Errorf("status = %s, want viewed", got.Status)
	}
}

func TestListByIDsForEmployerScope(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	apps := NewApplicationRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	rival := createAccount(t, accounts, domain.RoleEmployer, "hr@rival.test")
	seeker := createAccount(t, accounts, domain.RoleJobSeeker, "dev@mail.test")

	mine := createJob(t, jobs, emp.ID)
	theirs := createJob(t, jobs, rival.ID)

	a1 := &domain.JobApplication{ID: nanoid.PrimaryKey(), JobID: mine.ID, ApplicantID: seeker.ID, Status: domain.ApplicationPending}
	a2 := &domain.JobApplication{ID: nanoid.PrimaryKey(), JobID: theirs.ID, ApplicantID: seeker.ID, Status: domain.ApplicationPending}
	apps.Create(ctx, a1)
	apps.Create(ctx, a2)

	got, err := apps.ListByIDsForEmployer(ctx, []string{a1.ID, a2.ID, "missing"}, emp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a1.ID {
		t.Fatalf("got %d rows, want only the owned application", len(got))
	}
}

func TestDeleteCascade(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	jobs := NewJobRepository(d, logger.Discard())
	apps := NewApplicationRepository(d, logger.Discard())
	ctx := context.Background()

	emp := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")
	seeker := createAccount(t, accounts, domain.RoleJobSeeker, "dev@mail.test")
	j := createJob(t, jobs, emp.ID)

	a := &domain.JobApplication{ID: nanoid.PrimaryKey(), JobID: j.ID, ApplicantID: seeker.ID, Status: domain.ApplicationPending}
	apps.Create(ctx, a)

	if err := jobs.DeleteCascade(ctx, j.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := jobs.GetByID(ctx, j.ID); !data.IsNotFound(err) {
		t.Errorf("posting still present: %v", err)
	}
	if _, err := apps.GetByID(ctx, a.ID); !data.IsNotFound(err) {
		t.Errorf("application survived the cascade: %v", err)
	}
}

func TestPreferenceDefaultsToOptedIn(t *testing.T) {
	d := newTestData(t)
	accounts := NewAccountRepository(d, logger.Discard())
	prefs := NewPreferenceRepository(d, logger.Discard())
	ctx := context.Background()

	a := createAccount(t, accounts, domain.RoleEmployer, "hr@acme.test")

	p, err := prefs.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !p.EmailNewApplications || !p.EmailApplicationUpdates {
		t.Error("missing preference row must mean opted in")
	}

	p.EmailNewApplications = false
	if err := prefs.Upsert(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := prefs.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EmailNewApplications {
		t.Error("stored opt-out not returned")
	}
	if !got.EmailApplicationUpdates {
		t.Error("unrelated flag flipped")
	}
}
