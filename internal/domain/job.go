package domain

import "time"

// JobStatus is the persisted lifecycle state of a posting. Only draft and
// published are ever written; expired is derived from expires_at at read
// time and never stored.
type JobStatus string

const (
	JobDraft     JobStatus = "draft"
	JobPublished JobStatus = "published"
	JobExpired   JobStatus = "expired"
)

// Persistable reports whether s may be written to the store.
func (s JobStatus) Persistable() bool {
	return s == JobDraft || s == JobPublished
}

// JobPlan is the pricing tier of a posting.
type JobPlan string

const (
	PlanFree     JobPlan = "free"
	PlanStandard JobPlan = "standard"
	PlanPremium  JobPlan = "premium"
	PlanPro      JobPlan = "pro"
)

// Valid reports whether p is a known plan.
func (p JobPlan) Valid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPremium, PlanPro:
		return true
	}
	return false
}

// Paid reports whether p requires a payment before publication.
func (p JobPlan) Paid() bool {
	return p.Valid() && p != PlanFree
}

const (
	// PublishWindow is how long a posting stays published before it is
	// considered expired.
	PublishWindow = 30 * 24 * time.Hour

	// FreePublishLimit caps how many free-plan postings an employer may
	// hold published at the same time.
	FreePublishLimit = 3
)

// JobPosting is a single job advertisement owned by one employer.
type JobPosting struct {
	ID                string     `json:"id"`
	EmployerID        string     `json:"employer_id"`
	Title             string     `json:"title"`
	Slug              string     `json:"slug"`
	Description       string     `json:"description"`
	Country           string     `json:"country,omitempty"`
	City              string     `json:"city,omitempty"`
	IsGlobalRemote    bool       `json:"is_global_remote"`
	IsVisaSponsorship bool       `json:"is_visa_sponsorship"`
	SalaryFrom        *int       `json:"salary_from,omitempty"`
	SalaryTo          *int       `json:"salary_to,omitempty"`
	EmailToApply      string     `json:"email_to_apply,omitempty"`
	LinkToApply       string     `json:"link_to_apply,omitempty"`
	Sphere            string     `json:"sphere,omitempty"`
	Status            JobStatus  `json:"status"`
	Plan              JobPlan    `json:"plan"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// OwnedBy reports whether the posting belongs to the given employer.
func (j *JobPosting) OwnedBy(employerID string) bool {
	return j.EmployerID == employerID
}

// Expired reports whether a published posting's validity window has passed.
func (j *JobPosting) Expired(now time.Time) bool {
	return j.Status == JobPublished && j.ExpiresAt != nil && now.After(*j.ExpiresAt)
}

// EffectiveStatus derives the externally visible status. The store never
// holds "expired"; it is computed here uniformly for every consumer.
func (j *JobPosting) EffectiveStatus(now time.Time) JobStatus {
	if j.Expired(now) {
		return JobExpired
	}
	return j.Status
}

// AcceptingApplications reports whether the posting can receive a
// submission right now.
func (j *JobPosting) AcceptingApplications(now time.Time) bool {
	return j.EffectiveStatus(now) == JobPublished
}

// CanTransition reports whether setStatus may move a posting between
// statuses. "from" is the derived status, so a posting whose validity
// window lapsed can still be republished (resetting the window) or pulled
// back to draft. Anything not listed is rejected.
func CanTransition(from, to JobStatus) bool {
	switch {
	case from == JobDraft && to == JobPublished:
		return true
	case from == JobPublished && to == JobDraft:
		return true
	case from == JobPublished && to == JobPublished:
		return true
	case from == JobExpired && to == JobPublished:
		return true
	case from == JobExpired && to == JobDraft:
		return true
	}
	return false
}
