package domain

import "time"

// ApplicationStatus is the review state of a single application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationViewed    ApplicationStatus = "viewed"
	ApplicationContacted ApplicationStatus = "contacted"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationViewed, ApplicationContacted, ApplicationRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationContacted || s == ApplicationRejected
}

// CanTransitionApplication reports whether an employer may move an
// application from one status to another. Pending is entry-only, contacted
// and rejected are terminal, and re-asserting viewed is a harmless no-op.
func CanTransitionApplication(from, to ApplicationStatus) bool {
	if !to.Valid() || to == ApplicationPending {
		return false
	}
	if from.Terminal() {
		return false
	}
	return true
}

// JobApplication is a job seeker's submission against one posting. Deleted
// only as a cascade of posting deletion.
type JobApplication struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	ApplicantID string            `json:"applicant_id"`
	CoverLetter string            `json:"cover_letter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ApplicationDetail is an application joined with the posting it targets and
// the applicant's profile, as shown to the owning employer.
type ApplicationDetail struct {
	JobApplication
	JobTitle       string         `json:"job_title"`
	ApplicantName  string         `json:"applicant_name"`
	ApplicantEmail string         `json:"applicant_email"`
	Profile        *SeekerProfile `json:"profile,omitempty"`
}
