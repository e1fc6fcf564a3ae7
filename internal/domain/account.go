// Package domain defines the entities and state machines of the job board:
// accounts and their roles, job postings with their publication lifecycle,
// applications with their review workflow, and notification preferences.
package domain

import "time"

// Role is the closed set of account roles. A role is assigned at signup and
// never changes afterwards.
type Role string

const (
	RoleEmployer  Role = "employer"
	RoleJobSeeker Role = "job_seeker"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleJobSeeker
}

// ParseRole converts a stored role tag into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Account is an identity record. Role is immutable after creation.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Caller is the authenticated identity threaded explicitly into every
// service operation. It is never read from ambient state.
type Caller struct {
	AccountID string
	Email     string
	Role      Role
}

// IsEmployer reports whether the caller holds the employer role.
func (c Caller) IsEmployer() bool { return c.Role == RoleEmployer }

// IsJobSeeker reports whether the caller holds the job seeker role.
func (c Caller) IsJobSeeker() bool { return c.Role == RoleJobSeeker }

// SeekerProfile holds the job seeker's profile. CVURL references the
// uploaded CV document; an application cannot be submitted without it.
type SeekerProfile struct {
	AccountID string    `json:"account_id"`
	CVURL     string    `json:"cv_url,omitempty"`
	Headline  string    `json:"headline,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether the profile satisfies the application
// preconditions apart from the CV document itself.
func (p *SeekerProfile) Complete() bool {
	return p != nil && p.AccountID != ""
}

// EmployerProfile holds the employer's company details. CompanyName feeds
// outbound notification templates.
type EmployerProfile struct {
	AccountID   string    `json:"account_id"`
	CompanyName string    `json:"company_name"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CompanySize string    `json:"company_size,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
