package domain

import "time"

// NotificationPreference holds per-account opt-in flags for each outbound
// email category. The absence of a stored row means everything is opted in,
// which is why Default returns all-true.
type NotificationPreference struct {
	AccountID               string    `json:"account_id"`
	EmailNewApplications    bool      `json:"email_new_applications"`
	EmailApplicationUpdates bool      `json:"email_application_status_updates"`
	EmailJobMatches         bool      `json:"email_job_matches"`
	EmailMarketing          bool      `json:"email_marketing"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// DefaultNotificationPreference returns the opted-in defaults used when no
// preference row exists for an account.
func DefaultNotificationPreference(accountID string) *NotificationPreference {
	return &NotificationPreference{
		AccountID:               accountID,
		EmailNewApplications:    true,
		EmailApplicationUpdates: true,
		EmailJobMatches:         true,
		EmailMarketing:          true,
	}
}
