package models

import "time"

// Audit entry outcomes.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEntry is an immutable record of a state-changing action. Entries are
// only ever appended, in the same transaction as their primary effect.
type AuditEntry struct {
	ID         int       `json:"id" db:"id"`
	AccountID  string    `json:"accountId,omitempty" db:"account_id"`
	Action     string    `json:"action" db:"action"`
	Resource   string    `json:"resource" db:"resource"`
	ResourceID string    `json:"resourceId,omitempty" db:"resource_id"`
	Status     string    `json:"status" db:"status"` // success or failure
	Details    any       `json:"details,omitempty" db:"details"`
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
}
