package models

import "time"

// Security event severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

type SecurityLog struct {
	ID        int       `json:"id" db:"id"`
	EventType string    `json:"eventType" db:"event_type"`
	AccountID string    `json:"accountId,omitempty" db:"account_id"`
	IPAddress string    `json:"ipAddress,omitempty" db:"ip_address"`
	Details   string    `json:"details,omitempty" db:"details"`
	Severity  string    `json:"severity" db:"severity"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
