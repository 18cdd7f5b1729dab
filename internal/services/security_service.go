package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/molsimcloud/backend/internal/models"
)

// SecurityLogService records severity-tagged security events (failed logins,
// rejected tokens). Best-effort: a logging failure never fails the caller.
type SecurityLogService struct {
	db *sql.DB
}

func NewSecurityLogService(db *sql.DB) *SecurityLogService {
	return &SecurityLogService{db: db}
}

// Log stores the event. Unknown severities are coerced to info.
func (s *SecurityLogService) Log(ctx context.Context, event *models.SecurityLog) {
	if !models.ValidSeverity(event.Severity) {
		event.Severity = models.SeverityInfo
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO security_logs (event_type, account_id, ip_address, details, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.EventType, nullIfEmpty(event.AccountID), nullIfEmpty(event.IPAddress),
		nullIfEmpty(event.Details), event.Severity, time.Now())
	if err != nil {
		log.Printf("[SECURITY] Failed to store security event %s: %v", event.EventType, err)
	}
}

// List returns recent events, newest first, optionally filtered by severity.
func (s *SecurityLogService) List(ctx context.Context, limit int, severity string) ([]models.SecurityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `
		SELECT id, event_type, COALESCE(account_id, ''), COALESCE(ip_address, ''), COALESCE(details, ''), severity, created_at
		FROM security_logs`
	args := []any{limit}
	if severity != "" {
		query += ` WHERE severity = $2`
		args = append(args, severity)
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.SecurityLog
	for rows.Next() {
		var event models.SecurityLog
		if err := rows.Scan(&event.ID, &event.EventType, &event.AccountID, &event.IPAddress,
			&event.Details, &event.Severity, &event.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
