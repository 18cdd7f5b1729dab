package services

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/molsimcloud/backend/internal/models"
)

// AuditService appends immutable audit entries. Mutating operations record
// their entry inside the same database transaction as the primary effect, so
// an audit row never exists without its effect and vice versa.
type AuditService struct{}

func NewAuditService() *AuditService {
	return &AuditService{}
}

// RecordTx inserts the entry within the caller's transaction and mirrors it
// to the process log as a single JSON line.
func (a *AuditService) RecordTx(tx *sql.Tx, entry *models.AuditEntry) error {
	entry.Timestamp = time.Now()

	var details any
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		details = data
	}

	_, err := tx.Exec(`
		INSERT INTO audit_logs (account_id, action, resource, resource_id, status, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		nullIfEmpty(entry.AccountID), entry.Action, entry.Resource,
		nullIfEmpty(entry.ResourceID), entry.Status, details, entry.Timestamp)
	if err != nil {
		return err
	}

	a.logEntry(entry)
	return nil
}

// List returns the most recent entries, newest first.
func (a *AuditService) List(db *sql.DB, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := db.Query(`
		SELECT id, COALESCE(account_id::text, ''), action, resource, COALESCE(resource_id, ''), status, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Action, &entry.Resource,
			&entry.ResourceID, &entry.Status, &details, &entry.Timestamp); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			var decoded any
			if err := json.Unmarshal(details, &decoded); err == nil {
				entry.Details = decoded
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (a *AuditService) logEntry(entry *models.AuditEntry) {
	data, _ := json.Marshal(entry)
	log.Printf("AUDIT: %s", string(data))
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
