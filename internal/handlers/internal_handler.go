package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/molsimcloud/backend/internal/services"
)

// InternalHandler serves operator/worker listings behind the worker trust
// boundary.
type InternalHandler struct {
	db       *sql.DB
	audit    *services.AuditService
	security *services.SecurityLogService
}

func NewInternalHandler(db *sql.DB) *InternalHandler {
	return &InternalHandler{
		db:       db,
		audit:    services.NewAuditService(),
		security: services.NewSecurityLogService(db),
	}
}

// ListAuditLogs returns recent audit entries
// @Summary List audit log entries
// @Tags internal
// @Produce json
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {object} map[string]any
// @Router /internal/audit-logs [get]
func (h *InternalHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	entries, err := h.audit.List(h.db, limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch audit logs", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// ListSecurityLogs returns recent security events
// @Summary List security events
// @Tags internal
// @Produce json
// @Param limit query int false "Max entries (default 100)"
// @Param severity query string false "Filter by severity"
// @Success 200 {object} map[string]any
// @Router /internal/security-logs [get]
func (h *InternalHandler) ListSecurityLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	severity := r.URL.Query().Get("severity")

	events, err := h.security.List(r.Context(), limit, severity)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch security logs", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"events": events,
		"count":  len(events),
	})
}

func parseLimit(raw string) int {
	if raw == "" {
		return 100
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 100
	}
	return limit
}
