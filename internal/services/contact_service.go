package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/molsimcloud/backend/internal/models"
)

var (
	jsProtocolRe   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)on\w+=`)
)

// sanitizeInput strips HTML angle brackets, javascript: protocols and inline
// event handlers from user-provided text.
func sanitizeInput(input string) string {
	out := strings.NewReplacer("<", "", ">", "").Replace(input)
	out = jsProtocolRe.ReplaceAllString(out, "")
	out = eventHandlerRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// ContactService stores contact-form messages for out-of-band delivery.
type ContactService struct {
	db        *sql.DB
	validator *validator.Validate
}

func NewContactService(db *sql.DB) *ContactService {
	return &ContactService{
		db:        db,
		validator: validator.New(),
	}
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit handles contact form submission
// @Summary Submit a contact message
// @Description Store a contact-form message; delivery happens out-of-band
// @Tags contact
// @Accept json
// @Produce json
// @Param request body ContactRequest true "Contact message"
// @Success 201 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /contact [post]
func (s *ContactService) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ContactRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	messageID, err := s.store(r.Context(), &req)
	if err != nil {
		log.Printf("[CONTACT] Failed to store message from %s: %v", req.Email, err)
		SendErrorResponse(w, "Failed to submit message", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[CONTACT] Message %d saved from %s", messageID, req.Email)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success":   true,
		"messageId": messageID,
	})
}

func (s *ContactService) store(ctx context.Context, req *ContactRequest) (int, error) {
	var messageID int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, subject, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		sanitizeInput(req.Name), strings.ToLower(strings.TrimSpace(req.Email)),
		sanitizeInput(req.Subject), sanitizeInput(req.Message),
		models.ContactPending, time.Now()).Scan(&messageID)
	return messageID, err
}

// ListMessages lists stored contact messages, newest first
// @Summary List contact messages
// @Description Internal endpoint for the delivery worker
// @Tags contact
// @Produce json
// @Success 200 {object} map[string]any
// @Router /internal/contact-messages [get]
func (s *ContactService) ListMessages(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, name, email, subject, message, status, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT 100`)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch messages", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch messages", http.StatusInternalServerError, nil)
			return
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to fetch messages", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}
