package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "Question about GPU hours", "Question about GPU hours"},
		{"angle brackets stripped", "<script>alert(1)</script>", "scriptalert(1)/script"},
		{"javascript protocol stripped", "click javascript:alert(1)", "click alert(1)"},
		{"case-insensitive protocol", "JaVaScRiPt:alert(1)", "alert(1)"},
		{"event handler stripped", "img onerror=alert(1)", "img alert(1)"},
		{"whitespace trimmed", "  hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeInput(tt.input))
		})
	}
}

func TestContactService_Submit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewContactService(db)

	t.Run("stores a sanitized message", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO contact_messages").
			WithArgs("Jane Doe", "jane@example.com", "scriptBilling/script", "Please check my invoice", "pending", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		body, _ := json.Marshal(map[string]string{
			"name":    "Jane Doe",
			"email":   "Jane@Example.com",
			"subject": "<script>Billing</script>",
			"message": "Please check my invoice",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Submit(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"messageId":7`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"name": "Jane Doe"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Submit(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contact",
			bytes.NewReader([]byte(`{"name":"Jane","email":"jane@example.com","subject":"hi","message":"hello","admin":true}`)))
		rec := httptest.NewRecorder()

		service.Submit(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestContactService_ListMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewContactService(db)

	mock.ExpectQuery("FROM contact_messages").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "message", "status", "created_at"}).
			AddRow(2, "Jane Doe", "jane@example.com", "Billing", "Please check my invoice", "pending", time.Now()).
			AddRow(1, "John Roe", "john@example.com", "Support", "Job stuck in pending", "sent", time.Now().Add(-time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/internal/contact-messages", nil)
	rec := httptest.NewRecorder()

	service.ListMessages(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
