package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func contextWithUserID(r *http.Request, accountID string) context.Context {
	return context.WithValue(r.Context(), "userID", accountID)
}

func setAuthTestConfig() {
	viper.Set("jwt.secret_key", "test-secret-key")
	viper.Set("jwt.expiry_hours", 24)
	viper.Set("argon2.time", 1)
	viper.Set("argon2.memory", 64*1024)
	viper.Set("argon2.threads", 4)
	viper.Set("argon2.salt_length", 16)
	viper.Set("argon2.key_length", 32)
}

func TestAuthService_Register(t *testing.T) {
	setAuthTestConfig()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewAuthService(db, nil, 25)

	t.Run("successful registration grants signup credits", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs(sqlmock.AnyArg(), "jane@example.com", "Jane Doe", sqlmock.AnyArg(), int64(25)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body, _ := json.Marshal(map[string]string{
			"email":    "Jane@example.com",
			"password": "correct-horse-battery",
			"name":     "Jane Doe",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Register(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "jane@example.com", resp.Account.Email)
		assert.Equal(t, int64(25), resp.Account.Credits)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WillReturnError(assert.AnError)

		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "correct-horse-battery",
			"name":     "Jane Doe",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Register(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short password fails validation", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "short",
			"name":     "Jane Doe",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
			bytes.NewReader([]byte(`{"email":"jane@example.com","password":"correct-horse-battery","name":"Jane Doe","role":"admin"}`)))
		rec := httptest.NewRecorder()

		service.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	setAuthTestConfig()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewAuthService(db, nil, 25)

	hashed, err := hashPassword("correct-horse-battery")
	assert.NoError(t, err)

	t.Run("successful login", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, password, credits, created_at").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "credits", "created_at"}).
				AddRow("account1", "jane@example.com", "Jane Doe", hashed, 15, time.Now()))

		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "correct-horse-battery",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(15), resp.Account.Credits)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email records a security event", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, password, credits, created_at").
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "credits", "created_at"}))

		mock.ExpectExec("INSERT INTO security_logs").
			WithArgs("login_failed", nil, sqlmock.AnyArg(), "unknown email", "warning", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body, _ := json.Marshal(map[string]string{
			"email":    "ghost@example.com",
			"password": "correct-horse-battery",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password records a security event", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, password, credits, created_at").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "credits", "created_at"}).
				AddRow("account1", "jane@example.com", "Jane Doe", hashed, 15, time.Now()))

		mock.ExpectExec("INSERT INTO security_logs").
			WithArgs("login_failed", "account1", sqlmock.AnyArg(), "bad password", "warning", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "wrong-password-entirely",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		service.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthService_GetAccount(t *testing.T) {
	setAuthTestConfig()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewAuthService(db, nil, 25)

	t.Run("returns the account with its balance", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, credits, created_at").
			WithArgs("account1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "credits", "created_at"}).
				AddRow("account1", "jane@example.com", "Jane Doe", 15, time.Now()))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/account", nil)
		req = req.WithContext(contextWithUserID(req, "account1"))
		rec := httptest.NewRecorder()

		service.GetAccount(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"credits":15`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/account", nil)
		rec := httptest.NewRecorder()

		service.GetAccount(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("account row gone", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, credits, created_at").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "credits", "created_at"}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/account", nil)
		req = req.WithContext(contextWithUserID(req, "ghost"))
		rec := httptest.NewRecorder()

		service.GetAccount(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPasswordHashing(t *testing.T) {
	setAuthTestConfig()

	hashed, err := hashPassword("correct-horse-battery")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hashed)

	assert.True(t, verifyPassword("correct-horse-battery", hashed))
	assert.False(t, verifyPassword("wrong-password-entirely", hashed))
	assert.False(t, verifyPassword("correct-horse-battery", "not$valid"))
	assert.False(t, verifyPassword("correct-horse-battery", "garbage"))
}

func TestGenerateJWT(t *testing.T) {
	setAuthTestConfig()

	tokenString, err := generateJWT("account1")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret-key"), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "account1", claims["user_id"])
}
