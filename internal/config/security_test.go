package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSecurityConfig_Defaults(t *testing.T) {
	cfg := LoadSecurityConfig()

	assert.Equal(t, 60, cfg.MaxRequestsPerMinute)
	assert.Equal(t, 1000, cfg.MaxRequestsPerHour)
	assert.Equal(t, time.Hour, cfg.RateLimitRetention)
	assert.Equal(t, int64(25), cfg.SignupCredits)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadSecurityConfig_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "10")
	t.Setenv("RATE_LIMIT_PER_HOUR", "200")
	t.Setenv("RATE_LIMIT_RETENTION", "2h")
	t.Setenv("WORKER_AUTH_TOKEN", "worker-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("SIGNUP_CREDITS", "100")

	cfg := LoadSecurityConfig()

	assert.Equal(t, 10, cfg.MaxRequestsPerMinute)
	assert.Equal(t, 200, cfg.MaxRequestsPerHour)
	assert.Equal(t, 2*time.Hour, cfg.RateLimitRetention)
	assert.Equal(t, "worker-secret", cfg.WorkerToken)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(100), cfg.SignupCredits)
}

func TestLoadSecurityConfig_MalformedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("RATE_LIMIT_RETENTION", "yesterday")

	cfg := LoadSecurityConfig()

	assert.Equal(t, 60, cfg.MaxRequestsPerMinute)
	assert.Equal(t, time.Hour, cfg.RateLimitRetention)
}
