package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type SecurityConfig struct {
	MaxRequestsPerMinute int
	MaxRequestsPerHour   int
	RateLimitRetention   time.Duration
	WorkerToken          string
	AllowedOrigins       []string
	SignupCredits        int64
}

func LoadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		MaxRequestsPerHour:   getEnvAsInt("RATE_LIMIT_PER_HOUR", 1000),
		RateLimitRetention:   getEnvAsDuration("RATE_LIMIT_RETENTION", 1*time.Hour),
		WorkerToken:          getEnv("WORKER_AUTH_TOKEN", ""),
		AllowedOrigins:       getEnvAsList("ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
		SignupCredits:        int64(getEnvAsInt("SIGNUP_CREDITS", 25)),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultVal
}
