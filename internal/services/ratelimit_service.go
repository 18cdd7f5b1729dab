package services

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// RateLimitConfig bounds how often an identifier may perform an action.
// Thresholds are injected so tests and deployments can vary them.
type RateLimitConfig struct {
	MaxPerMinute int
	MaxPerHour   int
	Retention    time.Duration // events older than this are pruned
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerMinute: 60,
		MaxPerHour:   1000,
		Retention:    time.Hour,
	}
}

// RateLimitService is a sliding-window request counter backed by an
// append-mostly event table with a compound (identifier, created_at) index.
// Check-then-record runs in one transaction; overlapping transactions for the
// same identifier can still both pass the check, so the limiter is a
// best-effort throttle with a transient overshoot bounded by the number of
// concurrent callers.
type RateLimitService struct {
	db  *sql.DB
	cfg RateLimitConfig
}

func NewRateLimitService(db *sql.DB, cfg RateLimitConfig) *RateLimitService {
	if cfg.MaxPerMinute <= 0 || cfg.MaxPerHour <= 0 {
		cfg = DefaultRateLimitConfig()
	}
	if cfg.Retention < time.Hour {
		// Retention below the hour window would undercount the hour limit.
		cfg.Retention = time.Hour
	}
	return &RateLimitService{db: db, cfg: cfg}
}

// CheckAndRecord counts recent events for (identifier, action) and either
// rejects the request or records a new event. Rows older than the retention
// window for this identifier are dropped on the allow path, which keeps the
// indexed scan bounded without a background job.
func (s *RateLimitService) CheckAndRecord(ctx context.Context, identifier, action string) error {
	now := time.Now()
	oneMinuteAgo := now.Add(-1 * time.Minute)
	oneHourAgo := now.Add(-1 * time.Hour)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var perMinute, perHour int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE created_at > $2), COUNT(*)
		FROM rate_limit_events
		WHERE identifier = $1 AND created_at > $3`,
		identifier, oneMinuteAgo, oneHourAgo).Scan(&perMinute, &perHour)
	if err != nil {
		return err
	}

	if perMinute >= s.cfg.MaxPerMinute {
		log.Printf("[RATELIMIT] %s blocked on %s: %d requests in the last minute", identifier, action, perMinute)
		return ErrRateLimitedMinute
	}
	if perHour >= s.cfg.MaxPerHour {
		log.Printf("[RATELIMIT] %s blocked on %s: %d requests in the last hour", identifier, action, perHour)
		return ErrRateLimitedHour
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_limit_events (identifier, action, created_at)
		VALUES ($1, $2, $3)`,
		identifier, action, now)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM rate_limit_events
		WHERE identifier = $1 AND created_at <= $2`,
		identifier, now.Add(-s.cfg.Retention))
	if err != nil {
		return err
	}

	return tx.Commit()
}
