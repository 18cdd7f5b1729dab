package models

import "time"

// RateLimitEvent is one accepted request, keyed by (identifier, action).
type RateLimitEvent struct {
	ID         int       `json:"id" db:"id"`
	Identifier string    `json:"identifier" db:"identifier"`
	Action     string    `json:"action" db:"action"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
