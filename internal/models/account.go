package models

import "time"

// Account is a billable identity holding a credit balance.
type Account struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Credits   int64     `json:"credits" db:"credits"` // never negative
	Version   int       `json:"-" db:"version"`       // for optimistic locking
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}
