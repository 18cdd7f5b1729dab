package models

import (
	"time"
)

type CreditEntry struct {
	ID           int       `json:"id" db:"id"`
	AccountID    string    `json:"account_id" db:"account_id"`
	SimulationID string    `json:"simulation_id" db:"simulation_id"`
	Amount       int64     `json:"amount" db:"amount"`         // negative for debits
	EntryType    string    `json:"entry_type" db:"entry_type"` // DEBIT
	Balance      int64     `json:"balance" db:"balance"`       // balance after the entry
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
