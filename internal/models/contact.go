package models

import "time"

// Contact message delivery states. Delivery itself happens out-of-band.
const (
	ContactPending = "pending"
	ContactSent    = "sent"
	ContactFailed  = "failed"
)

type ContactMessage struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
