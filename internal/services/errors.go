package services

import "errors"

// Stable error conditions surfaced to the HTTP layer. Each failure mode the
// boundary needs to distinguish gets its own sentinel so handlers can map
// them 1:1 to status codes and user messaging.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrAccountNotFound     = errors.New("account not found")
	ErrSimulationNotFound  = errors.New("simulation not found")
	ErrForbidden           = errors.New("you do not own this simulation")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidTransition   = errors.New("illegal status transition")
	ErrRateLimitedMinute   = errors.New("rate limit exceeded: too many requests per minute")
	ErrRateLimitedHour     = errors.New("rate limit exceeded: too many requests per hour")
)

// ValidationError reports a single invalid input field. Validation is ordered
// and the first violation wins, so only one is ever returned per call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
