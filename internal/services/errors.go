package services

import "errors"

// Sentinel errors the handlers map onto HTTP statuses. Storage failures
// are wrapped with %w and fall through to a generic 5xx.
var (
	ErrQuotaExceeded      = errors.New("maximum 5 goals allowed per week")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrForbidden          = errors.New("not authorized to update this goal")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTimeout            = errors.New("storage operation timed out")
)

// ValidationError reports malformed input; the message is safe to send
// back to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
