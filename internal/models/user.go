package models

import "time"

// User represents a registered account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// PasswordHash persists as "salt:digest". It is never sent to a
	// client: auth responses are built field by field in the handlers,
	// and the services blank it before returning a user.
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
