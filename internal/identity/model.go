package identity

import "time"

// User represents a registered wallet owner. Records are immutable after
// registration; there is no credential-reset path.
type User struct {
	ID           string
	FullName     string
	Phone        string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// LoginEvent is an append-only audit record written on every successful
// authentication.
type LoginEvent struct {
	ID         string
	UserID     string
	At         time.Time
	RemoteAddr string
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	Password string
}
