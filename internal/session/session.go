// Package session maps opaque bearer tokens to authenticated identities.
// Tokens expire after a period of inactivity; every successful lookup
// refreshes the clock.
package session

import (
	"context"
	"errors"
)

const (
	// RoleUser is the subject role for registered wallet owners.
	RoleUser = "user"
	// RoleAdmin is the subject role for the administrative dashboard.
	RoleAdmin = "admin"
)

// ErrNotFound indicates the token is unknown or has expired.
var ErrNotFound = errors.New("session not found")

// Session binds a token to an authenticated subject.
type Session struct {
	Token   string `json:"-"`
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// Store persists sessions with an inactivity timeout.
type Store interface {
	Create(ctx context.Context, subject, role string) (Session, error)
	// Get resolves the token and refreshes its expiry.
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}
