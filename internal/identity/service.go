package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrValidation wraps malformed or missing registration input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicatePhone indicates the phone number is already registered.
	ErrDuplicatePhone = errors.New("phone already registered")

	// ErrDuplicateEmail indicates the email address is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown identifier and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound indicates the referenced user no longer exists.
	ErrNotFound = errors.New("user not found")
)

const (
	minPasswordLength = 4
	minPhoneLength    = 7
)

// Service manages the identity lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates the input, hashes the password and stores the user. The
// raw password never leaves this function. Registration does not log the user
// in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)

	if input.FullName == "" {
		return User{}, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if err := validatePhone(input.Phone); err != nil {
		return User{}, err
	}
	if input.Email != "" && !validEmail(input.Email) {
		return User{}, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		FullName:     input.FullName,
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate resolves the identifier against phone or email, verifies the
// password and appends a login event. Unknown identifier and wrong password
// both surface as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, identifier, password, remoteAddr string) (User, error) {
	user, err := s.repo.FindByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	event := LoginEvent{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		At:         time.Now().UTC(),
		RemoteAddr: remoteAddr,
	}
	if err := s.repo.AppendLoginEvent(ctx, event); err != nil {
		return User{}, err
	}

	return user, nil
}

// FindByID fetches a user for an established session identity.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// ListUsers returns every registered user, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// RecentLogins returns the most recent login events across all users.
func (s *Service) RecentLogins(ctx context.Context, limit int) ([]LoginEvent, error) {
	return s.repo.RecentLogins(ctx, limit)
}

func validatePhone(phone string) error {
	if len(phone) < minPhoneLength {
		return fmt.Errorf("%w: phone must have at least %d digits", ErrValidation, minPhoneLength)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: phone must contain digits only", ErrValidation)
		}
	}
	return nil
}

func validEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
