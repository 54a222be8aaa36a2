package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	users  map[string]User // keyed by user ID
	logins []LoginEvent
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Phone == user.Phone {
			return ErrDuplicatePhone
		}
		if user.Email != "" && existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByIdentifier(_ context.Context, identifier string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Phone == identifier || (user.Email != "" && user.Email == identifier) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) AppendLoginEvent(_ context.Context, event LoginEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, event)
	return nil
}

func (r *memoryRepository) ListUsers(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memoryRepository) RecentLogins(_ context.Context, limit int) ([]LoginEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []LoginEvent
	for i := len(r.logins) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logins[i])
	}
	return out, nil
}
