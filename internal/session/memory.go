package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore builds an in-memory session store for tests.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memoryStore) Create(_ context.Context, subject, role string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := Session{Token: uuid.NewString(), Subject: subject, Role: role}
	s.entries[sess.Token] = memoryEntry{session: sess, expiresAt: s.now().Add(s.ttl)}
	return sess, nil
}

func (s *memoryStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, token)
		return Session{}, ErrNotFound
	}
	entry.expiresAt = s.now().Add(s.ttl)
	s.entries[token] = entry
	return entry.session, nil
}

func (s *memoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
