package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:v1:"

// RedisStore keeps sessions in Redis with a TTL equal to the inactivity
// timeout. Expiry is enforced by Redis itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Create issues a fresh token bound to the subject.
func (s *RedisStore) Create(ctx context.Context, subject, role string) (Session, error) {
	sess := Session{Token: uuid.NewString(), Subject: subject, Role: role}
	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, err
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get resolves the token and pushes its expiry out by the full timeout.
func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, err
	}
	sess.Token = token

	// Sliding inactivity window.
	if err := s.client.Expire(ctx, keyPrefix+token, s.ttl).Err(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Delete removes the session, invalidating the token immediately.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
