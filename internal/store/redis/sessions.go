// Package redis holds the Redis-backed browser session store. Sessions are
// opaque IDs handed to clients in a cookie; the JSON payload lives in Redis
// under a TTL so sign-out and expiry are a single key delete away.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KaiWedekind/Portus/internal/domain"
)

const sessionKeyPrefix = "session:"

// Session is the per-browser authentication state.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions in Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore connects to Redis and verifies the connection.
func NewSessionStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.NewSessionStore: ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &SessionStore{client: client, ttl: ttl}, nil
}

func (s *SessionStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis.SessionStore.Close: %w", err)
	}
	return nil
}

// Create mints a new session for the given user and stores it under the TTL.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Create: generating id: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:        hex.EncodeToString(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Create: marshal: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Create: %w", err)
	}

	return session, nil
}

// Get returns the session for the given ID, or domain.ErrNotFound when the
// session is missing or expired.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Get: unmarshal: %w", err)
	}

	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.Delete: %w", err)
	}
	return nil
}
