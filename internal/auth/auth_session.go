package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=auth_session.go -destination=mock/auth_session_mock.go -package=mock

// SessionStore keeps one active session per user. Starting a session
// replaces the previous one, which logs out any older token.
type SessionStore interface {
	Start(ctx context.Context, userID string, ttl time.Duration) (string, error)
	End(ctx context.Context, userID string) error
	IsActive(ctx context.Context, userID, sessionID string) (bool, error)
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

func (s *redisSessionStore) Start(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(userID), sid, ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *redisSessionStore) End(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

func (s *redisSessionStore) IsActive(ctx context.Context, userID, sessionID string) (bool, error) {
	current, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == sessionID, nil
}
