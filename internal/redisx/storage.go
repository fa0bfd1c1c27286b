package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appetiteclub/portal/internal/session"
)

// kv is the subset of redis commands the session storage uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionStorage keeps session entries in redis with a sliding TTL.
type SessionStorage struct {
	rdb kv
	ttl time.Duration
}

func NewSessionStorage(rdb kv, ttl time.Duration) *SessionStorage {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return &SessionStorage{rdb: rdb, ttl: ttl}
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, SessionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cannot get session key: %w", err)
	}
	return v, nil
}

func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, SessionKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("cannot set session key: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, SessionKey(key)).Err(); err != nil {
		return fmt.Errorf("cannot delete session key: %w", err)
	}
	return nil
}
