package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token namespaces.
const (
	RegisterPrefix  = "register"
	RefreshPrefix   = "refreshToken"
	ViewPrefix      = "view"
	// BlacklistPrefix marks revoked access tokens by jti.
	BlacklistPrefix = "blacklist"
)

// ErrTokenNotFound is returned when a token is unknown or has expired.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps short-lived opaque tokens in Redis under prefix:uuid keys.
type TokenStore struct {
	rdb *redis.Client
}

// NewTokenStore returns a TokenStore backed by rdb.
func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func key(prefix, token string) string {
	return prefix + ":" + token
}

// Issue stores value under a fresh token for ttl and returns the token.
func (s *TokenStore) Issue(ctx context.Context, prefix, value string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, key(prefix, token), value, ttl).Err(); err != nil {
		return "", fmt.Errorf("cache: issue %s token: %w", prefix, err)
	}
	return token, nil
}

// Consume atomically reads and deletes a token. A token is usable once.
func (s *TokenStore) Consume(ctx context.Context, prefix, token string) (string, error) {
	value, err := s.rdb.GetDel(ctx, key(prefix, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache: consume %s token: %w", prefix, err)
	}
	return value, nil
}

// Revoke deletes a token. Unknown tokens are not an error.
func (s *TokenStore) Revoke(ctx context.Context, prefix, token string) error {
	if err := s.rdb.Del(ctx, key(prefix, token)).Err(); err != nil {
		return fmt.Errorf("cache: revoke %s token: %w", prefix, err)
	}
	return nil
}

// Mark stores a presence marker under prefix:id for ttl.
func (s *TokenStore) Mark(ctx context.Context, prefix, id string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key(prefix, id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("cache: mark %s: %w", prefix, err)
	}
	return nil
}

// Marked reports whether prefix:id is present.
func (s *TokenStore) Marked(ctx context.Context, prefix, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(prefix, id)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: check %s: %w", prefix, err)
	}
	return n > 0, nil
}
