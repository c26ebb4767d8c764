package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*miniredis.Miniredis, *TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewTokenStore(rdb)
}

func TestTokenStore_IssueConsume(t *testing.T) {
	mr, store := newStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, RefreshPrefix, "alice", 7*24*time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists("refreshToken:"+token))
	assert.Equal(t, 7*24*time.Hour, mr.TTL("refreshToken:"+token))

	value, err := store.Consume(ctx, RefreshPrefix, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", value)

	_, err = store.Consume(ctx, RefreshPrefix, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStore_Expiry(t *testing.T) {
	mr, store := newStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, RegisterPrefix, "naver-1", 5*time.Minute)
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)
	_, err = store.Consume(ctx, RegisterPrefix, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStore_PrefixesAreIsolated(t *testing.T) {
	_, store := newStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, ViewPrefix, "42", time.Hour)
	require.NoError(t, err)

	_, err = store.Consume(ctx, RefreshPrefix, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.Revoke(ctx, ViewPrefix, token))
	require.NoError(t, store.Revoke(ctx, ViewPrefix, token))
	_, err = store.Consume(ctx, ViewPrefix, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := NewClient(ctx, mr.Addr())
	require.NoError(t, err)
	_ = rdb.Close()

	rdb, err = NewClient(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = NewClient(ctx, "redis://%zz")
	assert.Error(t, err)
}

func TestTokenStore_Mark(t *testing.T) {
	mr, store := newStore(t)
	ctx := context.Background()

	marked, err := store.Marked(ctx, BlacklistPrefix, "jti-1")
	require.NoError(t, err)
	assert.False(t, marked)

	require.NoError(t, store.Mark(ctx, BlacklistPrefix, "jti-1", time.Minute))
	marked, err = store.Marked(ctx, BlacklistPrefix, "jti-1")
	require.NoError(t, err)
	assert.True(t, marked)

	mr.FastForward(2 * time.Minute)
	marked, err = store.Marked(ctx, BlacklistPrefix, "jti-1")
	require.NoError(t, err)
	assert.False(t, marked)
}
