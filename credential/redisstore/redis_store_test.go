package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/sanctyr/credential/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*redisstore.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rs := redisstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test", ttl)
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rs, mr := newStore(t, 0)

	got, err := rs.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, rs.Set(ctx, "token-1"))
	require.Equal(t, "test:sanctyr_token", rs.Key())

	stored, err := mr.Get("test:sanctyr_token")
	require.NoError(t, err)
	require.Equal(t, "token-1", stored)

	got, err = rs.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "token-1", got)

	require.NoError(t, rs.Remove(ctx))
	require.NoError(t, rs.Remove(ctx))
	require.False(t, mr.Exists("test:sanctyr_token"))
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	rs, mr := newStore(t, time.Minute)

	require.NoError(t, rs.Set(ctx, "token-ttl"))
	require.Equal(t, time.Minute, mr.TTL("test:sanctyr_token"))

	mr.FastForward(2 * time.Minute)

	got, err := rs.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, got, "expired credential reads as absent")
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rs := redisstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), "test", 0)
	defer rs.Close()
	mr.Close()

	_, err = rs.Get(context.Background())
	require.Error(t, err)
}

func TestNewWithURL(t *testing.T) {
	_, err := redisstore.NewWithURL("not a url", "", 0)
	require.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rs, err := redisstore.NewWithURL("redis://"+mr.Addr(), "", 0)
	require.NoError(t, err)
	defer rs.Close()
	require.Equal(t, "sanctyr_token", rs.Key())
}
