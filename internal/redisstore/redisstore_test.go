package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	l := NewLocker(rdb)

	release, ok, err := l.Acquire(ctx, "scrape:author:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "scrape:author:1", time.Minute)
	require.NoError(t, err)
	require.False(t, ok, "второй захват того же лока должен провалиться")

	release()
	_, ok, err = l.Acquire(ctx, "scrape:author:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// по истечении TTL лок освобождается сам
	_, ok, _ = l.Acquire(ctx, "scrape:author:2", time.Second)
	require.True(t, ok)
	mr.FastForward(2 * time.Second)
	_, ok, _ = l.Acquire(ctx, "scrape:author:2", time.Second)
	require.True(t, ok)
}

func TestLocker_ReleaseDoesNotStealForeignLock(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	l := NewLocker(rdb)

	release, ok, _ := l.Acquire(ctx, "k", time.Second)
	require.True(t, ok)
	mr.FastForward(2 * time.Second)

	_, ok, _ = l.Acquire(ctx, "k", time.Minute)
	require.True(t, ok)

	// старый владелец не должен снять чужой лок
	release()
	require.True(t, mr.Exists("lock:k"))
}

func TestCounter(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	c := NewCounter(rdb, "login:")

	for i := 1; i <= 3; i++ {
		n, err := c.Incr(ctx, "alice", time.Minute)
		require.NoError(t, err)
		require.EqualValues(t, i, n)
	}
	n, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	ttl, err := c.TTL(ctx, "alice")
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	mr.FastForward(2 * time.Minute)
	n, err = c.Get(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, n)

	_, _ = c.Incr(ctx, "bob", time.Minute)
	require.NoError(t, c.Reset(ctx, "bob"))
	n, _ = c.Get(ctx, "bob")
	require.Zero(t, n)
}

func TestCounter_WindowAlwaysExpires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	c := NewCounter(rdb, "login:")

	n, err := c.Incr(ctx, "carol", 30*time.Second)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 30*time.Second, mr.TTL("login:carol"))

	_, err = c.Incr(ctx, "carol", time.Hour)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, mr.TTL("login:carol"), "окно не продлевается повторными попытками")

	// счётчик без TTL от прежнего INCR без EXPIRE
	require.NoError(t, mr.Set("login:dave", "4"))
	n, err = c.Incr(ctx, "dave", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)
	require.Equal(t, time.Minute, mr.TTL("login:dave"))
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	b := NewBlacklist(rdb)

	require.NoError(t, b.Add(ctx, "token-1", time.Minute))
	require.NoError(t, b.Add(ctx, "token-2", 0))

	ok, err := b.Contains(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, _ = b.Contains(ctx, "token-2")
	require.False(t, ok, "токен с нулевым TTL не сохраняется")

	mr.FastForward(time.Minute + time.Second)
	ok, _ = b.Contains(ctx, "token-1")
	require.False(t, ok)
}
