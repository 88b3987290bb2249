// Package redisstore содержит мелкие примитивы поверх Redis: advisory-локи,
// счётчики с TTL и блоклист access-токенов.
package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"vkmod/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Locker — блокировка через SET NX PX. Снимается только владельцем (проверка токена в Lua).
type Locker struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewLocker(rdb redis.UniversalClient) *Locker {
	return &Locker{rdb: rdb, prefix: "lock:"}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Acquire пытается взять лок. ok=false, если лок уже занят кем-то другим.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error) {
	token := uuid.NewString()
	ok, err = l.rdb.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}
	release = func() {
		// контекст запроса мог уже отмениться, а лок снять нужно
		_ = releaseScript.Run(context.Background(), l.rdb, []string{l.prefix + key}, token).Err()
	}
	return release, true, nil
}

// Counter считает попытки с окном TTL, выставляемым на первом инкременте.
type Counter struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewCounter(rdb redis.UniversalClient, prefix string) *Counter {
	return &Counter{rdb: rdb, prefix: prefix}
}

// incrScript увеличивает счётчик и ставит TTL за один вызов. Ключ без TTL
// (например, оставшийся после сбоя) тоже получает окно.
var incrScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`)

func (c *Counter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrScript.Run(ctx, c.rdb, []string{c.prefix + key}, ttl.Milliseconds()).Int64()
}

func (c *Counter) Get(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Get(ctx, c.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *Counter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, c.prefix+key).Result()
}

func (c *Counter) Reset(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.prefix+key).Err()
}

// Blacklist хранит хэши отозванных access-токенов до момента их естественного истечения.
type Blacklist struct {
	rdb redis.UniversalClient
}

func NewBlacklist(rdb redis.UniversalClient) *Blacklist {
	return &Blacklist{rdb: rdb}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

func (b *Blacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, tokenKey(token), 1, ttl).Err()
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.rdb.Exists(ctx, tokenKey(token)).Result()
	return n > 0, err
}
