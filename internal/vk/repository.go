package vk

import (
	"context"
	"encoding/json"
	"net/url"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Caller умеет вызвать метод VK API. Реализуется *Client.
type Caller interface {
	Call(ctx context.Context, method string, params url.Values) (json.RawMessage, error)
}

// NoCache: с этим ttl ответ не кэшируется.
const NoCache time.Duration = -1

// Repository кэширует сырые JSON-ответы VK API в памяти с TTL.
// Ошибки не кэшируются.
type Repository struct {
	api        Caller
	cache      *gocache.Cache
	defaultTTL time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewRepository(api Caller, defaultTTL time.Duration) *Repository {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Repository{
		api:        api,
		cache:      gocache.New(defaultTTL, 2*defaultTTL),
		defaultTTL: defaultTTL,
	}
}

func cacheKey(method string, params url.Values) string {
	// Encode сортирует ключи, так что порядок параметров на ключ не влияет
	return method + "?" + params.Encode()
}

// Call возвращает ответ из кэша или идёт в API. При ttl == 0 берётся TTL по умолчанию, при ttl < 0 кэш не используется.
func (r *Repository) Call(ctx context.Context, method string, params url.Values, ttl time.Duration) (json.RawMessage, error) {
	if ttl < 0 {
		return r.api.Call(ctx, method, params)
	}
	key := cacheKey(method, params)
	if v, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return v.(json.RawMessage), nil
	}
	r.misses.Add(1)

	raw, err := r.api.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	r.cache.Set(key, raw, ttl)
	return raw, nil
}

func (r *Repository) Invalidate(method string, params url.Values) {
	r.cache.Delete(cacheKey(method, params))
}

func (r *Repository) Flush() {
	r.cache.Flush()
}

type CacheStats struct {
	Items  int   `json:"items"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func (r *Repository) CacheStats() CacheStats {
	return CacheStats{
		Items:  r.cache.ItemCount(),
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
	}
}
