package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ResultCache keeps computed values for a fixed TTL. Entries are never
// invalidated early.
type ResultCache[T any] struct {
	cache *cache.Cache
}

func NewResultCache[T any](ttl time.Duration) *ResultCache[T] {
	// expired items are purged every two TTLs
	c := cache.New(ttl, 2*ttl)
	return &ResultCache[T]{
		cache: c,
	}
}

func (r *ResultCache[T]) Save(key string, value T) {
	r.cache.Set(key, value, cache.DefaultExpiration)
}

func (r *ResultCache[T]) Get(key string) (T, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(T), true
	}
	var zero T
	return zero, false
}

func (r *ResultCache[T]) Delete(key string) {
	r.cache.Delete(key)
}
