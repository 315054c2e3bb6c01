package memory

import (
	"context"

	"ai-shopassist-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// ProtectionRegistry holds bot-protection flags in process. Flags never expire.
type ProtectionRegistry struct {
	cache *cache.Cache
}

func NewProtectionRegistry() contract.ProtectionRegistry {
	return &ProtectionRegistry{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *ProtectionRegistry) IsFlagged(_ context.Context, normalizedURL string) (bool, error) {
	_, found := r.cache.Get(normalizedURL)
	return found, nil
}

func (r *ProtectionRegistry) Flag(_ context.Context, normalizedURL, marker string) error {
	r.cache.Set(normalizedURL, marker, cache.NoExpiration)
	return nil
}

func (r *ProtectionRegistry) Clear(_ context.Context, normalizedURL string) (bool, error) {
	_, found := r.cache.Get(normalizedURL)
	r.cache.Delete(normalizedURL)
	return found, nil
}
