package redisstore

import (
	"context"
	"fmt"

	"ai-shopassist-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const protectionKeyPrefix = "shopassist:bot_protected:"

type ProtectionRegistry struct {
	client *redis.Client
}

func NewProtectionRegistry(client *redis.Client) contract.ProtectionRegistry {
	return &ProtectionRegistry{client: client}
}

func (r *ProtectionRegistry) IsFlagged(ctx context.Context, normalizedURL string) (bool, error) {
	n, err := r.client.Exists(ctx, protectionKeyPrefix+normalizedURL).Result()
	if err != nil {
		return false, fmt.Errorf("check protection flag: %w", err)
	}
	return n > 0, nil
}

func (r *ProtectionRegistry) Flag(ctx context.Context, normalizedURL, marker string) error {
	if err := r.client.Set(ctx, protectionKeyPrefix+normalizedURL, marker, 0).Err(); err != nil {
		return fmt.Errorf("set protection flag: %w", err)
	}
	return nil
}

func (r *ProtectionRegistry) Clear(ctx context.Context, normalizedURL string) (bool, error) {
	n, err := r.client.Del(ctx, protectionKeyPrefix+normalizedURL).Result()
	if err != nil {
		return false, fmt.Errorf("clear protection flag: %w", err)
	}
	return n > 0, nil
}
