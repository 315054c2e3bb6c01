package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-shopassist-be/internal/config"

	"github.com/redis/go-redis/v9"
)

// Source loads the current settings document.
type Source interface {
	Load(ctx context.Context) (*Settings, error)
}

type StaticSource struct {
	settings *Settings
}

// NewStaticSource builds settings from env configuration.
func NewStaticSource(cfg *config.Config) (*StaticSource, error) {
	excluded, err := ParseExcludedIDs(cfg.Settings.ExcludedIds)
	if err != nil {
		return nil, err
	}
	return &StaticSource{settings: &Settings{
		APIKey:          cfg.Embedding.APIKey,
		BatchSize:       cfg.Ingest.BatchSize,
		ExcludedIDs:     excluded,
		CommerceEnabled: cfg.Settings.CommerceEnabled,
		StoreKnowledge:  cfg.Settings.StoreKnowledge,
		Crawl: CrawlLimits{
			MaxPages: cfg.Crawl.MaxPages,
			MaxDepth: cfg.Crawl.MaxDepth,
		},
		Upload: UploadLimits{MaxBytes: cfg.Upload.MaxBytes},
	}}, nil
}

func (s *StaticSource) Load(_ context.Context) (*Settings, error) {
	copied := *s.settings
	return &copied, nil
}

// RedisSource reads the settings JSON the storefront writes under key.
// Fields missing from the document keep the fallback values.
type RedisSource struct {
	client   *redis.Client
	key      string
	fallback Source
}

func NewRedisSource(client *redis.Client, key string, fallback Source) *RedisSource {
	return &RedisSource{client: client, key: key, fallback: fallback}
}

func (s *RedisSource) Load(ctx context.Context) (*Settings, error) {
	base, err := s.fallback.Load(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return base, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings from redis: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode settings document: %w", err)
	}
	if _, ok := fields["excluded_ids_per_type"]; ok {
		// the document's lists replace the fallback's instead of merging
		base.ExcludedIDs = nil
	}
	if err := json.Unmarshal(raw, base); err != nil {
		return nil, fmt.Errorf("decode settings document: %w", err)
	}
	return base, nil
}
