package settings

import (
	"context"
	"testing"

	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExcludedIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[entity.ContentType][]int64
		wantErr bool
	}{
		{name: "empty", raw: "", want: map[entity.ContentType][]int64{}},
		{name: "two groups", raw: "product:14,12; page:3", want: map[entity.ContentType][]int64{
			entity.ContentTypeProduct: {12, 14},
			entity.ContentTypePage:    {3},
		}},
		{name: "missing type", raw: "12,14", wantErr: true},
		{name: "bad id", raw: "post:x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExcludedIDs(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewlyExcluded(t *testing.T) {
	prev := &Settings{ExcludedIDs: map[entity.ContentType][]int64{entity.ContentTypeProduct: {1, 2}}}
	next := &Settings{ExcludedIDs: map[entity.ContentType][]int64{
		entity.ContentTypeProduct: {2, 3},
		entity.ContentTypePost:    {9},
	}}

	got := NewlyExcluded(prev, next)

	assert.Equal(t, []int64{3}, got[entity.ContentTypeProduct])
	assert.Equal(t, []int64{9}, got[entity.ContentTypePost])
}

func TestSettings_ProductAliasesShareExclusions(t *testing.T) {
	s := &Settings{ExcludedIDs: map[entity.ContentType][]int64{entity.ContentTypeProduct: {5}}}
	assert.True(t, s.IsExcluded(entity.ContentTypeProductVariation, 5))
	assert.True(t, s.IsExcluded("shop_product", 5))
	assert.False(t, s.IsExcluded(entity.ContentTypePost, 5))
}

type switchSource struct {
	settings *Settings
}

func (s *switchSource) Load(_ context.Context) (*Settings, error) {
	copied := *s.settings
	return &copied, nil
}

func TestProvider_Refresh(t *testing.T) {
	source := &switchSource{settings: &Settings{APIKey: "old", CommerceEnabled: true}}
	p, err := NewProvider(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "old", p.APIKey())
	assert.Equal(t, 10, p.BatchSize())

	source.settings = &Settings{APIKey: "new", BatchSize: 3}
	prev, next, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "old", prev.APIKey)
	assert.Equal(t, "new", next.APIKey)
	assert.Equal(t, "new", p.APIKey())
	assert.False(t, p.CommerceEnabled())
	assert.Equal(t, 3, p.BatchSize())
}

func TestStaticSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.Embedding.APIKey = "k"
	cfg.Settings.ExcludedIds = "product:7"
	cfg.Crawl.MaxPages = 20

	source, err := NewStaticSource(cfg)
	require.NoError(t, err)
	s, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "k", s.APIKey)
	assert.Equal(t, []int64{7}, s.ExcludedIDs[entity.ContentTypeProduct])
	assert.Equal(t, 20, s.Crawl.MaxPages)
}

func TestSettings_Exclusions(t *testing.T) {
	s := &Settings{ExcludedIDs: map[entity.ContentType][]int64{
		entity.ContentTypeProduct:          {1},
		entity.ContentTypeProductVariation: {9},
		entity.ContentTypePage:             {3},
	}}

	got := s.Exclusions()

	assert.Equal(t, []int64{1}, got[entity.ContentTypeProduct])
	assert.ElementsMatch(t, []int64{9, 1}, got[entity.ContentTypeProductVariation])
	assert.Equal(t, []int64{1}, got["download"])
	assert.Equal(t, []int64{1}, got["shop_product"])
	assert.Equal(t, []int64{3}, got[entity.ContentTypePage])
	assert.NotContains(t, got, entity.ContentTypePost)
}
