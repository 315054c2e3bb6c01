package service

import (
	"context"
	"errors"
	"testing"

	"ai-shopassist-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertChunks_StoresInOrder(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	ctx := context.Background()

	n, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypePost, 5, []string{"first", "  ", "second"}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	rows := env.rows(t, entity.ContentTypePost, 5)
	require.Len(t, rows, 2)
	assert.Equal(t, "first", rows[0].ChunkText)
	assert.Equal(t, "second", rows[1].ChunkText)
	assert.Empty(t, rows[0].SourceURL)
}

func TestUpsertChunks_SkipsFailedChunks(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	env.embedder.failOn = "broken"

	n, err := env.vectorStore.UpsertChunks(context.Background(), entity.ContentTypePage, 9,
		[]string{"good one", "broken chunk", "good two"}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, env.rows(t, entity.ContentTypePage, 9), 2)
}

func TestUpsertChunks_NothingStored(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	env.embedder.failOn = "broken"

	_, err := env.vectorStore.UpsertChunks(context.Background(), entity.ContentTypePage, 9, []string{"broken"}, nil)

	assert.True(t, errors.Is(err, ErrNothingStored))
	assert.True(t, isEmbedFailure(err), "cause kept: %v", err)
	assert.Empty(t, env.rows(t, entity.ContentTypePage, 9))

	_, err = env.vectorStore.UpsertChunks(context.Background(), entity.ContentTypePage, 9, []string{" "}, nil)
	assert.True(t, errors.Is(err, ErrNothingStored))
}

func TestUpsertChunks_SingletonKeepsOneRow(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	ctx := context.Background()

	_, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypeSettings, 0, []string{"We ship worldwide."}, nil)
	require.NoError(t, err)
	first := env.rows(t, entity.ContentTypeSettings, 0)
	require.Len(t, first, 1)

	n, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypeSettings, 0, []string{"Free returns.", "Open on Sundays."}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := env.rows(t, entity.ContentTypeSettings, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, first[0].Id, rows[0].Id, "updated in place")
	assert.Equal(t, "Free returns.\nOpen on Sundays.", rows[0].ChunkText)
	assert.NotNil(t, rows[0].UpdatedAt)
}

func TestUpsertChunks_SingletonCollapsesStrayRows(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	ctx := context.Background()
	repo := env.uowFactory.NewUnitOfWork(ctx).EmbeddingRepository()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.Embedding{
			Id:          uuid.New(),
			ContentType: entity.ContentTypeSettings,
			ChunkIndex:  i,
			ChunkText:   "stale",
			Vector:      []float32{0, 1, 0},
		}))
	}

	_, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypeSettings, 0, []string{"fresh"}, nil)

	require.NoError(t, err)
	rows := env.rows(t, entity.ContentTypeSettings, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "fresh", rows[0].ChunkText)
	assert.Equal(t, 0, rows[0].ChunkIndex)
}

func TestDeleteByProvenance(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	ctx := context.Background()

	_, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypeExternalURL, 1, []string{"a"},
		&entity.Provenance{SourceURL: "https://shop.example/a", OriginURL: "https://shop.example"})
	require.NoError(t, err)
	_, err = env.vectorStore.UpsertChunks(ctx, entity.ContentTypeExternalURL, 2, []string{"b"},
		&entity.Provenance{SourceURL: "https://blog.example/b", OriginURL: "https://blog.example"})
	require.NoError(t, err)

	deleted, err := env.vectorStore.DeleteByProvenance(ctx, "https://shop.example", true)

	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, env.rows(t, entity.ContentTypeExternalURL, 1))
	assert.Len(t, env.rows(t, entity.ContentTypeExternalURL, 2), 1)
}

func TestFetchByTypes_ExpandsProductAliases(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	ctx := context.Background()

	_, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypeProduct, 1, []string{"wallet"}, nil)
	require.NoError(t, err)
	_, err = env.vectorStore.UpsertChunks(ctx, "download", 2, []string{"ebook"}, nil)
	require.NoError(t, err)
	_, err = env.vectorStore.UpsertChunks(ctx, entity.ContentTypePost, 3, []string{"news"}, nil)
	require.NoError(t, err)

	rows, err := env.vectorStore.FetchByTypes(ctx, []entity.ContentType{entity.ContentTypeProduct})

	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReplace(t *testing.T) {
	shop := &entity.Provenance{SourceURL: "https://shop.example/a", OriginURL: "https://shop.example"}
	blog := &entity.Provenance{SourceURL: "https://blog.example/b", OriginURL: "https://blog.example"}

	tests := []struct {
		name        string
		scope       ReplaceScope
		wantDeleted int64
		wantShop    int
		wantBlog    int
	}{
		{
			name:        "origin scope",
			scope:       ReplaceScope{OriginURL: "https://shop.example"},
			wantDeleted: 2,
			wantShop:    1,
			wantBlog:    1,
		},
		{
			name:        "origin scope takes over a page another seed stored",
			scope:       ReplaceScope{OriginURL: "https://shop.example", SourceURLs: []string{"https://blog.example/b"}},
			wantDeleted: 3,
			wantShop:    2,
			wantBlog:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultSettings())
			ctx := context.Background()
			_, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypeExternalURL, 1, []string{"old a", "old b"}, shop)
			require.NoError(t, err)
			_, err = env.vectorStore.UpsertChunks(ctx, entity.ContentTypeExternalURL, 2, []string{"blog"}, blog)
			require.NoError(t, err)

			var pages []*entity.Embedding
			for _, source := range append([]string{"https://shop.example/a"}, tt.scope.SourceURLs...) {
				rows, err := env.vectorStore.EmbedChunks(ctx, entity.ContentTypeExternalURL, 1, []string{"new"},
					&entity.Provenance{SourceURL: source, OriginURL: "https://shop.example"})
				require.NoError(t, err)
				pages = append(pages, rows...)
			}

			deleted, err := env.vectorStore.Replace(ctx, tt.scope, pages)

			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)
			assert.Len(t, env.rows(t, entity.ContentTypeExternalURL, 1), tt.wantShop)
			assert.Len(t, env.rows(t, entity.ContentTypeExternalURL, 2), tt.wantBlog)
		})
	}
}

func TestReplace_ContentScope(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	ctx := context.Background()
	_, err := env.vectorStore.UpsertChunks(ctx, entity.ContentTypePage, 4, []string{"old one", "old two"}, nil)
	require.NoError(t, err)
	_, err = env.vectorStore.UpsertChunks(ctx, entity.ContentTypePage, 5, []string{"neighbour"}, nil)
	require.NoError(t, err)

	rows, err := env.vectorStore.EmbedChunks(ctx, entity.ContentTypePage, 4, []string{"new"}, nil)
	require.NoError(t, err)
	assert.Len(t, env.rows(t, entity.ContentTypePage, 4), 2, "embedding alone stores nothing")

	deleted, err := env.vectorStore.Replace(ctx, ReplaceScope{ContentType: entity.ContentTypePage, ContentId: 4}, rows)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	stored := env.rows(t, entity.ContentTypePage, 4)
	require.Len(t, stored, 1)
	assert.Equal(t, "new", stored[0].ChunkText)
	assert.Len(t, env.rows(t, entity.ContentTypePage, 5), 1)
}

func TestEmbedChunks_NothingEmbedded(t *testing.T) {
	env := newTestEnv(t, defaultSettings())
	env.embedder.failOn = "broken"

	tests := []struct {
		name   string
		chunks []string
	}{
		{name: "all chunks fail", chunks: []string{"broken one", "broken two"}},
		{name: "only blank chunks", chunks: []string{" ", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := env.vectorStore.EmbedChunks(context.Background(), entity.ContentTypePage, 1, tt.chunks, nil)
			assert.True(t, errors.Is(err, ErrNothingStored))
			assert.Nil(t, rows)
		})
	}
}
