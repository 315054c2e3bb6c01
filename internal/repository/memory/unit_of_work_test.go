package memory

import (
	"context"
	"testing"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageRow(source string) *entity.Embedding {
	return &entity.Embedding{
		ContentType: entity.ContentTypeExternalURL,
		ContentId:   1,
		ChunkText:   "text of " + source,
		Vector:      []float32{1, 0},
		SourceURL:   source,
		OriginURL:   "https://shop.example",
	}
}

func TestUnitOfWork_CommitAppliesBufferedWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	require.NoError(t, factory.NewUnitOfWork(ctx).EmbeddingRepository().Create(ctx, pageRow("https://shop.example/old")))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	repo := uow.EmbeddingRepository()

	deleted, err := repo.DeleteByOriginURL(ctx, "https://shop.example", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	require.NoError(t, repo.Create(ctx, pageRow("https://shop.example/new")))

	outside, err := factory.NewUnitOfWork(ctx).EmbeddingRepository().FindByContent(ctx, entity.ContentTypeExternalURL, 1)
	require.NoError(t, err)
	require.Len(t, outside, 1)
	assert.Equal(t, "https://shop.example/old", outside[0].SourceURL, "nothing visible before commit")

	require.NoError(t, uow.Commit())

	after, err := factory.NewUnitOfWork(ctx).EmbeddingRepository().FindByContent(ctx, entity.ContentTypeExternalURL, 1)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "https://shop.example/new", after[0].SourceURL)
}

func TestUnitOfWork_RollbackDropsWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	require.NoError(t, factory.NewUnitOfWork(ctx).EmbeddingRepository().Create(ctx, pageRow("https://shop.example/old")))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.EmbeddingRepository().DeleteBySourceURL(ctx, "https://shop.example/old")
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	rows, err := factory.NewUnitOfWork(ctx).EmbeddingRepository().FindByContent(ctx, entity.ContentTypeExternalURL, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"commit without begin", uow.Commit, unitofwork.ErrNoTx},
		{"rollback twice", uow.Rollback, unitofwork.ErrNoTx},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}

	require.NoError(t, uow.Begin(ctx))
	assert.ErrorIs(t, uow.Begin(ctx), unitofwork.ErrTxActive)
}
