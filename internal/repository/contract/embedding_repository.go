package contract

import (
	"context"

	"ai-shopassist-be/internal/entity"
)

// EmbeddingRepository persists chunk rows. Every row write is atomic; callers
// expand content type aliases before calling.
type EmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.Embedding) error
	Update(ctx context.Context, embedding *entity.Embedding) error
	DeleteByContent(ctx context.Context, contentType entity.ContentType, contentId int64) (int64, error)
	DeleteByOriginURL(ctx context.Context, originURL string, exact bool) (int64, error)
	DeleteBySourceURL(ctx context.Context, sourceURL string) (int64, error)
	FindByContent(ctx context.Context, contentType entity.ContentType, contentId int64) ([]*entity.Embedding, error)
	FindByContentTypes(ctx context.Context, types []entity.ContentType) ([]*entity.Embedding, error)
	CountByContentType(ctx context.Context) ([]entity.ContentTypeCount, error)
}
