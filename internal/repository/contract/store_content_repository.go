package contract

import (
	"context"

	"ai-shopassist-be/internal/entity"
)

// UnprocessedQuery selects published items with no stored chunks.
type UnprocessedQuery struct {
	Types    []entity.ContentType
	Excluded map[entity.ContentType][]int64
	Offset   int
	Limit    int
}

// StoreContentRepository reads the CMS mirror. FindOne returns nil, nil when
// the item does not exist.
type StoreContentRepository interface {
	FindOne(ctx context.Context, contentType entity.ContentType, id int64) (*entity.StoreContent, error)
	ListUnprocessed(ctx context.Context, query UnprocessedQuery) ([]*entity.StoreContent, error)
	CountUnprocessed(ctx context.Context, query UnprocessedQuery) (int64, error)
	Save(ctx context.Context, content *entity.StoreContent) error
}
