package implementation

import (
	"context"
	"errors"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/mapper"
	"ai-shopassist-be/internal/model"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StoreContentMapper
}

func NewStoreContentRepository(db *gorm.DB) contract.StoreContentRepository {
	return &StoreContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewStoreContentMapper(),
	}
}

func (r *StoreContentRepositoryImpl) unprocessed(ctx context.Context, q contract.UnprocessedQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.StoreContent{})
	specs := []specification.Specification{
		specification.OfContentTypes{Types: q.Types},
		specification.Published{},
		specification.NotExcluded{Excluded: q.Excluded},
		specification.WithoutEmbeddings{},
	}
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StoreContentRepositoryImpl) FindOne(ctx context.Context, contentType entity.ContentType, id int64) (*entity.StoreContent, error) {
	var m model.StoreContent
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND id = ?", contentType.String(), id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StoreContentRepositoryImpl) ListUnprocessed(ctx context.Context, q contract.UnprocessedQuery) ([]*entity.StoreContent, error) {
	var models []*model.StoreContent
	err := r.unprocessed(ctx, q).
		Order("store_contents.id ASC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]*entity.StoreContent, len(models))
	for i, m := range models {
		items[i] = r.mapper.ToEntity(m)
	}
	return items, nil
}

func (r *StoreContentRepositoryImpl) CountUnprocessed(ctx context.Context, q contract.UnprocessedQuery) (int64, error) {
	var count int64
	err := r.unprocessed(ctx, q).Count(&count).Error
	return count, err
}

func (r *StoreContentRepositoryImpl) Save(ctx context.Context, content *entity.StoreContent) error {
	m := r.mapper.ToModel(content)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}
