package implementation

import (
	"context"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/mapper"
	"ai-shopassist-be/internal/model"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmbeddingMapper
}

func NewEmbeddingRepository(db *gorm.DB) contract.EmbeddingRepository {
	return &EmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmbeddingMapper(),
	}
}

func (r *EmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.Embedding) error {
	if embedding.Id == uuid.Nil {
		embedding.Id = uuid.New()
	}
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRepositoryImpl) Update(ctx context.Context, embedding *entity.Embedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRepositoryImpl) deleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	res := r.applySpecifications(r.db.WithContext(ctx), specs...).Delete(&model.Embedding{})
	return res.RowsAffected, res.Error
}

func (r *EmbeddingRepositoryImpl) DeleteByContent(ctx context.Context, contentType entity.ContentType, contentId int64) (int64, error) {
	return r.deleteWhere(ctx, specification.ByContent{ContentType: contentType, ContentId: contentId})
}

func (r *EmbeddingRepositoryImpl) DeleteByOriginURL(ctx context.Context, originURL string, exact bool) (int64, error) {
	return r.deleteWhere(ctx,
		specification.ByContentTypes{Types: []entity.ContentType{entity.ContentTypeExternalURL}},
		specification.ByOriginURL{URL: originURL, Exact: exact},
	)
}

func (r *EmbeddingRepositoryImpl) DeleteBySourceURL(ctx context.Context, sourceURL string) (int64, error) {
	return r.deleteWhere(ctx,
		specification.ByContentTypes{Types: []entity.ContentType{entity.ContentTypeExternalURL}},
		specification.BySourceURL{URL: sourceURL},
	)
}

func (r *EmbeddingRepositoryImpl) find(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	var models []*model.Embedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EmbeddingRepositoryImpl) FindByContent(ctx context.Context, contentType entity.ContentType, contentId int64) ([]*entity.Embedding, error) {
	return r.find(ctx,
		specification.ByContent{ContentType: contentType, ContentId: contentId},
		specification.InChunkOrder{},
	)
}

func (r *EmbeddingRepositoryImpl) FindByContentTypes(ctx context.Context, types []entity.ContentType) ([]*entity.Embedding, error) {
	return r.find(ctx,
		specification.ByContentTypes{Types: types},
		specification.InChunkOrder{},
	)
}

func (r *EmbeddingRepositoryImpl) CountByContentType(ctx context.Context) ([]entity.ContentTypeCount, error) {
	type row struct {
		ContentType string
		Count       int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Embedding{}).
		Select("content_type, COUNT(*) AS count").
		Group("content_type").
		Order("content_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]entity.ContentTypeCount, len(rows))
	for i, r := range rows {
		counts[i] = entity.ContentTypeCount{ContentType: entity.ContentType(r.ContentType), Count: r.Count}
	}
	return counts, nil
}
