package implementation

import (
	"context"
	"errors"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/mapper"
	"ai-shopassist-be/internal/model"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/specification"

	"gorm.io/gorm"
)

// claimJob flips pending to processing in a single conditional UPDATE so only
// one worker wins.
func claimJob(ctx context.Context, db *gorm.DB, m interface{}, key string) (bool, error) {
	query := specification.ByJobKey{Key: key}.Apply(db.WithContext(ctx).Model(m))
	res := specification.ByJobStatus{Status: entity.JobStatusPending}.Apply(query).
		Updates(map[string]interface{}{
			"status":     string(entity.JobStatusProcessing),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type CrawlJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IngestionJobMapper
}

func NewCrawlJobRepository(db *gorm.DB) contract.CrawlJobRepository {
	return &CrawlJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewIngestionJobMapper(),
	}
}

func (r *CrawlJobRepositoryImpl) Create(ctx context.Context, job *entity.CrawlJob) error {
	m := r.mapper.CrawlToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.CrawlToEntity(m)
	return nil
}

func (r *CrawlJobRepositoryImpl) Save(ctx context.Context, job *entity.CrawlJob) error {
	m := r.mapper.CrawlToModel(job)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.CrawlToEntity(m)
	return nil
}

func (r *CrawlJobRepositoryImpl) FindByKey(ctx context.Context, key string) (*entity.CrawlJob, error) {
	var m model.CrawlJob
	err := specification.ByJobKey{Key: key}.Apply(r.db.WithContext(ctx)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CrawlToEntity(&m), nil
}

func (r *CrawlJobRepositoryImpl) FindAll(ctx context.Context, limit, offset int) ([]*entity.CrawlJob, error) {
	var models []*model.CrawlJob
	query := specification.Pagination{Limit: limit, Offset: offset}.Apply(r.db.WithContext(ctx))
	query = specification.OrderBy{Field: "updated_at", Desc: true}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	jobs := make([]*entity.CrawlJob, len(models))
	for i, m := range models {
		jobs[i] = r.mapper.CrawlToEntity(m)
	}
	return jobs, nil
}

func (r *CrawlJobRepositoryImpl) FindByStatus(ctx context.Context, status entity.JobStatus, updatedBefore time.Time) ([]*entity.CrawlJob, error) {
	var models []*model.CrawlJob
	query := specification.ByJobStatus{Status: status}.Apply(r.db.WithContext(ctx))
	query = specification.UpdatedBefore{Time: updatedBefore}.Apply(query)
	query = specification.OrderBy{Field: "updated_at"}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	jobs := make([]*entity.CrawlJob, len(models))
	for i, m := range models {
		jobs[i] = r.mapper.CrawlToEntity(m)
	}
	return jobs, nil
}

func (r *CrawlJobRepositoryImpl) Claim(ctx context.Context, key string) (bool, error) {
	return claimJob(ctx, r.db, &model.CrawlJob{}, key)
}

func (r *CrawlJobRepositoryImpl) DeleteByKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("job_key = ?", key).Delete(&model.CrawlJob{}).Error
}

type PdfJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IngestionJobMapper
}

func NewPdfJobRepository(db *gorm.DB) contract.PdfJobRepository {
	return &PdfJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewIngestionJobMapper(),
	}
}

func (r *PdfJobRepositoryImpl) Create(ctx context.Context, job *entity.PdfJob) error {
	m := r.mapper.PdfToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.PdfToEntity(m)
	return nil
}

func (r *PdfJobRepositoryImpl) Save(ctx context.Context, job *entity.PdfJob) error {
	m := r.mapper.PdfToModel(job)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.PdfToEntity(m)
	return nil
}

func (r *PdfJobRepositoryImpl) FindByKey(ctx context.Context, key string) (*entity.PdfJob, error) {
	var m model.PdfJob
	err := specification.ByJobKey{Key: key}.Apply(r.db.WithContext(ctx)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PdfToEntity(&m), nil
}

func (r *PdfJobRepositoryImpl) FindAll(ctx context.Context, limit, offset int) ([]*entity.PdfJob, error) {
	var models []*model.PdfJob
	query := specification.Pagination{Limit: limit, Offset: offset}.Apply(r.db.WithContext(ctx))
	query = specification.OrderBy{Field: "updated_at", Desc: true}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	jobs := make([]*entity.PdfJob, len(models))
	for i, m := range models {
		jobs[i] = r.mapper.PdfToEntity(m)
	}
	return jobs, nil
}

func (r *PdfJobRepositoryImpl) FindByStatus(ctx context.Context, status entity.JobStatus, updatedBefore time.Time) ([]*entity.PdfJob, error) {
	var models []*model.PdfJob
	query := specification.ByJobStatus{Status: status}.Apply(r.db.WithContext(ctx))
	query = specification.UpdatedBefore{Time: updatedBefore}.Apply(query)
	query = specification.OrderBy{Field: "updated_at"}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	jobs := make([]*entity.PdfJob, len(models))
	for i, m := range models {
		jobs[i] = r.mapper.PdfToEntity(m)
	}
	return jobs, nil
}

func (r *PdfJobRepositoryImpl) Claim(ctx context.Context, key string) (bool, error) {
	return claimJob(ctx, r.db, &model.PdfJob{}, key)
}

func (r *PdfJobRepositoryImpl) DeleteByKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("job_key = ?", key).Delete(&model.PdfJob{}).Error
}
