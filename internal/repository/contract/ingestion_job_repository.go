package contract

import (
	"context"
	"time"

	"ai-shopassist-be/internal/entity"
)

// CrawlJobRepository stores crawl jobs keyed by their normalized-URL key.
// FindByKey returns nil, nil when no job exists. Claim moves a pending job to
// processing and reports false when another worker already took it.
// FindByStatus lists jobs in one state, oldest first; a non-zero
// updatedBefore keeps only jobs untouched since then.
type CrawlJobRepository interface {
	Create(ctx context.Context, job *entity.CrawlJob) error
	Save(ctx context.Context, job *entity.CrawlJob) error
	FindByKey(ctx context.Context, key string) (*entity.CrawlJob, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.CrawlJob, error)
	FindByStatus(ctx context.Context, status entity.JobStatus, updatedBefore time.Time) ([]*entity.CrawlJob, error)
	Claim(ctx context.Context, key string) (bool, error)
	DeleteByKey(ctx context.Context, key string) error
}

// PdfJobRepository is the PDF counterpart of CrawlJobRepository.
type PdfJobRepository interface {
	Create(ctx context.Context, job *entity.PdfJob) error
	Save(ctx context.Context, job *entity.PdfJob) error
	FindByKey(ctx context.Context, key string) (*entity.PdfJob, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.PdfJob, error)
	FindByStatus(ctx context.Context, status entity.JobStatus, updatedBefore time.Time) ([]*entity.PdfJob, error)
	Claim(ctx context.Context, key string) (bool, error)
	DeleteByKey(ctx context.Context, key string) error
}
