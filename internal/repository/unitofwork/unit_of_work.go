package unitofwork

import (
	"context"

	"ai-shopassist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	EmbeddingRepository() contract.EmbeddingRepository
	StoreContentRepository() contract.StoreContentRepository
	CrawlJobRepository() contract.CrawlJobRepository
	PdfJobRepository() contract.PdfJobRepository
}
