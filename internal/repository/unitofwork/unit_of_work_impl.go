package unitofwork

import (
	"context"
	"errors"

	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTxActive = errors.New("unit of work: transaction already open")
	ErrNoTx     = errors.New("unit of work: no open transaction")
)

// UnitOfWorkImpl hands out repositories bound to either the pool or the open
// transaction. Vector replacement for one provenance runs inside Begin/Commit
// so readers never see a half replaced set.
type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

func (u *UnitOfWorkImpl) conn() *gorm.DB {
	if u.tx == nil {
		return u.db
	}
	return u.tx
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	return u.finish((*gorm.DB).Commit)
}

// Rollback after a successful Commit returns ErrNoTx, which deferred callers
// ignore.
func (u *UnitOfWorkImpl) Rollback() error {
	return u.finish((*gorm.DB).Rollback)
}

func (u *UnitOfWorkImpl) finish(end func(*gorm.DB) *gorm.DB) error {
	if u.tx == nil {
		return ErrNoTx
	}
	tx := u.tx
	u.tx = nil
	return end(tx).Error
}

func (u *UnitOfWorkImpl) EmbeddingRepository() contract.EmbeddingRepository {
	return implementation.NewEmbeddingRepository(u.conn())
}

func (u *UnitOfWorkImpl) StoreContentRepository() contract.StoreContentRepository {
	return implementation.NewStoreContentRepository(u.conn())
}

func (u *UnitOfWorkImpl) CrawlJobRepository() contract.CrawlJobRepository {
	return implementation.NewCrawlJobRepository(u.conn())
}

func (u *UnitOfWorkImpl) PdfJobRepository() contract.PdfJobRepository {
	return implementation.NewPdfJobRepository(u.conn())
}
