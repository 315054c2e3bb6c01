package memory

import (
	"context"

	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/unitofwork"
)

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// txLog holds embedding writes made between Begin and Commit.
type txLog struct {
	ops []func(s *Store)
}

func (t *txLog) add(op func(s *Store)) {
	t.ops = append(t.ops, op)
}

// UnitOfWork buffers embedding writes while a transaction is open and applies
// them under one store lock on Commit; Rollback drops them. Job and content
// writes are never part of a transaction and go straight through.
type UnitOfWork struct {
	store *Store
	tx    *txLog
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.tx != nil {
		return unitofwork.ErrTxActive
	}
	u.tx = &txLog{}
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return unitofwork.ErrNoTx
	}
	ops := u.tx.ops
	u.tx = nil

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, op := range ops {
		op(u.store)
	}
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return unitofwork.ErrNoTx
	}
	u.tx = nil
	return nil
}

func (u *UnitOfWork) EmbeddingRepository() contract.EmbeddingRepository {
	return &EmbeddingRepository{store: u.store, tx: u.tx}
}

func (u *UnitOfWork) StoreContentRepository() contract.StoreContentRepository {
	return NewStoreContentRepository(u.store)
}

func (u *UnitOfWork) CrawlJobRepository() contract.CrawlJobRepository {
	return NewCrawlJobRepository(u.store)
}

func (u *UnitOfWork) PdfJobRepository() contract.PdfJobRepository {
	return NewPdfJobRepository(u.store)
}
