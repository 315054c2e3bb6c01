package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/contract"

	"github.com/google/uuid"
)

// EmbeddingRepository writes straight to the store, or into the pending log
// of an open unit of work, which applies it on Commit. Reads always see the
// committed store.
type EmbeddingRepository struct {
	store *Store
	tx    *txLog
}

func NewEmbeddingRepository(store *Store) contract.EmbeddingRepository {
	return &EmbeddingRepository{store: store}
}

func cloneEmbedding(e *entity.Embedding) *entity.Embedding {
	c := *e
	c.Vector = append([]float32(nil), e.Vector...)
	return &c
}

// write runs op under the store lock now, or defers it to Commit.
func (r *EmbeddingRepository) write(op func(s *Store)) {
	if r.tx != nil {
		r.tx.add(op)
		return
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	op(r.store)
}

func (r *EmbeddingRepository) Create(_ context.Context, embedding *entity.Embedding) error {
	if embedding.Id == uuid.Nil {
		embedding.Id = uuid.New()
	}
	if embedding.CreatedAt.IsZero() {
		embedding.CreatedAt = time.Now()
	}
	row := cloneEmbedding(embedding)
	r.write(func(s *Store) {
		s.embeddings = append(s.embeddings, row)
	})
	return nil
}

func (r *EmbeddingRepository) Update(_ context.Context, embedding *entity.Embedding) error {
	now := time.Now()
	embedding.UpdatedAt = &now
	row := cloneEmbedding(embedding)
	r.write(func(s *Store) {
		for i, e := range s.embeddings {
			if e.Id == row.Id {
				s.embeddings[i] = row
				return
			}
		}
		s.embeddings = append(s.embeddings, row)
	})
	return nil
}

// deleteWhere reports the rows matching now; inside a unit of work the
// removal itself happens on Commit.
func (r *EmbeddingRepository) deleteWhere(match func(*entity.Embedding) bool) int64 {
	if r.tx != nil {
		r.tx.add(func(s *Store) { removeEmbeddings(s, match) })
		return r.store.countEmbeddings(match)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return removeEmbeddings(r.store, match)
}

func removeEmbeddings(s *Store, match func(*entity.Embedding) bool) int64 {
	kept := s.embeddings[:0]
	var deleted int64
	for _, e := range s.embeddings {
		if match(e) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.embeddings = kept
	return deleted
}

func (r *EmbeddingRepository) DeleteByContent(_ context.Context, contentType entity.ContentType, contentId int64) (int64, error) {
	return r.deleteWhere(func(e *entity.Embedding) bool {
		return e.ContentType == contentType && e.ContentId == contentId
	}), nil
}

func (r *EmbeddingRepository) DeleteByOriginURL(_ context.Context, originURL string, exact bool) (int64, error) {
	return r.deleteWhere(func(e *entity.Embedding) bool {
		if e.ContentType != entity.ContentTypeExternalURL {
			return false
		}
		if exact {
			return e.OriginURL == originURL
		}
		return strings.HasPrefix(e.OriginURL, originURL)
	}), nil
}

func (r *EmbeddingRepository) DeleteBySourceURL(_ context.Context, sourceURL string) (int64, error) {
	return r.deleteWhere(func(e *entity.Embedding) bool {
		return e.ContentType == entity.ContentTypeExternalURL && e.SourceURL == sourceURL
	}), nil
}

func (r *EmbeddingRepository) FindByContent(_ context.Context, contentType entity.ContentType, contentId int64) ([]*entity.Embedding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Embedding
	for _, e := range r.store.embeddings {
		if e.ContentType == contentType && e.ContentId == contentId {
			out = append(out, cloneEmbedding(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (r *EmbeddingRepository) FindByContentTypes(_ context.Context, types []entity.ContentType) ([]*entity.Embedding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[entity.ContentType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var out []*entity.Embedding
	for _, e := range r.store.embeddings {
		if wanted[e.ContentType] {
			out = append(out, cloneEmbedding(e))
		}
	}
	return out, nil
}

func (r *EmbeddingRepository) CountByContentType(_ context.Context) ([]entity.ContentTypeCount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[entity.ContentType]int64)
	for _, e := range r.store.embeddings {
		counts[e.ContentType]++
	}

	out := make([]entity.ContentTypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, entity.ContentTypeCount{ContentType: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContentType < out[j].ContentType })
	return out, nil
}
