package memory

import (
	"context"
	"sort"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/contract"
)

type StoreContentRepository struct {
	store *Store
}

func NewStoreContentRepository(store *Store) contract.StoreContentRepository {
	return &StoreContentRepository{store: store}
}

func (r *StoreContentRepository) FindOne(_ context.Context, contentType entity.ContentType, id int64) (*entity.StoreContent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.contents[contentKey{contentType, id}]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *StoreContentRepository) unprocessed(q contract.UnprocessedQuery) []*entity.StoreContent {
	types := make(map[entity.ContentType]bool, len(q.Types))
	for _, t := range q.Types {
		types[t] = true
	}
	excluded := make(map[contentKey]bool)
	for t, ids := range q.Excluded {
		for _, id := range ids {
			excluded[contentKey{t, id}] = true
		}
	}

	var out []*entity.StoreContent
	for k, c := range r.store.contents {
		if !types[c.ContentType] || c.Status != entity.ContentStatusPublished || excluded[k] {
			continue
		}
		if r.store.hasEmbeddings(c.ContentType, c.Id) {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (r *StoreContentRepository) ListUnprocessed(_ context.Context, q contract.UnprocessedQuery) ([]*entity.StoreContent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := r.unprocessed(q)
	if q.Offset >= len(items) {
		return []*entity.StoreContent{}, nil
	}
	items = items[q.Offset:]
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

func (r *StoreContentRepository) CountUnprocessed(_ context.Context, q contract.UnprocessedQuery) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.unprocessed(q))), nil
}

func (r *StoreContentRepository) Save(_ context.Context, content *entity.StoreContent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now()
	}
	if content.Status == "" {
		content.Status = entity.ContentStatusPublished
	}
	copied := *content
	r.store.contents[contentKey{content.ContentType, content.Id}] = &copied
	return nil
}
