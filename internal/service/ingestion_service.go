package service

import (
	"context"
	"errors"
	"fmt"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/settings"
	"ai-shopassist-be/pkg/extractor"
	"ai-shopassist-be/pkg/utils"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrContentExcluded = errors.New("content is excluded from the assistant")
)

type IIngestionService interface {
	ProcessBatch(ctx context.Context, offset int) (*dto.ProcessBatchResponse, error)
	Reindex(ctx context.Context, contentType entity.ContentType, contentId int64) (*dto.ReindexResponse, error)
	HandleContentDeleted(ctx context.Context, contentType entity.ContentType, contentId int64) (int64, error)
	HandleContentUpdated(ctx context.Context, contentType entity.ContentType, contentId int64) error
	HandleSettingsChanged(ctx context.Context) error
	SyncSettingsKnowledge(ctx context.Context) error
	PurgeExcluded(ctx context.Context) (*dto.PurgeExcludedResponse, error)
	Stats(ctx context.Context) (*dto.EmbeddingStatsResponse, error)
}

type ingestionService struct {
	uowFactory  unitofwork.RepositoryFactory
	vectorStore IVectorStoreService
	extractors  *extractor.Registry
	settings    *settings.Provider
	logger      logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	vectorStore IVectorStoreService,
	extractors *extractor.Registry,
	settings *settings.Provider,
	logger logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:  uowFactory,
		vectorStore: vectorStore,
		extractors:  extractors,
		settings:    settings,
		logger:      logger,
	}
}

func (s *ingestionService) batchTypes() []entity.ContentType {
	types := []entity.ContentType{entity.ContentTypePost, entity.ContentTypePage}
	if s.settings.CommerceEnabled() {
		types = append(entity.ProductAliases(), types...)
	}
	return types
}

// ProcessBatch ingests the next page of unprocessed content. Items that fail
// stay unprocessed, so next_offset skips past them and a caller looping until
// done always terminates.
func (s *ingestionService) ProcessBatch(ctx context.Context, offset int) (*dto.ProcessBatchResponse, error) {
	if offset < 0 {
		offset = 0
	}
	current := s.settings.Current()
	query := contract.UnprocessedQuery{
		Types:    s.batchTypes(),
		Excluded: current.Exclusions(),
		Offset:   offset,
		Limit:    s.settings.BatchSize(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.StoreContentRepository().ListUnprocessed(ctx, query)
	if err != nil {
		return nil, err
	}

	res := &dto.ProcessBatchResponse{Errors: make([]string, 0)}
	for _, item := range items {
		count, err := s.ingestItem(ctx, item)
		if err != nil {
			res.FailedCount++
			res.Errors = append(res.Errors, fmt.Sprintf("%s #%d: %v", item.ContentType, item.Id, err))
			s.logger.Warn("INGEST", "Failed to ingest item", map[string]interface{}{
				"content_type": item.ContentType.String(),
				"content_id":   item.Id,
				"error":        err.Error(),
			})
			continue
		}
		res.ProcessedCount++
		s.logger.Debug("INGEST", "Item ingested", map[string]interface{}{
			"content_type": item.ContentType.String(),
			"content_id":   item.Id,
			"chunks":       count,
		})
	}

	res.NextOffset = offset + res.FailedCount

	query.Offset = 0
	query.Limit = 0
	unprocessed, err := uow.StoreContentRepository().CountUnprocessed(ctx, query)
	if err != nil {
		return nil, err
	}
	res.RemainingCount = unprocessed - int64(res.NextOffset)
	if res.RemainingCount < 0 {
		res.RemainingCount = 0
	}
	res.Done = res.RemainingCount == 0 || len(items) == 0

	s.logger.Info("INGEST", "Batch processed", map[string]interface{}{
		"offset":    offset,
		"processed": res.ProcessedCount,
		"failed":    res.FailedCount,
		"remaining": res.RemainingCount,
	})
	return res, nil
}

func (s *ingestionService) ingestItem(ctx context.Context, item *entity.StoreContent) (int, error) {
	if s.settings.Current().IsExcluded(item.ContentType, item.Id) {
		return 0, ErrContentExcluded
	}

	text, err := s.extractors.Extract(item)
	if err != nil {
		return 0, err
	}

	chunks := utils.SplitText(text, utils.DefaultChunkSize)
	rows, err := s.vectorStore.EmbedChunks(ctx, item.ContentType, item.Id, chunks, nil)
	if err != nil {
		return 0, err
	}
	scope := ReplaceScope{ContentType: item.ContentType, ContentId: item.Id}
	if _, err := s.vectorStore.Replace(ctx, scope, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Reindex replaces the stored chunks of one item. The old chunks stay until
// the new ones are embedded; unpublished or excluded items lose them.
func (s *ingestionService) Reindex(ctx context.Context, contentType entity.ContentType, contentId int64) (*dto.ReindexResponse, error) {
	res := &dto.ReindexResponse{ContentType: contentType.String(), ContentId: contentId}

	if contentType.IsSingleton() {
		if err := s.SyncSettingsKnowledge(ctx); err != nil {
			return nil, err
		}
		res.ChunkCount = 1
		return res, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	item, err := uow.StoreContentRepository().FindOne(ctx, contentType, contentId)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrContentNotFound
	}

	if item.Status != entity.ContentStatusPublished {
		if _, err := s.vectorStore.DeleteByContent(ctx, contentType, contentId); err != nil {
			return nil, err
		}
		return res, nil
	}

	count, err := s.ingestItem(ctx, item)
	if errors.Is(err, ErrContentExcluded) {
		if _, delErr := s.vectorStore.DeleteByContent(ctx, contentType, contentId); delErr != nil {
			return nil, delErr
		}
	}
	if err != nil {
		return nil, err
	}
	res.ChunkCount = count
	return res, nil
}

func (s *ingestionService) HandleContentDeleted(ctx context.Context, contentType entity.ContentType, contentId int64) (int64, error) {
	deleted, err := s.vectorStore.DeleteByContent(ctx, contentType, contentId)
	if err != nil {
		return 0, err
	}
	s.logger.Info("INGEST", "Removed chunks of deleted content", map[string]interface{}{
		"content_type": contentType.String(),
		"content_id":   contentId,
		"deleted":      deleted,
	})
	return deleted, nil
}

// HandleContentUpdated reindexes an edited item. Content that is gone,
// unpublished or excluded only loses its chunks.
func (s *ingestionService) HandleContentUpdated(ctx context.Context, contentType entity.ContentType, contentId int64) error {
	_, err := s.Reindex(ctx, contentType, contentId)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrContentNotFound), errors.Is(err, ErrContentExcluded), errors.Is(err, extractor.ErrNoContent):
		_, delErr := s.vectorStore.DeleteByContent(ctx, contentType, contentId)
		return delErr
	default:
		return err
	}
}

// HandleSettingsChanged reloads settings, drops chunks of newly excluded
// items and re-embeds the store knowledge when it changed.
func (s *ingestionService) HandleSettingsChanged(ctx context.Context) error {
	prev, next, err := s.settings.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh settings: %w", err)
	}

	deleted, err := s.purge(ctx, settings.NewlyExcluded(prev, next))
	if err != nil {
		return err
	}

	if prev == nil || prev.StoreKnowledge != next.StoreKnowledge {
		if err := s.SyncSettingsKnowledge(ctx); err != nil && !errors.Is(err, extractor.ErrNoContent) {
			return err
		}
	}

	s.logger.Info("INGEST", "Settings change applied", map[string]interface{}{
		"purged_rows": deleted,
	})
	return nil
}

// SyncSettingsKnowledge stores the free-text store knowledge as the settings
// singleton. Empty knowledge removes the singleton and reports ErrNoContent.
func (s *ingestionService) SyncSettingsKnowledge(ctx context.Context) error {
	item := &entity.StoreContent{
		Id:          entity.SingletonContentID,
		ContentType: entity.ContentTypeSettings,
		Body:        s.settings.Current().StoreKnowledge,
		Status:      entity.ContentStatusPublished,
	}

	text, err := s.extractors.Extract(item)
	if err != nil {
		if _, delErr := s.vectorStore.DeleteByContent(ctx, entity.ContentTypeSettings, entity.SingletonContentID); delErr != nil {
			return delErr
		}
		return err
	}

	_, err = s.vectorStore.UpsertChunks(ctx, entity.ContentTypeSettings, entity.SingletonContentID, []string{text}, nil)
	return err
}

func (s *ingestionService) PurgeExcluded(ctx context.Context) (*dto.PurgeExcludedResponse, error) {
	deleted, err := s.purge(ctx, s.settings.Current().ExcludedIDs)
	if err != nil {
		return nil, err
	}
	return &dto.PurgeExcludedResponse{DeletedCount: deleted}, nil
}

func (s *ingestionService) purge(ctx context.Context, excluded map[entity.ContentType][]int64) (int64, error) {
	var total int64
	for contentType, ids := range excluded {
		for _, t := range entity.ExpandContentTypes([]entity.ContentType{contentType}) {
			for _, id := range ids {
				n, err := s.vectorStore.DeleteByContent(ctx, t, id)
				if err != nil {
					return total, err
				}
				total += n
			}
		}
	}
	return total, nil
}

func (s *ingestionService) Stats(ctx context.Context) (*dto.EmbeddingStatsResponse, error) {
	counts, err := s.vectorStore.CountByContentType(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.EmbeddingStatsResponse{ByType: make([]dto.EmbeddingStatsItem, 0, len(counts))}
	for _, c := range counts {
		res.Total += c.Count
		res.ByType = append(res.ByType, dto.EmbeddingStatsItem{
			ContentType: c.ContentType.String(),
			Count:       c.Count,
		})
	}
	return res, nil
}
