package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/embedding"

	"github.com/google/uuid"
)

// ErrNothingStored is returned by UpsertChunks when no chunk could be embedded
// and stored. It wraps the last underlying failure.
var ErrNothingStored = errors.New("no chunk was stored")

// ReplaceScope names the rows a Replace supersedes. With OriginURL set it is
// every row crawled under that seed plus the rows of SourceURLs; otherwise
// it is the rows of ContentType/ContentId.
type ReplaceScope struct {
	ContentType entity.ContentType
	ContentId   int64
	OriginURL   string
	SourceURLs  []string
}

type IVectorStoreService interface {
	EmbedChunks(ctx context.Context, contentType entity.ContentType, contentId int64, chunks []string, provenance *entity.Provenance) ([]*entity.Embedding, error)
	Replace(ctx context.Context, scope ReplaceScope, rows []*entity.Embedding) (int64, error)
	UpsertChunks(ctx context.Context, contentType entity.ContentType, contentId int64, chunks []string, provenance *entity.Provenance) (int, error)
	DeleteByContent(ctx context.Context, contentType entity.ContentType, contentId int64) (int64, error)
	DeleteByProvenance(ctx context.Context, originURL string, exact bool) (int64, error)
	DeleteBySourceURL(ctx context.Context, sourceURL string) (int64, error)
	FetchByTypes(ctx context.Context, types []entity.ContentType) ([]*entity.Embedding, error)
	FetchByContent(ctx context.Context, contentType entity.ContentType, contentId int64) ([]*entity.Embedding, error)
	CountByContentType(ctx context.Context) ([]entity.ContentTypeCount, error)
}

type vectorStoreService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewVectorStoreService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	logger logger.ILogger,
) IVectorStoreService {
	return &vectorStoreService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// EmbedChunks turns chunks into rows without storing them. A chunk that
// fails to embed is skipped; the call fails only when no chunk embedded.
func (s *vectorStoreService) EmbedChunks(
	ctx context.Context,
	contentType entity.ContentType,
	contentId int64,
	chunks []string,
	provenance *entity.Provenance,
) ([]*entity.Embedding, error) {
	chunks = nonEmpty(chunks)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s/%d has no text", ErrNothingStored, contentType, contentId)
	}

	rows := make([]*entity.Embedding, 0, len(chunks))
	var lastErr error
	for i, chunk := range chunks {
		vector, err := s.embeddingProvider.Embed(ctx, chunk)
		if err != nil {
			lastErr = err
			s.logger.Warn("VECTOR_STORE", "Failed to embed chunk", map[string]interface{}{
				"content_type": contentType.String(),
				"content_id":   contentId,
				"chunk_index":  i,
				"error":        err.Error(),
			})
			continue
		}

		row := &entity.Embedding{
			Id:          uuid.New(),
			ContentType: contentType,
			ContentId:   contentId,
			ChunkIndex:  i,
			ChunkText:   chunk,
			Vector:      vector,
			CreatedAt:   time.Now(),
		}
		if provenance != nil {
			row.SourceURL = provenance.SourceURL
			row.OriginURL = provenance.OriginURL
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNothingStored, lastErr)
	}
	return rows, nil
}

// Replace deletes the rows in scope and inserts rows in one transaction, so
// readers see either the old set or the new one. It returns the number of
// rows removed.
func (s *vectorStoreService) Replace(ctx context.Context, scope ReplaceScope, rows []*entity.Embedding) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	repo := uow.EmbeddingRepository()
	var deleted int64
	if scope.OriginURL != "" {
		n, err := repo.DeleteByOriginURL(ctx, scope.OriginURL, true)
		if err != nil {
			return 0, err
		}
		deleted += n
		for _, source := range scope.SourceURLs {
			n, err := repo.DeleteBySourceURL(ctx, source)
			if err != nil {
				return 0, err
			}
			deleted += n
		}
	} else {
		n, err := repo.DeleteByContent(ctx, scope.ContentType, scope.ContentId)
		if err != nil {
			return 0, err
		}
		deleted = n
	}

	for _, row := range rows {
		if err := repo.Create(ctx, row); err != nil {
			return 0, err
		}
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// UpsertChunks embeds and appends chunks in order, keeping existing rows.
// Singleton types keep exactly one row: the chunks are joined and the existing
// row is updated in place.
func (s *vectorStoreService) UpsertChunks(
	ctx context.Context,
	contentType entity.ContentType,
	contentId int64,
	chunks []string,
	provenance *entity.Provenance,
) (int, error) {
	if contentType.IsSingleton() {
		chunks = nonEmpty(chunks)
		if len(chunks) == 0 {
			return 0, fmt.Errorf("%w: %s/%d has no text", ErrNothingStored, contentType, contentId)
		}
		if err := s.upsertSingleton(ctx, contentType, contentId, strings.Join(chunks, "\n")); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrNothingStored, err)
		}
		return 1, nil
	}

	rows, err := s.EmbedChunks(ctx, contentType, contentId, chunks, provenance)
	if err != nil {
		return 0, err
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).EmbeddingRepository()
	stored := 0
	var lastErr error
	for _, row := range rows {
		if err := repo.Create(ctx, row); err != nil {
			lastErr = err
			s.logger.Error("VECTOR_STORE", "Failed to store chunk", map[string]interface{}{
				"content_type": contentType.String(),
				"content_id":   contentId,
				"chunk_index":  row.ChunkIndex,
				"error":        err.Error(),
			})
			continue
		}
		stored++
	}
	if stored == 0 {
		return 0, fmt.Errorf("%w: %w", ErrNothingStored, lastErr)
	}
	return stored, nil
}

func (s *vectorStoreService) upsertSingleton(ctx context.Context, contentType entity.ContentType, contentId int64, text string) error {
	vector, err := s.embeddingProvider.Embed(ctx, text)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.EmbeddingRepository()
	existing, err := repo.FindByContent(ctx, contentType, contentId)
	if err != nil {
		return err
	}

	now := time.Now()
	if len(existing) == 0 {
		if err := repo.Create(ctx, &entity.Embedding{
			Id:          uuid.New(),
			ContentType: contentType,
			ContentId:   contentId,
			ChunkText:   text,
			Vector:      vector,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return uow.Commit()
	}

	row := existing[0]
	row.ChunkIndex = 0
	row.ChunkText = text
	row.Vector = vector
	row.UpdatedAt = &now
	if err := repo.Update(ctx, row); err != nil {
		return err
	}

	// Rows left over from older writes are collapsed so one row remains.
	if len(existing) > 1 {
		if _, err := repo.DeleteByContent(ctx, contentType, contentId); err != nil {
			return err
		}
		row.Id = uuid.New()
		if err := repo.Create(ctx, row); err != nil {
			return err
		}
	}
	return uow.Commit()
}

func (s *vectorStoreService) DeleteByContent(ctx context.Context, contentType entity.ContentType, contentId int64) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().DeleteByContent(ctx, contentType, contentId)
}

func (s *vectorStoreService) DeleteByProvenance(ctx context.Context, originURL string, exact bool) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().DeleteByOriginURL(ctx, originURL, exact)
}

func (s *vectorStoreService) DeleteBySourceURL(ctx context.Context, sourceURL string) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().DeleteBySourceURL(ctx, sourceURL)
}

func (s *vectorStoreService) FetchByTypes(ctx context.Context, types []entity.ContentType) ([]*entity.Embedding, error) {
	expanded := entity.ExpandContentTypes(types)
	if len(expanded) == 0 {
		return nil, nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().FindByContentTypes(ctx, expanded)
}

func (s *vectorStoreService) FetchByContent(ctx context.Context, contentType entity.ContentType, contentId int64) ([]*entity.Embedding, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().FindByContent(ctx, contentType, contentId)
}

func (s *vectorStoreService) CountByContentType(ctx context.Context) ([]entity.ContentTypeCount, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmbeddingRepository().CountByContentType(ctx)
}

func nonEmpty(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
