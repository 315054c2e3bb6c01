package mapper

import (
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type EmbeddingMapper struct{}

func NewEmbeddingMapper() *EmbeddingMapper {
	return &EmbeddingMapper{}
}

func (m *EmbeddingMapper) ToEntity(e *model.Embedding) *entity.Embedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Embedding{
		Id:          e.Id,
		ContentType: entity.ContentType(e.ContentType),
		ContentId:   e.ContentId,
		ChunkIndex:  e.ChunkIndex,
		ChunkText:   e.ChunkText,
		Vector:      e.Vector.Slice(),
		SourceURL:   e.SourceURL,
		OriginURL:   e.OriginURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *EmbeddingMapper) ToModel(e *entity.Embedding) *model.Embedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Embedding{
		Id:          e.Id,
		ContentType: e.ContentType.String(),
		ContentId:   e.ContentId,
		ChunkIndex:  e.ChunkIndex,
		ChunkText:   e.ChunkText,
		Vector:      pgvector.NewVector(e.Vector),
		SourceURL:   e.SourceURL,
		OriginURL:   e.OriginURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *EmbeddingMapper) ToEntities(embeddings []*model.Embedding) []*entity.Embedding {
	entities := make([]*entity.Embedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
