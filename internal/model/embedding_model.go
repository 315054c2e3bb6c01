package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Embedding rows are hard deleted; the vector column has no fixed dimension so
// the embedding model can change without a migration.
type Embedding struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContentType string          `gorm:"type:varchar(64);not null;index:idx_embeddings_content,priority:1"`
	ContentId   int64           `gorm:"not null;index:idx_embeddings_content,priority:2"`
	ChunkIndex  int             `gorm:"default:0"`
	ChunkText   string          `gorm:"type:text;not null"`
	Vector      pgvector.Vector `gorm:"type:vector"`
	SourceURL   string          `gorm:"type:text;index"`
	OriginURL   string          `gorm:"type:text;index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Embedding) TableName() string {
	return "embeddings"
}
