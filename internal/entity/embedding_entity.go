package entity

import (
	"time"

	"github.com/google/uuid"
)

// Embedding is a single stored chunk with its vector.
type Embedding struct {
	Id          uuid.UUID
	ContentType ContentType
	ContentId   int64
	ChunkIndex  int
	ChunkText   string
	Vector      []float32
	SourceURL   string // crawled rows only
	OriginURL   string // crawled rows only
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Provenance identifies where a crawled chunk came from.
type Provenance struct {
	SourceURL string
	OriginURL string
}

// ContentTypeCount is a per type row count.
type ContentTypeCount struct {
	ContentType ContentType
	Count       int64
}
