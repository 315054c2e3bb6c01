package specification

import (
	"ai-shopassist-be/internal/entity"

	"gorm.io/gorm"
)

// Published keeps only live CMS items.
type Published struct{}

func (s Published) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("store_contents.status = ?", entity.ContentStatusPublished)
}

// OfContentTypes filters store contents by type.
type OfContentTypes struct {
	Types []entity.ContentType
}

func (s OfContentTypes) Apply(db *gorm.DB) *gorm.DB {
	names := make([]string, len(s.Types))
	for i, t := range s.Types {
		names[i] = t.String()
	}
	if len(names) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where("store_contents.content_type IN ?", names)
}

// NotExcluded drops ids an operator excluded from the assistant.
type NotExcluded struct {
	Excluded map[entity.ContentType][]int64
}

func (s NotExcluded) Apply(db *gorm.DB) *gorm.DB {
	for t, ids := range s.Excluded {
		if len(ids) == 0 {
			continue
		}
		db = db.Where("NOT (store_contents.content_type = ? AND store_contents.id IN ?)", t.String(), ids)
	}
	return db
}

// WithoutEmbeddings keeps items that have no stored chunk yet.
type WithoutEmbeddings struct{}

func (s WithoutEmbeddings) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(`NOT EXISTS (
		SELECT 1 FROM embeddings e
		WHERE e.content_type = store_contents.content_type AND e.content_id = store_contents.id
	)`)
}
