package specification

import (
	"strings"

	"ai-shopassist-be/internal/entity"

	"gorm.io/gorm"
)

// ByContent filters embedding rows owned by one content item.
type ByContent struct {
	ContentType entity.ContentType
	ContentId   int64
}

func (s ByContent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_type = ? AND content_id = ?", s.ContentType.String(), s.ContentId)
}

// ByContentTypes filters on a set of content types. An empty set matches nothing.
type ByContentTypes struct {
	Types []entity.ContentType
}

func (s ByContentTypes) Apply(db *gorm.DB) *gorm.DB {
	names := make([]string, len(s.Types))
	for i, t := range s.Types {
		names[i] = t.String()
	}
	if len(names) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where("content_type IN ?", names)
}

// ByOriginURL filters crawled rows by the seed that produced them.
// With Exact false every seed under the given prefix matches.
type ByOriginURL struct {
	URL   string
	Exact bool
}

func (s ByOriginURL) Apply(db *gorm.DB) *gorm.DB {
	if s.Exact {
		return db.Where("origin_url = ?", s.URL)
	}
	return db.Where("origin_url LIKE ?", escapeLike(s.URL)+"%")
}

// BySourceURL filters crawled rows of one exact page.
type BySourceURL struct {
	URL string
}

func (s BySourceURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_url = ?", s.URL)
}

// InChunkOrder sorts rows of the same content in insertion order.
type InChunkOrder struct{}

func (s InChunkOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("content_type ASC, content_id ASC, chunk_index ASC, created_at ASC")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
