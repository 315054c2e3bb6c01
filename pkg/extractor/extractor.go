// Package extractor turns stored content records into plain text ready for
// chunking. Each content type family has its own extractor.
package extractor

import (
	"errors"
	"fmt"

	"ai-shopassist-be/internal/entity"
)

// ErrNoContent means the record produced no usable text.
var ErrNoContent = errors.New("no extractable content")

type Extractor interface {
	Extract(item *entity.StoreContent) (string, error)
}

// Registry picks the extractor for a content type. Unknown types fall back
// to the document extractor.
type Registry struct {
	product  Extractor
	document Extractor
	settings Extractor
}

func NewRegistry() *Registry {
	return &Registry{
		product:  NewProductExtractor(),
		document: NewDocumentExtractor(),
		settings: NewSettingsExtractor(),
	}
}

func (r *Registry) For(contentType entity.ContentType) Extractor {
	switch {
	case contentType.IsSingleton():
		return r.settings
	case contentType.IsProductFamily():
		return r.product
	default:
		return r.document
	}
}

// Extract runs the matching extractor.
func (r *Registry) Extract(item *entity.StoreContent) (string, error) {
	if item == nil {
		return "", fmt.Errorf("extract: %w", ErrNoContent)
	}
	return r.For(item.ContentType).Extract(item)
}
