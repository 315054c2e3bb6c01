package extractor

import (
	"fmt"
	"strings"

	"ai-shopassist-be/internal/entity"
)

// DocumentExtractor handles posts, pages and any other generic CMS item.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

func (e *DocumentExtractor) Extract(item *entity.StoreContent) (string, error) {
	body := HTMLToText(item.Body)
	excerpt := HTMLToText(item.Excerpt)

	var sb strings.Builder
	if title := strings.TrimSpace(item.Title); title != "" {
		sb.WriteString("Title: " + title + "\n")
	}
	if excerpt != "" && !strings.Contains(body, excerpt) {
		sb.WriteString("Summary: " + excerpt + "\n")
	}
	if body != "" {
		sb.WriteString(body + "\n")
	}
	if item.URL != "" {
		sb.WriteString("URL: " + item.URL + "\n")
	}

	if body == "" && excerpt == "" {
		return "", fmt.Errorf("%s %d: %w", item.ContentType, item.Id, ErrNoContent)
	}
	return strings.TrimSpace(sb.String()), nil
}
