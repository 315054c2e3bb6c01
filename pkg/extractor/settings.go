package extractor

import (
	"fmt"

	"ai-shopassist-be/internal/entity"
)

// SettingsExtractor takes the store's free-text knowledge from the settings
// singleton. Empty knowledge is a content error.
type SettingsExtractor struct{}

func NewSettingsExtractor() *SettingsExtractor {
	return &SettingsExtractor{}
}

func (e *SettingsExtractor) Extract(item *entity.StoreContent) (string, error) {
	text := HTMLToText(item.Body)
	if text == "" {
		return "", fmt.Errorf("settings knowledge is empty: %w", ErrNoContent)
	}
	return text, nil
}
