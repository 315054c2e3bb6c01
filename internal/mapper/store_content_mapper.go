package mapper

import (
	"encoding/json"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/model"

	"gorm.io/datatypes"
)

type StoreContentMapper struct{}

func NewStoreContentMapper() *StoreContentMapper {
	return &StoreContentMapper{}
}

func (m *StoreContentMapper) ToEntity(c *model.StoreContent) *entity.StoreContent {
	if c == nil {
		return nil
	}

	// Attributes are free-form; a malformed document only loses its attributes.
	attrs := map[string]interface{}{}
	if len(c.Attributes) > 0 {
		_ = json.Unmarshal(c.Attributes, &attrs)
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.StoreContent{
		Id:          c.Id,
		ContentType: entity.ContentType(c.ContentType),
		Title:       c.Title,
		Body:        c.Body,
		Excerpt:     c.Excerpt,
		URL:         c.URL,
		Status:      c.Status,
		Attributes:  attrs,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *StoreContentMapper) ToModel(c *entity.StoreContent) *model.StoreContent {
	if c == nil {
		return nil
	}

	var attrs datatypes.JSON
	if len(c.Attributes) > 0 {
		if raw, err := json.Marshal(c.Attributes); err == nil {
			attrs = datatypes.JSON(raw)
		}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.StoreContent{
		Id:          c.Id,
		ContentType: c.ContentType.String(),
		Title:       c.Title,
		Body:        c.Body,
		Excerpt:     c.Excerpt,
		URL:         c.URL,
		Status:      c.Status,
		Attributes:  attrs,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
