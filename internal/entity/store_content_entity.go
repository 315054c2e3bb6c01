package entity

import "time"

const (
	ContentStatusPublished = "publish"
	ContentStatusDraft     = "draft"
)

// StoreContent is a CMS item mirrored for ingestion (products, posts, pages).
type StoreContent struct {
	Id          int64
	ContentType ContentType
	Title       string
	Body        string
	Excerpt     string
	URL         string
	Status      string
	Attributes  map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
