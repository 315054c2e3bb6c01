package dto

type SearchRequest struct {
	Query        string   `json:"query" validate:"max=2000"`
	Limit        int      `json:"limit" validate:"min=0,max=50"`
	Threshold    *float64 `json:"threshold" validate:"omitempty,min=0,max=1"`
	ContentTypes []string `json:"content_types" validate:"max=20"`
	Intent       string   `json:"intent" validate:"omitempty,oneof=general product_search"`
}

type SearchResultItem struct {
	ContentType string  `json:"content_type"`
	ContentId   int64   `json:"content_id"`
	ChunkText   string  `json:"chunk_text"`
	SourceURL   string  `json:"source_url,omitempty"`
	Score       float64 `json:"score"`
}

type SearchResponse struct {
	Results    []SearchResultItem `json:"results"`
	ProductIds []int64            `json:"product_ids,omitempty"`
}
