package dto

type ProcessBatchRequest struct {
	Offset int `json:"offset" validate:"min=0"`
}

type ProcessBatchResponse struct {
	ProcessedCount int      `json:"processed_count"`
	FailedCount    int      `json:"failed_count"`
	RemainingCount int64    `json:"remaining_count"`
	NextOffset     int      `json:"next_offset"`
	Done           bool     `json:"done"`
	Errors         []string `json:"errors"`
}

type ReindexResponse struct {
	ContentType string `json:"content_type"`
	ContentId   int64  `json:"content_id"`
	ChunkCount  int    `json:"chunk_count"`
}

type PurgeExcludedResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

type EmbeddingStatsItem struct {
	ContentType string `json:"content_type"`
	Count       int64  `json:"count"`
}

type EmbeddingStatsResponse struct {
	Total  int64                `json:"total"`
	ByType []EmbeddingStatsItem `json:"by_type"`
}
