package dto

import "time"

type CrawlRequest struct {
	URL          string   `json:"url" validate:"required,url"`
	FollowLinks  *bool    `json:"follow_links"`
	Selector     string   `json:"selector" validate:"max=200"`
	IncludePaths []string `json:"include_paths" validate:"max=20,dive,max=200"`
	ExcludePaths []string `json:"exclude_paths" validate:"max=20,dive,max=200"`
	MaxPages     int      `json:"max_pages" validate:"min=0"`
	MaxDepth     int      `json:"max_depth" validate:"min=0"`
}

type UploadPdfRequest struct {
	FileName string
	Size     int64
	Data     []byte
}

// JobStatusResponse is the poll view of a crawl or pdf job.
type JobStatusResponse struct {
	JobKey         string    `json:"job_key"`
	Kind           string    `json:"kind"`
	Source         string    `json:"source"`
	Status         string    `json:"status"`
	ErrorType      string    `json:"error_type,omitempty"`
	UserMessage    string    `json:"user_message"`
	EmbeddingCount int       `json:"embedding_count"`
	PagesCrawled   int       `json:"pages_crawled,omitempty"`
	Attempts       int       `json:"attempts"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DeleteJobResponse struct {
	JobKey      string `json:"job_key"`
	DeletedRows int64  `json:"deleted_rows"`
	FileRemoved bool   `json:"file_removed,omitempty"`
}

type DeleteURLResponse struct {
	URL         string `json:"url"`
	DeletedRows int64  `json:"deleted_rows"`
}

type ClearProtectionResponse struct {
	URL     string `json:"url"`
	Cleared bool   `json:"cleared"`
}
