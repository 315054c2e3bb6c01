package entity

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

type JobKind string

const (
	JobKindCrawl JobKind = "crawl"
	JobKindPDF   JobKind = "pdf"
)

// JobErrorType classifies why a job failed. It drives the user message.
type JobErrorType string

const (
	JobErrorBotProtection   JobErrorType = "bot_protection"
	JobErrorFetchFailed     JobErrorType = "fetch_failed"
	JobErrorNoContent       JobErrorType = "no_content"
	JobErrorUnreadableFile  JobErrorType = "unreadable_file"
	JobErrorEmbeddingFailed JobErrorType = "embedding_failed"
	JobErrorStorageFailed   JobErrorType = "storage_failed"
	JobErrorInternal        JobErrorType = "internal"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition enforces pending -> processing -> completed|failed.
// A terminal job only changes by resubmission (Reset) or deletion.
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case JobStatusPending:
		return to == JobStatusProcessing || to == JobStatusFailed
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

// JobState is the lifecycle shared by crawl and pdf jobs.
type JobState struct {
	Status         JobStatus
	Attempts       int
	ErrorType      JobErrorType
	ErrorMessage   string
	EmbeddingCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (j *JobState) transition(to JobStatus) error {
	if !j.Status.CanTransition(to) {
		return fmt.Errorf("invalid job transition %s -> %s", j.Status, to)
	}
	j.Status = to
	j.UpdatedAt = time.Now()
	return nil
}

func (j *JobState) Start() error {
	return j.transition(JobStatusProcessing)
}

func (j *JobState) Complete(embeddingCount int) error {
	if err := j.transition(JobStatusCompleted); err != nil {
		return err
	}
	j.EmbeddingCount = embeddingCount
	j.ErrorType = ""
	j.ErrorMessage = ""
	return nil
}

func (j *JobState) Fail(errType JobErrorType, message string) error {
	if err := j.transition(JobStatusFailed); err != nil {
		return err
	}
	j.Attempts++
	j.ErrorType = errType
	j.ErrorMessage = message
	return nil
}

// Reset puts a resubmitted job back to pending. Attempts are kept.
func (j *JobState) Reset() {
	j.Status = JobStatusPending
	j.ErrorType = ""
	j.ErrorMessage = ""
	j.EmbeddingCount = 0
	j.UpdatedAt = time.Now()
}

// IsStale reports whether an unfinished job has not moved for at least
// window. A zero window disables staleness.
func (j *JobState) IsStale(now time.Time, window time.Duration) bool {
	if window <= 0 || j.Status.IsTerminal() {
		return false
	}
	return now.Sub(j.UpdatedAt) >= window
}

// CrawlOptions are the per-submission crawl settings.
type CrawlOptions struct {
	FollowLinks  bool     `json:"follow_links"`
	Selector     string   `json:"selector,omitempty"`
	IncludePaths []string `json:"include_paths,omitempty"`
	ExcludePaths []string `json:"exclude_paths,omitempty"`
	MaxPages     int      `json:"max_pages"`
	MaxDepth     int      `json:"max_depth"`
}

// CrawlJob tracks crawling a seed URL into external_url embeddings.
type CrawlJob struct {
	Id            int64
	Key           string
	URL           string
	NormalizedURL string
	Options       CrawlOptions
	PagesCrawled  int
	JobState
}

// PdfJob tracks extracting an uploaded PDF into pdf embeddings.
type PdfJob struct {
	Id       int64
	Key      string
	FileName string
	FilePath string
	FileSize int64
	JobState
}
