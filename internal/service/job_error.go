package service

import (
	"errors"
	"fmt"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/pkg/crawler"
	"ai-shopassist-be/pkg/embedding"
	pdfextractor "ai-shopassist-be/pkg/extractor/pdf"
)

// JobError is a terminal ingestion failure with its classification.
type JobError struct {
	Type entity.JobErrorType
	Err  error
}

func (e *JobError) Error() string {
	if e.Err == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

func newJobError(errType entity.JobErrorType, err error) *JobError {
	return &JobError{Type: errType, Err: err}
}

// classifyJobError maps a lower level failure to a job error type.
func classifyJobError(err error) *JobError {
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr
	}

	var protection *crawler.ProtectionError
	var fetchErr *crawler.FetchError
	var embedErr *embedding.Error
	switch {
	case errors.As(err, &protection):
		return newJobError(entity.JobErrorBotProtection, err)
	case errors.As(err, &fetchErr), errors.Is(err, crawler.ErrInvalidURL):
		return newJobError(entity.JobErrorFetchFailed, err)
	case errors.Is(err, crawler.ErrNoContent),
		errors.Is(err, pdfextractor.ErrNoText),
		errors.Is(err, pdfextractor.ErrInsufficientContent):
		return newJobError(entity.JobErrorNoContent, err)
	case errors.Is(err, pdfextractor.ErrUnreadable):
		return newJobError(entity.JobErrorUnreadableFile, err)
	case errors.As(err, &embedErr):
		return newJobError(entity.JobErrorEmbeddingFailed, err)
	case errors.Is(err, ErrNothingStored):
		return newJobError(entity.JobErrorStorageFailed, err)
	default:
		return newJobError(entity.JobErrorInternal, err)
	}
}

var userMessages = map[entity.JobErrorType]string{
	entity.JobErrorBotProtection:   "This website blocks automated access (bot protection), so it cannot be crawled. Try a different URL or ask the site owner to allow our crawler.",
	entity.JobErrorFetchFailed:     "The page could not be downloaded. Check that the URL is reachable and try again.",
	entity.JobErrorNoContent:       "No readable text was found. Scanned or image-only documents and empty pages cannot be used.",
	entity.JobErrorUnreadableFile:  "The file could not be read. Make sure it is a valid, unencrypted PDF.",
	entity.JobErrorEmbeddingFailed: "The AI service could not process the content. Check the API key and try again later.",
	entity.JobErrorStorageFailed:   "The content could not be saved. Try again later.",
	entity.JobErrorInternal:        "Something went wrong while processing this job. Try again later.",
}

// UserMessage is the human readable status line for a job.
func UserMessage(state entity.JobState) string {
	switch state.Status {
	case entity.JobStatusPending:
		return "Waiting to be processed."
	case entity.JobStatusProcessing:
		return "Processing, this may take a few minutes."
	case entity.JobStatusCompleted:
		return fmt.Sprintf("Completed: %d chunks ready for the assistant.", state.EmbeddingCount)
	case entity.JobStatusFailed:
		if msg, ok := userMessages[state.ErrorType]; ok {
			return msg
		}
		return userMessages[entity.JobErrorInternal]
	default:
		return ""
	}
}
