package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/pkg/events"
)

var ErrJobNotFound = errors.New("job not found")

// EventPublisher announces finished jobs on the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// jobKey is the deterministic job identity for a normalised input.
func jobKey(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

func jobStatus(kind entity.JobKind, key, source string, state entity.JobState) *dto.JobStatusResponse {
	return &dto.JobStatusResponse{
		JobKey:         key,
		Kind:           string(kind),
		Source:         source,
		Status:         string(state.Status),
		ErrorType:      string(state.ErrorType),
		UserMessage:    UserMessage(state),
		EmbeddingCount: state.EmbeddingCount,
		Attempts:       state.Attempts,
		CreatedAt:      state.CreatedAt,
		UpdatedAt:      state.UpdatedAt,
	}
}

func announceFinished(ctx context.Context, publisher EventPublisher, log logger.ILogger, kind entity.JobKind, key string, state entity.JobState) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(events.JobFinished, map[string]interface{}{
		"kind":            string(kind),
		"job_key":         key,
		"status":          string(state.Status),
		"error_type":      string(state.ErrorType),
		"embedding_count": state.EmbeddingCount,
	})
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("JOBS", "Failed to announce finished job", map[string]interface{}{
			"kind":    string(kind),
			"job_key": key,
			"error":   err.Error(),
		})
	}
}
