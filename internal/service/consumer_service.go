package service

import (
	"context"
	"encoding/json"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// JobRunner executes one claimed job kind.
type JobRunner interface {
	Run(ctx context.Context, key string) error
}

// JobRecoverer re-queues jobs left unfinished by a previous process.
type JobRecoverer interface {
	Recover(ctx context.Context) (int, error)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	runners   map[entity.JobKind]JobRunner
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	runners map[entity.JobKind]JobRunner,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		runners:   runners,
		logger:    logger,
	}
}

// Consume starts the worker loop. Jobs run one at a time in arrival order.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. A job's outcome lives in its record and is
// never retried automatically; resubmission is the retry path.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.JobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("JOBS", "Failed to unmarshal job message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	runner, ok := cs.runners[entity.JobKind(payload.Kind)]
	if !ok {
		cs.logger.Error("JOBS", "No runner for job kind", map[string]interface{}{
			"kind":    payload.Kind,
			"job_key": payload.Key,
		})
		return
	}

	cs.logger.Info("JOBS", "Running job", map[string]interface{}{
		"kind":    payload.Kind,
		"job_key": payload.Key,
	})
	if err := runner.Run(ctx, payload.Key); err != nil {
		cs.logger.Error("JOBS", "Job run returned an error", map[string]interface{}{
			"kind":    payload.Kind,
			"job_key": payload.Key,
			"error":   err.Error(),
		})
	}
}
