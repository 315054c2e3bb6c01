package service

import (
	"context"
	"encoding/json"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IPublisherService enqueues ingestion jobs for the background worker.
type IPublisherService interface {
	Enqueue(ctx context.Context, kind entity.JobKind, key string) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Enqueue(ctx context.Context, kind entity.JobKind, key string) error {
	payload, err := json.Marshal(dto.JobMessage{Kind: string(kind), Key: key})
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}
