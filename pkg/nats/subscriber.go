package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	maxDeliver = 5
	retryDelay = 5 * time.Second
)

// ErrMalformedEvent marks events that will never succeed. They are terminated
// instead of redelivered.
var ErrMalformedEvent = errors.New("malformed event")

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	js     jetstream.JetStream
	logger logger.ILogger

	mu       sync.Mutex
	consumes []jetstream.ConsumeContext
}

func NewSubscriber(ctx context.Context, nc *nats.Conn, log logger.ILogger) (*Subscriber, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if err := ensureStream(ctx, js); err != nil {
		return nil, err
	}
	return &Subscriber{js: js, logger: log}, nil
}

// Subscribe registers a handler on a durable consumer filtered to the given
// event types. Handler errors are redelivered with a delay, up to maxDeliver.
func (s *Subscriber) Subscribe(ctx context.Context, durableName string, eventTypes []string, handler EventHandler) error {
	subjects := make([]string, 0, len(eventTypes))
	for _, t := range eventTypes {
		subjects = append(subjects, events.SubjectPrefix+t)
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:        durableName,
		FilterSubjects: subjects,
		AckPolicy:      jetstream.AckExplicitPolicy,
		MaxDeliver:     maxDeliver,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		s.dispatch(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.mu.Lock()
	s.consumes = append(s.consumes, consumeCtx)
	s.mu.Unlock()

	s.logger.Info("NATS", "Subscribed to event bus", map[string]interface{}{
		"durable":  durableName,
		"subjects": subjects,
	})
	return nil
}

func (s *Subscriber) dispatch(ctx context.Context, msg jetstream.Msg, handler EventHandler) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		s.logger.Error("NATS", "Dropping undecodable event", map[string]interface{}{
			"subject": msg.Subject(),
			"error":   err.Error(),
		})
		_ = msg.Term()
		return
	}

	occurredAt := time.Now()
	if meta, err := msg.Metadata(); err == nil {
		occurredAt = meta.Timestamp
	}

	event := events.BaseEvent{
		Type:       events.TypeFromSubject(msg.Subject()),
		Data:       payload,
		OccurredAt: occurredAt,
	}

	if err := handler(ctx, event); err != nil {
		if errors.Is(err, ErrMalformedEvent) {
			s.logger.Error("NATS", "Dropping malformed event", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
			_ = msg.Term()
			return
		}
		s.logger.Warn("NATS", "Event handler failed, scheduling redelivery", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
		_ = msg.NakWithDelay(retryDelay)
		return
	}

	_ = msg.Ack()
}

// Close stops every consumer started by this subscriber.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.consumes {
		c.Stop()
	}
	s.consumes = nil
}
