package service

import (
	"context"
	"fmt"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/pkg/events"
	pktNats "ai-shopassist-be/pkg/nats"
)

const contentEventsDurable = "shopassist-ingestion"

// EventSubscriber is the part of the bus the content event service needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, durableName string, eventTypes []string, handler pktNats.EventHandler) error
}

// ContentEventService keeps stored chunks in step with CMS changes.
type ContentEventService struct {
	subscriber EventSubscriber
	ingestion  IIngestionService
	logger     logger.ILogger
}

func NewContentEventService(subscriber EventSubscriber, ingestion IIngestionService, log logger.ILogger) *ContentEventService {
	return &ContentEventService{
		subscriber: subscriber,
		ingestion:  ingestion,
		logger:     log,
	}
}

// Start begins listening to CMS events.
func (s *ContentEventService) Start(ctx context.Context) error {
	err := s.subscriber.Subscribe(ctx, contentEventsDurable,
		[]string{events.ContentDeleted, events.ContentUpdated, events.SettingsChanged},
		s.HandleEvent,
	)
	if err != nil {
		s.logger.Error("EVENTS", "Failed to start content event subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("EVENTS", "Content event service started", nil)
	return nil
}

func (s *ContentEventService) HandleEvent(ctx context.Context, event events.Event) error {
	s.logger.Debug("EVENTS", fmt.Sprintf("Processing event: %s", event.EventType()), event.Payload())

	switch event.EventType() {
	case events.SettingsChanged:
		return s.ingestion.HandleSettingsChanged(ctx)

	case events.ContentDeleted, events.ContentUpdated:
		rawType, id, err := events.ContentRef(event)
		if err != nil {
			return fmt.Errorf("%w: %v", pktNats.ErrMalformedEvent, err)
		}
		contentType := entity.ParseContentType(rawType)
		if event.EventType() == events.ContentDeleted {
			_, err = s.ingestion.HandleContentDeleted(ctx, contentType, id)
			return err
		}
		return s.ingestion.HandleContentUpdated(ctx, contentType, id)

	default:
		s.logger.Debug("EVENTS", "Ignoring event", map[string]interface{}{"type": event.EventType()})
		return nil
	}
}
