package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event types published by the CMS and by the ingestion workers.
const (
	ContentDeleted  = "CONTENT_DELETED"
	ContentUpdated  = "CONTENT_UPDATED"
	SettingsChanged = "SETTINGS_CHANGED"
	JobFinished     = "INGESTION_JOB_FINISHED"
)

// SubjectPrefix is prepended to the event type to form the bus subject.
const SubjectPrefix = "events."

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONTENT_DELETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func NewEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// TypeFromSubject strips the stream prefix from a bus subject.
func TypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}

// ContentRef reads the content_type and content_id fields of a content event.
// Ids may arrive as JSON numbers or strings.
func ContentRef(event Event) (string, int64, error) {
	data := event.Payload()
	contentType, _ := data["content_type"].(string)
	if strings.TrimSpace(contentType) == "" {
		return "", 0, fmt.Errorf("event %s: missing content_type", event.EventType())
	}

	var id int64
	switch v := data["content_id"].(type) {
	case float64:
		id = int64(v)
	case int64:
		id = v
	case int:
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("event %s: invalid content_id %q", event.EventType(), v)
		}
		id = parsed
	default:
		return "", 0, fmt.Errorf("event %s: missing content_id", event.EventType())
	}
	if id < 0 {
		return "", 0, fmt.Errorf("event %s: negative content_id", event.EventType())
	}
	return contentType, id, nil
}
