package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation every domain event uses.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
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

const (
	TypeDocumentIngested = "DOCUMENT_INGESTED"
	TypeDocumentDeleted  = "DOCUMENT_DELETED"
	TypeQuestionAnswered = "QUESTION_ANSWERED"
)

func NewDocumentIngested(source string, pages, chunks int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"source": source,
			"pages":  pages,
			"chunks": chunks,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(source string, chunksRemoved int64) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"source":         source,
			"chunks_removed": chunksRemoved,
		},
		OccurredAt: time.Now(),
	}
}

func NewQuestionAnswered(runID string, intent string, retries int, unverified bool) Event {
	return BaseEvent{
		Type: TypeQuestionAnswered,
		Data: map[string]interface{}{
			"run_id":     runID,
			"intent":     intent,
			"retries":    retries,
			"unverified": unverified,
		},
		OccurredAt: time.Now(),
	}
}
