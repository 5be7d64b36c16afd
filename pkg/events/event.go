package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONVERSATION_ESCALATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers and by
// subscribers reconstructing events off the wire.
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

// Event type codes emitted by the platform.
const (
	TypeConversationCreated   = "CONVERSATION_CREATED"
	TypeConversationEscalated = "CONVERSATION_ESCALATED"
	TypeConversationResolved  = "CONVERSATION_RESOLVED"
	TypeKnowledgeEntryReady   = "KNOWLEDGE_ENTRY_READY"
	TypeKnowledgeEntryFailed  = "KNOWLEDGE_ENTRY_FAILED"
)

// NewKnowledgeEvent builds the payload for knowledge ingestion outcomes.
func NewKnowledgeEvent(eventType, namespace, entryId string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"namespace": namespace,
			"entry_id":  entryId,
		},
		OccurredAt: time.Now(),
	}
}

// NewConversationEvent builds the standard payload for conversation
// lifecycle events.
func NewConversationEvent(eventType, organizationId, conversationId, threadId string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"organization_id": organizationId,
			"conversation_id": conversationId,
			"thread_id":       threadId,
		},
		OccurredAt: time.Now(),
	}
}
