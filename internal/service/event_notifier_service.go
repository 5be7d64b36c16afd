package service

import (
	"context"

	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/websocket"
	"ai-supportdesk-be/pkg/events"
	pktNats "ai-supportdesk-be/pkg/nats"
)

const notifierDurableName = "dashboard-notifier"

// EventNotifierService bridges the durable event bus to the websocket hub.
// Knowledge ingestion outcomes happen on a background worker, possibly on a
// different instance than the dashboard's websocket connection, so they
// travel through NATS rather than an in-process call.
type EventNotifierService struct {
	subscriber *pktNats.Subscriber
	hub        IHubNotifier
	logger     logger.ILogger
}

func NewEventNotifierService(subscriber *pktNats.Subscriber, hub IHubNotifier, log logger.ILogger) *EventNotifierService {
	return &EventNotifierService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *EventNotifierService) Start() error {
	return s.subscriber.Subscribe("events.*", notifierDurableName, s.handleEvent)
}

func (s *EventNotifierService) handleEvent(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case events.TypeKnowledgeEntryReady, events.TypeKnowledgeEntryFailed:
	default:
		// Conversation events reach the hub directly from the service layer.
		return nil
	}

	payload := event.Payload()
	namespace, _ := payload["namespace"].(string)
	if namespace == "" {
		s.logger.Warn("EventNotifier", "Knowledge event without namespace", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	s.hub.Publish(websocket.OrgTopic(namespace), websocket.Envelope{
		Type: "knowledge.status",
		Data: payload,
	})
	return nil
}
