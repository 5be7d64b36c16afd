package service

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"ai-supportdesk-be/internal/dto"
)

// IPublisherService queues knowledge entries for asynchronous ingestion.
type IPublisherService interface {
	PublishIngestEntry(entryId uuid.UUID) error
}

type publisherService struct {
	topic  string
	pubSub *gochannel.GoChannel
}

func NewPublisherService(topic string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topic:  topic,
		pubSub: pubSub,
	}
}

func (s *publisherService) PublishIngestEntry(entryId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIngestEntryMessage{EntryId: entryId})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(s.topic, msg)
}
