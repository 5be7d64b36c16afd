package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/repository/specification"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/pkg/blob"
	"ai-supportdesk-be/pkg/embedding"
	"ai-supportdesk-be/pkg/events"
	"ai-supportdesk-be/pkg/extract"
	"ai-supportdesk-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	ingestChunkSize    = 1500
	ingestChunkOverlap = 200
)

// IKnowledgeConsumerService drains the ingestion topic: extract, chunk,
// embed, store. Runs in-process next to the HTTP server.
type IKnowledgeConsumerService interface {
	Consume(ctx context.Context) error
}

type knowledgeConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	blobStore         blob.Store
	extractor         *extract.Extractor
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    IEventPublisher
	logger            logger.ILogger
}

func NewKnowledgeConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	blobStore blob.Store,
	extractor *extract.Extractor,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher IEventPublisher,
	logger logger.ILogger,
) IKnowledgeConsumerService {
	return &knowledgeConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		blobStore:         blobStore,
		extractor:         extractor,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            logger,
	}
}

func (cs *knowledgeConsumerService) Consume(ctx context.Context) error {
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

func (cs *knowledgeConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestEntryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("KnowledgeConsumer", "Failed to unmarshal ingest message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads never become valid
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	entry, err := uow.KnowledgeEntryRepository().FindOne(ctx, specification.ByID{ID: payload.EntryId})
	if err != nil {
		cs.logger.Error("KnowledgeConsumer", "Failed to load entry", map[string]interface{}{
			"entry_id": payload.EntryId.String(),
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}
	if entry == nil {
		// Deleted before we got to it.
		msg.Ack()
		return
	}
	if entry.Status == constant.KnowledgeStatusReady {
		msg.Ack()
		return
	}

	storageId, _ := entry.Metadata["storage_id"].(string)
	data, err := cs.blobStore.Get(storageId)
	if err != nil {
		cs.markError(ctx, entry, "blob read failed: "+err.Error())
		msg.Ack()
		return
	}

	text, err := cs.extractor.Extract(ctx, entry.MimeType, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedMIME) {
			cs.markError(ctx, entry, "unsupported mime type: "+entry.MimeType)
			msg.Ack()
			return
		}
		// Extraction goes through the model provider; treat as retriable.
		cs.logger.Error("KnowledgeConsumer", "Extraction failed", map[string]interface{}{
			"entry_id": entry.Id.String(),
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}

	chunks := utils.SplitText(text, ingestChunkSize, ingestChunkOverlap)

	var newChunks []*entity.KnowledgeChunk
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskTypeRetrievalDocument)
		if err != nil {
			cs.logger.Error("KnowledgeConsumer", "Embedding failed", map[string]interface{}{
				"entry_id":    entry.Id.String(),
				"chunk_index": i,
				"error":       err.Error(),
			})
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.KnowledgeChunk{
			Id:         uuid.New(),
			EntryId:    entry.Id,
			Namespace:  entry.Namespace,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  res.Embedding.Values,
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.KnowledgeChunkRepository().DeleteByEntryId(ctx, entry.Id); err != nil {
		cs.logger.Error("KnowledgeConsumer", "Failed to clear old chunks", map[string]interface{}{
			"entry_id": entry.Id.String(),
			"error":    err.Error(),
		})
		msg.Nack()
		return
	}
	if len(newChunks) > 0 {
		if err := uow.KnowledgeChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			cs.logger.Error("KnowledgeConsumer", "Failed to store chunks", map[string]interface{}{
				"entry_id": entry.Id.String(),
				"error":    err.Error(),
			})
			msg.Nack()
			return
		}
	}

	entry.Status = constant.KnowledgeStatusReady
	entry.UpdatedAt = time.Now()
	if err := uow.KnowledgeEntryRepository().Update(ctx, entry); err != nil {
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		msg.Nack()
		return
	}

	cs.publishOutcome(ctx, events.TypeKnowledgeEntryReady, entry)

	cs.logger.Info("KnowledgeConsumer", "Entry ingested", map[string]interface{}{
		"entry_id":  entry.Id.String(),
		"namespace": entry.Namespace,
		"chunks":    len(newChunks),
	})
	msg.Ack()
}

func (cs *knowledgeConsumerService) publishOutcome(ctx context.Context, eventType string, entry *entity.KnowledgeEntry) {
	if cs.eventPublisher == nil {
		return
	}
	event := events.NewKnowledgeEvent(eventType, entry.Namespace, entry.Id.String())
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("KnowledgeConsumer", "Failed to publish outcome event", map[string]interface{}{
			"entry_id": entry.Id.String(),
			"type":     eventType,
			"error":    err.Error(),
		})
	}
}

// markError flips the entry to error state. The blob stays in storage so the
// upload can be reprocessed later without a re-upload.
func (cs *knowledgeConsumerService) markError(ctx context.Context, entry *entity.KnowledgeEntry, reason string) {
	cs.logger.Error("KnowledgeConsumer", "Ingestion failed", map[string]interface{}{
		"entry_id": entry.Id.String(),
		"reason":   reason,
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	entry.Status = constant.KnowledgeStatusError
	entry.UpdatedAt = time.Now()
	if err := uow.KnowledgeEntryRepository().Update(ctx, entry); err != nil {
		cs.logger.Error("KnowledgeConsumer", "Failed to mark entry as errored", map[string]interface{}{
			"entry_id": entry.Id.String(),
			"error":    err.Error(),
		})
	}

	cs.publishOutcome(ctx, events.TypeKnowledgeEntryFailed, entry)
}
