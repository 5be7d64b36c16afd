package service

import (
	"context"
	"encoding/json"
	"testing"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/pkg/embedding"
	"ai-supportdesk-be/pkg/extract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingestMessage(t *testing.T, entryId uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishIngestEntryMessage{EntryId: entryId})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func newConsumerForTest(f *knowledgeFixture, publisher *recordingPublisher) *knowledgeConsumerService {
	return &knowledgeConsumerService{
		topicName:         "ingest",
		uowFactory:        f.factory,
		blobStore:         f.blobs,
		extractor:         extract.NewExtractor(nil, nil),
		embeddingProvider: f.embedder,
		eventPublisher:    publisher,
		logger:            nopLogger{},
	}
}

func TestConsumerIngestsPlainText(t *testing.T) {
	f := newKnowledgeFixture(t)
	busEvents := &recordingPublisher{}
	consumer := newConsumerForTest(f, busEvents)

	res, err := f.svc.AddFile(context.Background(), "org-1", "faq.txt", "text/plain", "", []byte("our refund window is 30 days"))
	require.NoError(t, err)

	consumer.processMessage(context.Background(), ingestMessage(t, res.Id))

	uow := f.factory.NewUnitOfWork(context.Background())
	entry, err := uow.KnowledgeEntryRepository().FindOne(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, constant.KnowledgeStatusReady, entry.Status)

	f.factory.store.mu.Lock()
	chunks := f.factory.store.chunks[res.Id]
	f.factory.store.mu.Unlock()
	require.Len(t, chunks, 1)
	assert.Equal(t, "org-1", chunks[0].Namespace)
	assert.Equal(t, "our refund window is 30 days", chunks[0].Content)
	assert.Equal(t, []float32{1, 0, 0}, chunks[0].Embedding)

	assert.Equal(t, []string{embedding.TaskTypeRetrievalDocument}, f.embedder.calls)
	require.Len(t, busEvents.types(), 1)
	assert.Equal(t, "KNOWLEDGE_ENTRY_READY", busEvents.types()[0])
}

func TestConsumerMarksErrorWhenBlobMissing(t *testing.T) {
	f := newKnowledgeFixture(t)
	busEvents := &recordingPublisher{}
	consumer := newConsumerForTest(f, busEvents)

	res, err := f.svc.AddFile(context.Background(), "org-1", "faq.txt", "text/plain", "", []byte("doc"))
	require.NoError(t, err)

	// Blob vanishes before the worker runs.
	f.factory.store.mu.Lock()
	entry := f.factory.store.entries[res.Id]
	f.factory.store.mu.Unlock()
	storageId, _ := entry.Metadata["storage_id"].(string)
	require.NoError(t, f.blobs.Delete(storageId))

	consumer.processMessage(context.Background(), ingestMessage(t, res.Id))

	f.factory.store.mu.Lock()
	updated := f.factory.store.entries[res.Id]
	f.factory.store.mu.Unlock()
	assert.Equal(t, constant.KnowledgeStatusError, updated.Status)

	require.Len(t, busEvents.types(), 1)
	assert.Equal(t, "KNOWLEDGE_ENTRY_FAILED", busEvents.types()[0])
}

func TestConsumerIgnoresDeletedEntry(t *testing.T) {
	f := newKnowledgeFixture(t)
	consumer := newConsumerForTest(f, &recordingPublisher{})

	// Must not panic or mutate anything.
	consumer.processMessage(context.Background(), ingestMessage(t, uuid.New()))

	f.factory.store.mu.Lock()
	defer f.factory.store.mu.Unlock()
	assert.Empty(t, f.factory.store.entries)
}
