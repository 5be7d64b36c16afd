package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/repository/contract"
	"ai-supportdesk-be/pkg/embedding"
	"ai-supportdesk-be/pkg/extract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBlobStore keeps blobs in a map and counts deletes.
type memBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Put(data []byte, extension string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	if extension != "" {
		id += "." + extension
	}
	s.blobs[id] = data
	return id, nil
}

func (s *memBlobStore) Get(storageId string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[storageId]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", storageId)
	}
	return data, nil
}

func (s *memBlobStore) Delete(storageId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, storageId)
	s.deleted = append(s.deleted, storageId)
	return nil
}

func (s *memBlobStore) URL(storageId string) string {
	return "http://localhost/uploads/" + storageId
}

func (s *memBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// stubEmbedder returns a fixed unit vector and records the inputs.
type stubEmbedder struct {
	mu    sync.Mutex
	calls []string
}

func (e *stubEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, taskType)
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

// recordingIngestPublisher captures queued entry ids.
type recordingIngestPublisher struct {
	mu      sync.Mutex
	entries []uuid.UUID
}

func (p *recordingIngestPublisher) PublishIngestEntry(entryId uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entryId)
	return nil
}

type knowledgeFixture struct {
	svc       *knowledgeService
	factory   *memFactory
	blobs     *memBlobStore
	embedder  *stubEmbedder
	publisher *recordingIngestPublisher
}

func newKnowledgeFixture(t *testing.T) *knowledgeFixture {
	t.Helper()
	factory := newMemFactory()
	blobs := newMemBlobStore()
	embedder := &stubEmbedder{}
	publisher := &recordingIngestPublisher{}
	svc := NewKnowledgeService(factory, blobs, embedder, publisher, nopLogger{}).(*knowledgeService)
	return &knowledgeFixture{svc: svc, factory: factory, blobs: blobs, embedder: embedder, publisher: publisher}
}

func TestAddFileQueuesIngestion(t *testing.T) {
	f := newKnowledgeFixture(t)

	res, err := f.svc.AddFile(context.Background(), "org-1", "faq.txt", "text/plain", "support", []byte("refund policy"))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, constant.KnowledgeStatusPending, res.Status)
	assert.Equal(t, []uuid.UUID{res.Id}, f.publisher.entries)
	assert.Equal(t, 1, f.blobs.count())
}

func TestAddFileIsIdempotentPerNamespace(t *testing.T) {
	f := newKnowledgeFixture(t)
	content := []byte("refund policy")

	first, err := f.svc.AddFile(context.Background(), "org-1", "faq.txt", "text/plain", "", content)
	require.NoError(t, err)

	// Same bytes, same namespace: no new entry, no new blob, no new job.
	second, err := f.svc.AddFile(context.Background(), "org-1", "faq-copy.txt", "text/plain", "", content)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, f.publisher.entries, 1)
	assert.Equal(t, 1, f.blobs.count())

	// Same bytes in another namespace is a distinct entry.
	other, err := f.svc.AddFile(context.Background(), "org-2", "faq.txt", "text/plain", "", content)
	require.NoError(t, err)
	assert.True(t, other.Created)
	assert.NotEqual(t, first.Id, other.Id)
}

func TestAddFileRejectsUnsupportedMime(t *testing.T) {
	f := newKnowledgeFixture(t)

	_, err := f.svc.AddFile(context.Background(), "org-1", "movie.mp4", "video/mp4", "", []byte{1, 2, 3})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
	assert.Equal(t, 0, f.blobs.count())
	assert.Empty(t, f.publisher.entries)

	require.False(t, extract.Supported("video/mp4"))
}

func TestAddFileRejectsEmptyFile(t *testing.T) {
	f := newKnowledgeFixture(t)

	_, err := f.svc.AddFile(context.Background(), "org-1", "empty.txt", "text/plain", "", nil)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
}

func TestDeleteFileEnforcesNamespace(t *testing.T) {
	f := newKnowledgeFixture(t)

	res, err := f.svc.AddFile(context.Background(), "org-1", "faq.txt", "text/plain", "", []byte("doc"))
	require.NoError(t, err)

	err = f.svc.DeleteFile(context.Background(), "org-2", res.Id)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	require.NoError(t, f.svc.DeleteFile(context.Background(), "org-1", res.Id))
	assert.Equal(t, 0, f.blobs.count())

	err = f.svc.DeleteFile(context.Background(), "org-1", res.Id)
	require.Error(t, err)
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestListFilesFiltersByCategory(t *testing.T) {
	f := newKnowledgeFixture(t)

	_, err := f.svc.AddFile(context.Background(), "org-1", "a.txt", "text/plain", "billing", []byte("a"))
	require.NoError(t, err)
	_, err = f.svc.AddFile(context.Background(), "org-1", "b.txt", "text/plain", "shipping", []byte("b"))
	require.NoError(t, err)
	_, err = f.svc.AddFile(context.Background(), "org-2", "c.txt", "text/plain", "billing", []byte("c"))
	require.NoError(t, err)

	all, err := f.svc.ListFiles(context.Background(), "org-1", "", "", 10)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	billing, err := f.svc.ListFiles(context.Background(), "org-1", "billing", "", 10)
	require.NoError(t, err)
	require.Len(t, billing.Items, 1)
	assert.Equal(t, "a.txt", billing.Items[0].Key)
	assert.Equal(t, "billing", billing.Items[0].Category)
}

func TestSearchStaysInsideNamespace(t *testing.T) {
	f := newKnowledgeFixture(t)

	f.factory.store.searchResults = []*contract.ScoredKnowledgeChunk{
		{
			Chunk:      &entity.KnowledgeChunk{Namespace: "org-1", Content: "our refund window is 30 days"},
			EntryTitle: "faq.txt",
			Similarity: 0.91,
		},
		{
			Chunk:      &entity.KnowledgeChunk{Namespace: "org-2", Content: "secret pricing sheet"},
			EntryTitle: "pricing.txt",
			Similarity: 0.95,
		},
	}

	hits, err := f.svc.Search(context.Background(), "org-1", "refunds", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "faq.txt", hits[0].Title)
	assert.Equal(t, "our refund window is 30 days", hits[0].Content)
	assert.InDelta(t, 0.91, hits[0].Similarity, 1e-9)

	assert.Equal(t, []string{"org-1"}, f.factory.store.searchedNS)
	assert.Equal(t, []string{embedding.TaskTypeRetrievalQuery}, f.embedder.calls)
}
