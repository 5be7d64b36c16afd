package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/repository/specification"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/pkg/agent"
	"ai-supportdesk-be/pkg/blob"
	"ai-supportdesk-be/pkg/embedding"
	"ai-supportdesk-be/pkg/extract"

	"github.com/google/uuid"
)

// IKnowledgeService manages the per-organization document store the agent
// searches. The organization id doubles as the vector namespace.
type IKnowledgeService interface {
	AddFile(ctx context.Context, organizationId, filename, mimeType, category string, data []byte) (*dto.AddFileResponse, error)
	DeleteFile(ctx context.Context, organizationId string, entryId uuid.UUID) error
	ListFiles(ctx context.Context, organizationId, category, cursor string, numItems int) (*dto.ListKnowledgeEntriesResponse, error)

	// Search satisfies agent.KnowledgeSearcher.
	Search(ctx context.Context, namespace, query string, limit int) ([]agent.SearchHit, error)
}

type knowledgeService struct {
	uowFactory        unitofwork.RepositoryFactory
	blobStore         blob.Store
	embeddingProvider embedding.EmbeddingProvider
	publisher         IPublisherService
	logger            logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	blobStore blob.Store,
	embeddingProvider embedding.EmbeddingProvider,
	publisher IPublisherService,
	logger logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:        uowFactory,
		blobStore:         blobStore,
		embeddingProvider: embeddingProvider,
		publisher:         publisher,
		logger:            logger,
	}
}

func (s *knowledgeService) AddFile(ctx context.Context, organizationId, filename, mimeType, category string, data []byte) (*dto.AddFileResponse, error) {
	if len(data) == 0 {
		return nil, apperror.BadRequest("File is empty")
	}
	if !extract.Supported(mimeType) {
		return nil, apperror.BadRequest("Unsupported file type: " + mimeType)
	}

	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.KnowledgeEntryRepository().FindOne(ctx,
		specification.ByNamespace{Namespace: organizationId},
		specification.ByContentHash{Hash: contentHash},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.AddFileResponse{Id: existing.Id, Created: false, Status: existing.Status}, nil
	}

	storageId, err := s.blobStore.Put(data, strings.TrimPrefix(filepath.Ext(filename), "."))
	if err != nil {
		return nil, err
	}

	entry := &entity.KnowledgeEntry{
		Id:          uuid.New(),
		Namespace:   organizationId,
		Key:         filename,
		Title:       filename,
		ContentHash: contentHash,
		Status:      constant.KnowledgeStatusPending,
		MimeType:    mimeType,
		SizeBytes:   int64(len(data)),
		Metadata: map[string]interface{}{
			"storage_id": storageId,
			"category":   category,
		},
		CreatedAt: time.Now(),
	}

	if err := uow.KnowledgeEntryRepository().Create(ctx, entry); err != nil {
		// A concurrent upload of the same bytes may have won the unique
		// (namespace, content_hash) race. The fresh blob is ours to clean up.
		if delErr := s.blobStore.Delete(storageId); delErr != nil {
			s.logger.Warn("KnowledgeService", "Failed to delete orphaned blob", map[string]interface{}{
				"storage_id": storageId,
				"error":      delErr.Error(),
			})
		}

		winner, findErr := uow.KnowledgeEntryRepository().FindOne(ctx,
			specification.ByNamespace{Namespace: organizationId},
			specification.ByContentHash{Hash: contentHash},
		)
		if findErr == nil && winner != nil {
			return &dto.AddFileResponse{Id: winner.Id, Created: false, Status: winner.Status}, nil
		}
		return nil, err
	}

	if err := s.publisher.PublishIngestEntry(entry.Id); err != nil {
		s.logger.Error("KnowledgeService", "Failed to publish ingest job", map[string]interface{}{
			"entry_id": entry.Id.String(),
			"error":    err.Error(),
		})
		return nil, err
	}

	s.logger.Info("KnowledgeService", "File accepted for ingestion", map[string]interface{}{
		"entry_id":  entry.Id.String(),
		"namespace": organizationId,
		"mime_type": mimeType,
		"size":      entry.SizeBytes,
	})

	return &dto.AddFileResponse{Id: entry.Id, Created: true, Status: entry.Status}, nil
}

func (s *knowledgeService) DeleteFile(ctx context.Context, organizationId string, entryId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	entry, err := uow.KnowledgeEntryRepository().FindOne(ctx, specification.ByID{ID: entryId})
	if err != nil {
		return err
	}
	if entry == nil {
		return apperror.NotFound("Knowledge entry not found")
	}
	if entry.Namespace != organizationId {
		return apperror.Unauthorized("Entry belongs to another organization")
	}

	if storageId, ok := entry.Metadata["storage_id"].(string); ok && storageId != "" {
		if err := s.blobStore.Delete(storageId); err != nil {
			s.logger.Warn("KnowledgeService", "Failed to delete blob", map[string]interface{}{
				"storage_id": storageId,
				"error":      err.Error(),
			})
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.KnowledgeChunkRepository().DeleteByEntryId(ctx, entry.Id); err != nil {
		return err
	}
	if err := uow.KnowledgeEntryRepository().Delete(ctx, entry.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("KnowledgeService", "Knowledge entry deleted", map[string]interface{}{
		"entry_id":  entry.Id.String(),
		"namespace": organizationId,
	})
	return nil
}

func (s *knowledgeService) ListFiles(ctx context.Context, organizationId, category, cursor string, numItems int) (*dto.ListKnowledgeEntriesResponse, error) {
	if numItems <= 0 {
		numItems = 20
	}
	if numItems > 100 {
		numItems = 100
	}

	specs := []specification.Specification{
		specification.ByNamespace{Namespace: organizationId},
	}
	if category != "" {
		specs = append(specs, specification.ByCategory{Category: category})
	}
	if cursor != "" {
		createdAt, id, err := decodeConversationCursor(cursor)
		if err != nil {
			return nil, apperror.BadRequest("Malformed cursor")
		}
		specs = append(specs, specification.CreatedBefore{CreatedAt: createdAt, ID: id})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Limit{N: numItems + 1},
	)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.KnowledgeEntryRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	isDone := true
	if len(entries) > numItems {
		isDone = false
		entries = entries[:numItems]
	}

	items := make([]*dto.KnowledgeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, s.entryToResponse(entry))
	}

	continueCursor := ""
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		continueCursor = encodeConversationCursor(last.CreatedAt, last.Id)
	}

	return &dto.ListKnowledgeEntriesResponse{
		Items:          items,
		ContinueCursor: continueCursor,
		IsDone:         isDone,
	}, nil
}

func (s *knowledgeService) Search(ctx context.Context, namespace, query string, limit int) ([]agent.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	res, err := s.embeddingProvider.Generate(query, embedding.TaskTypeRetrievalQuery)
	if err != nil {
		return nil, apperror.Upstream("Failed to embed search query", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeChunkRepository().SearchSimilar(ctx, namespace, res.Embedding.Values, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]agent.SearchHit, 0, len(scored))
	for _, row := range scored {
		hits = append(hits, agent.SearchHit{
			Title:      row.EntryTitle,
			Content:    row.Chunk.Content,
			Similarity: row.Similarity,
		})
	}
	return hits, nil
}

func (s *knowledgeService) entryToResponse(entry *entity.KnowledgeEntry) *dto.KnowledgeEntryResponse {
	resp := &dto.KnowledgeEntryResponse{
		Id:        entry.Id,
		Key:       entry.Key,
		Title:     entry.Title,
		Status:    entry.Status,
		MimeType:  entry.MimeType,
		SizeBytes: entry.SizeBytes,
		CreatedAt: entry.CreatedAt,
	}
	if category, ok := entry.Metadata["category"].(string); ok {
		resp.Category = category
	}
	if storageId, ok := entry.Metadata["storage_id"].(string); ok && storageId != "" {
		resp.URL = s.blobStore.URL(storageId)
	}
	return resp
}
