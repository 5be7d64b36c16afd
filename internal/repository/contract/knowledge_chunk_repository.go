package contract

import (
	"context"

	"ai-supportdesk-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredKnowledgeChunk is a search hit with its cosine similarity and the
// owning entry's title for citation purposes.
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	EntryTitle string
	Similarity float64
}

type KnowledgeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	DeleteByEntryId(ctx context.Context, entryId uuid.UUID) error

	// SearchSimilar runs a namespace-scoped vector search. Namespace is
	// mandatory; there is deliberately no variant without it.
	SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int) ([]*ScoredKnowledgeChunk, error)
}
