package implementation

import (
	"context"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/mapper"
	"ai-supportdesk-be/internal/model"
	"ai-supportdesk-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *KnowledgeChunkRepositoryImpl) DeleteByEntryId(ctx context.Context, entryId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ?", entryId).
		Delete(&model.KnowledgeChunk{}).Error
}

type scoredChunkRow struct {
	model.KnowledgeChunk
	EntryTitle string  `gorm:"column:entry_title"`
	Similarity float64 `gorm:"column:similarity"`
}

func (r *KnowledgeChunkRepositoryImpl) SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	queryVector := pgvector.NewVector(embedding)

	var rows []scoredChunkRow
	err := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, knowledge_entries.title AS entry_title, 1 - (knowledge_chunks.embedding <=> ?) AS similarity", queryVector).
		Joins("JOIN knowledge_entries ON knowledge_entries.id = knowledge_chunks.entry_id").
		Where("knowledge_chunks.namespace = ?", namespace).
		Where("knowledge_entries.status = ?", constant.KnowledgeStatusReady).
		Where("knowledge_entries.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.ScoredKnowledgeChunk, len(rows))
	for i := range rows {
		results[i] = &contract.ScoredKnowledgeChunk{
			Chunk:      r.mapper.ChunkToEntity(&rows[i].KnowledgeChunk),
			EntryTitle: rows[i].EntryTitle,
			Similarity: rows[i].Similarity,
		}
	}
	return results, nil
}
