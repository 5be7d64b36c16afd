package mapper

import (
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) EntryToEntity(e *model.KnowledgeEntry) *entity.KnowledgeEntry {
	if e == nil {
		return nil
	}

	return &entity.KnowledgeEntry{
		Id:          e.Id,
		Namespace:   e.Namespace,
		Key:         e.Key,
		Title:       e.Title,
		ContentHash: e.ContentHash,
		Status:      e.Status,
		MimeType:    e.MimeType,
		SizeBytes:   e.SizeBytes,
		Metadata:    map[string]interface{}(e.Metadata),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (m *KnowledgeMapper) EntryToModel(e *entity.KnowledgeEntry) *model.KnowledgeEntry {
	if e == nil {
		return nil
	}

	return &model.KnowledgeEntry{
		Id:          e.Id,
		Namespace:   e.Namespace,
		Key:         e.Key,
		Title:       e.Title,
		ContentHash: e.ContentHash,
		Status:      e.Status,
		MimeType:    e.MimeType,
		SizeBytes:   e.SizeBytes,
		Metadata:    datatypes.JSONMap(e.Metadata),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (m *KnowledgeMapper) ChunkToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}

	return &entity.KnowledgeChunk{
		Id:         c.Id,
		EntryId:    c.EntryId,
		Namespace:  c.Namespace,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *KnowledgeMapper) ChunkToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}

	return &model.KnowledgeChunk{
		Id:         c.Id,
		EntryId:    c.EntryId,
		Namespace:  c.Namespace,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}
