package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeEntry struct {
	Id          uuid.UUID
	Namespace   string
	Key         string
	Title       string
	ContentHash string
	Status      string
	MimeType    string
	SizeBytes   int64
	Metadata    map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type KnowledgeChunk struct {
	Id         uuid.UUID
	EntryId    uuid.UUID
	Namespace  string
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}
