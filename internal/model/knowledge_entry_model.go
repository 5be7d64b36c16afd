package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KnowledgeEntry is one ingested document, scoped to a namespace (the
// organization id). The (namespace, content_hash) pair makes re-uploads of
// identical bytes idempotent.
type KnowledgeEntry struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Namespace   string            `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_knowledge_entries_ns_hash,priority:1"`
	Key         string            `gorm:"type:varchar(512);not null"`
	Title       string            `gorm:"type:varchar(512);not null"`
	ContentHash string            `gorm:"type:char(64);not null;uniqueIndex:idx_knowledge_entries_ns_hash,priority:2"`
	Status      string            `gorm:"type:varchar(16);not null;default:'pending'"`
	MimeType    string            `gorm:"type:varchar(128)"`
	SizeBytes   int64             `gorm:"not null;default:0"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `gorm:"index"`
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}
