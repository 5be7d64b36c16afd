package model

import (
	"time"

	"github.com/google/uuid"
)

// ThreadMessage is one turn in the append-only per-thread log. Seq is a
// per-thread monotonic counter; log order is (thread_id, seq).
type ThreadMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_thread_messages_thread_seq,priority:1"`
	Seq        int64     `gorm:"not null;uniqueIndex:idx_thread_messages_thread_seq,priority:2"`
	Role       string    `gorm:"type:varchar(16);not null"`
	Content    string    `gorm:"type:text;not null"`
	AuthorName string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ThreadMessage) TableName() string {
	return "thread_messages"
}
