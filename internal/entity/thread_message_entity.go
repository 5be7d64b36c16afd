package entity

import (
	"time"

	"github.com/google/uuid"
)

type ThreadMessage struct {
	Id         uuid.UUID
	ThreadId   uuid.UUID
	Seq        int64
	Role       string
	Content    string
	AuthorName string
	CreatedAt  time.Time
}
