package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId   string    `gorm:"type:varchar(64);not null;index;index:idx_conversations_status_org,priority:2"`
	ContactSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	ThreadId         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Status           string    `gorm:"type:varchar(16);not null;default:'unresolved';index:idx_conversations_status_org,priority:1"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
