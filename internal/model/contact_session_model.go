package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ContactSession is an anonymous visitor identity. Expiry is logical: rows
// are never deleted, they just stop validating once expires_at passes.
type ContactSession struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId string            `gorm:"type:varchar(64);not null;index"`
	Name           string            `gorm:"type:varchar(255);not null"`
	Email          string            `gorm:"type:varchar(255);not null"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	ExpiresAt      time.Time         `gorm:"not null;index"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"`
}

func (ContactSession) TableName() string {
	return "contact_sessions"
}
