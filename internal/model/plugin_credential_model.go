package model

import (
	"time"

	"github.com/google/uuid"
)

// PluginCredential stores one encrypted third-party credential per
// (organization, service). The plaintext never touches the database.
type PluginCredential struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_plugin_credentials_org_service,priority:1"`
	Service          string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_plugin_credentials_org_service,priority:2"`
	SecretCiphertext []byte    `gorm:"type:bytea;not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (PluginCredential) TableName() string {
	return "plugin_credentials"
}
