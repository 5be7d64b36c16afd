package entity

import (
	"time"

	"github.com/google/uuid"
)

type PluginCredential struct {
	Id               uuid.UUID
	OrganizationId   string
	Service          string
	SecretCiphertext []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
