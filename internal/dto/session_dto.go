package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateContactSessionRequest struct {
	OrganizationId string                 `json:"organization_id" validate:"required"`
	Name           string                 `json:"name" validate:"required,max=128"`
	Email          string                 `json:"email" validate:"required,email"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type CreateContactSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ContactSessionResponse struct {
	Id             uuid.UUID              `json:"id"`
	OrganizationId string                 `json:"organization_id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	ExpiresAt      time.Time              `json:"expires_at"`
	CreatedAt      time.Time              `json:"created_at"`
}
