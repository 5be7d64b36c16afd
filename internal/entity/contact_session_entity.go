package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContactSession struct {
	Id             uuid.UUID
	OrganizationId string
	Name           string
	Email          string
	Metadata       map[string]interface{}
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the session is past its logical lifetime.
func (s *ContactSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
