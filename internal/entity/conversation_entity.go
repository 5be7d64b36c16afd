package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id               uuid.UUID
	OrganizationId   string
	ContactSessionId uuid.UUID
	ThreadId         uuid.UUID
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
