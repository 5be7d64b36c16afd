package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByOrganizationID scopes a query to one tenant.
type ByOrganizationID struct {
	OrganizationID string
}

func (s ByOrganizationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("organization_id = ?", s.OrganizationID)
}

// ByContactSessionID scopes conversations to one visitor session.
type ByContactSessionID struct {
	ContactSessionID uuid.UUID
}

func (s ByContactSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("contact_session_id = ?", s.ContactSessionID)
}

// ByThreadID looks a conversation up by its thread handle. Used by the agent
// tool path, which only holds the thread id.
type ByThreadID struct {
	ThreadID uuid.UUID
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}

// ByStatus filters conversations by status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// CreatedBefore is the keyset-pagination cursor: rows strictly older than the
// given point, tie-broken by id so equal timestamps cannot repeat.
type CreatedBefore struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(created_at, id) < (?, ?)", s.CreatedAt, s.ID)
}
