package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	ContactSessionId uuid.UUID `json:"contact_session_id" validate:"required"`
}

type CreateConversationResponse struct {
	Id       uuid.UUID `json:"id"`
	ThreadId uuid.UUID `json:"thread_id"`
	Status   string    `json:"status"`
}

// ConversationForVisitorResponse is the reduced view returned on the widget
// surface.
type ConversationForVisitorResponse struct {
	Id       uuid.UUID `json:"id"`
	ThreadId uuid.UUID `json:"thread_id"`
	Status   string    `json:"status"`
}

type ConversationForVisitorItem struct {
	Id          uuid.UUID              `json:"id"`
	ThreadId    uuid.UUID              `json:"thread_id"`
	Status      string                 `json:"status"`
	LastMessage *ThreadMessageResponse `json:"last_message,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type ListConversationsForVisitorResponse struct {
	Items          []*ConversationForVisitorItem `json:"items"`
	ContinueCursor string                        `json:"continue_cursor"`
	IsDone         bool                          `json:"is_done"`
}

type ConversationResponse struct {
	Id             uuid.UUID               `json:"id"`
	OrganizationId string                  `json:"organization_id"`
	ThreadId       uuid.UUID               `json:"thread_id"`
	Status         string                  `json:"status"`
	ContactSession *ContactSessionResponse `json:"contact_session,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// ConversationListItem enriches a conversation with the last visible
// message for dashboard previews.
type ConversationListItem struct {
	Id             uuid.UUID               `json:"id"`
	ThreadId       uuid.UUID               `json:"thread_id"`
	Status         string                  `json:"status"`
	ContactSession *ContactSessionResponse `json:"contact_session,omitempty"`
	LastMessage    *ThreadMessageResponse  `json:"last_message,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

type ListConversationsResponse struct {
	Items          []*ConversationListItem `json:"items"`
	ContinueCursor string                  `json:"continue_cursor"`
	IsDone         bool                    `json:"is_done"`
}

type UpdateConversationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=unresolved escalated resolved"`
}

type EnhanceResponseRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type EnhanceResponseResponse struct {
	Text string `json:"text"`
}
