package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendVisitorMessageRequest struct {
	ConversationId   uuid.UUID `json:"conversation_id" validate:"required"`
	ContactSessionId uuid.UUID `json:"contact_session_id" validate:"required"`
	Prompt           string    `json:"prompt" validate:"required"`
}

type SendOperatorMessageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type ThreadMessageResponse struct {
	Id         uuid.UUID `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	Reply *ThreadMessageResponse `json:"reply,omitempty"`
}

type ListMessagesResponse struct {
	Items          []*ThreadMessageResponse `json:"items"`
	ContinueCursor string                   `json:"continue_cursor"`
	IsDone         bool                     `json:"is_done"`
}
