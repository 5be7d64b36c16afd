// Package agent runs the support-agent tool loop for visitor messages.
package agent

import (
	"context"

	"ai-supportdesk-be/pkg/threadlog"

	"github.com/google/uuid"
)

// Conversation is the slice of conversation state the dispatcher needs.
type Conversation struct {
	Id             uuid.UUID
	OrganizationId string
	ThreadId       uuid.UUID
	Status         string
}

// Transcript appends turns to and reads history from a conversation thread.
type Transcript interface {
	Append(ctx context.Context, threadId uuid.UUID, role, content, authorName string) error
	// History returns the most recent raw entries in log order.
	History(ctx context.Context, threadId uuid.UUID, limit int) ([]threadlog.Message, error)
}

// ConversationControls exposes the by-thread state transitions the agent
// may trigger.
type ConversationControls interface {
	// MarkEscalated is the silent status flip applied before a model
	// call; it writes no announcement turn.
	MarkEscalated(ctx context.Context, threadId uuid.UUID) error

	// Escalate and Resolve are the tool-invoked transitions, announcement
	// included.
	Escalate(ctx context.Context, threadId uuid.UUID) error
	Resolve(ctx context.Context, threadId uuid.UUID) error
}

// SearchHit is one ranked knowledge base result.
type SearchHit struct {
	Title      string
	Content    string
	Similarity float64
}

// KnowledgeSearcher runs namespace-scoped knowledge base searches.
type KnowledgeSearcher interface {
	Search(ctx context.Context, namespace, query string, limit int) ([]SearchHit, error)
}
