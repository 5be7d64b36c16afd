package dto

import (
	"time"

	"github.com/google/uuid"
)

type AddFileResponse struct {
	Id      uuid.UUID `json:"id"`
	Created bool      `json:"created"`
	Status  string    `json:"status"`
}

type KnowledgeEntryResponse struct {
	Id        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Category  string    `json:"category,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListKnowledgeEntriesResponse struct {
	Items          []*KnowledgeEntryResponse `json:"items"`
	ContinueCursor string                    `json:"continue_cursor"`
	IsDone         bool                      `json:"is_done"`
}

// PublishIngestEntryMessage is the watermill payload queueing an entry for
// asynchronous extraction and embedding.
type PublishIngestEntryMessage struct {
	EntryId uuid.UUID `json:"entry_id"`
}

type KnowledgeSearchResult struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}
