package contract

import (
	"context"

	"ai-supportdesk-be/internal/entity"

	"github.com/google/uuid"
)

// ThreadMessageRepository backs the append-only per-thread message log.
// Ordering inside a thread is the seq column; Append assigns it.
type ThreadMessageRepository interface {
	// Append inserts the message with the next seq for its thread. Callers
	// run it inside a transaction when atomicity with other writes matters.
	Append(ctx context.Context, message *entity.ThreadMessage) error

	// ListAfter returns up to limit messages with seq > afterSeq, in seq
	// order. afterSeq = 0 starts from the beginning.
	ListAfter(ctx context.Context, threadId uuid.UUID, afterSeq int64, limit int) ([]*entity.ThreadMessage, error)

	// MaxSeq returns the highest seq in the thread, 0 when empty.
	MaxSeq(ctx context.Context, threadId uuid.UUID) (int64, error)
}
