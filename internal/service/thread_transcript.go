package service

import (
	"context"

	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/repository/contract"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/pkg/threadlog"

	"github.com/google/uuid"
)

// ThreadTranscript adapts the thread message repository to the transcript
// views the agent and the pager consume.
type ThreadTranscript struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewThreadTranscript(uowFactory unitofwork.RepositoryFactory) *ThreadTranscript {
	return &ThreadTranscript{uowFactory: uowFactory}
}

func (t *ThreadTranscript) Append(ctx context.Context, threadId uuid.UUID, role, content, authorName string) error {
	uow := t.uowFactory.NewUnitOfWork(ctx)
	message := &entity.ThreadMessage{
		ThreadId:   threadId,
		Role:       role,
		Content:    content,
		AuthorName: authorName,
	}
	return uow.ThreadMessageRepository().Append(ctx, message)
}

// History returns the newest entries of a thread in log order.
func (t *ThreadTranscript) History(ctx context.Context, threadId uuid.UUID, limit int) ([]threadlog.Message, error) {
	repo := t.uowFactory.NewUnitOfWork(ctx).ThreadMessageRepository()

	maxSeq, err := repo.MaxSeq(ctx, threadId)
	if err != nil {
		return nil, err
	}
	afterSeq := maxSeq - int64(limit)
	if afterSeq < 0 {
		afterSeq = 0
	}

	messages, err := repo.ListAfter(ctx, threadId, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	return toThreadlogMessages(messages), nil
}

// ListerFor binds a thread to the pager's Lister contract.
func (t *ThreadTranscript) ListerFor(ctx context.Context, threadId uuid.UUID) threadlog.Lister {
	return &boundThreadLister{
		repo:     t.uowFactory.NewUnitOfWork(ctx).ThreadMessageRepository(),
		threadId: threadId,
	}
}

type boundThreadLister struct {
	repo     contract.ThreadMessageRepository
	threadId uuid.UUID
}

func (l *boundThreadLister) ListAfter(ctx context.Context, afterSeq int64, limit int) ([]threadlog.Message, error) {
	messages, err := l.repo.ListAfter(ctx, l.threadId, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	return toThreadlogMessages(messages), nil
}

func toThreadlogMessages(messages []*entity.ThreadMessage) []threadlog.Message {
	out := make([]threadlog.Message, len(messages))
	for i, m := range messages {
		out[i] = threadlog.Message{
			Id:         m.Id,
			Seq:        m.Seq,
			Role:       m.Role,
			Content:    m.Content,
			AuthorName: m.AuthorName,
			CreatedAt:  m.CreatedAt,
		}
	}
	return out
}
