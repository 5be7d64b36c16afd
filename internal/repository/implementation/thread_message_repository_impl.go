package implementation

import (
	"context"

	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/mapper"
	"ai-supportdesk-be/internal/model"
	"ai-supportdesk-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThreadMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewThreadMessageRepository(db *gorm.DB) contract.ThreadMessageRepository {
	return &ThreadMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ThreadMessageRepositoryImpl) Append(ctx context.Context, message *entity.ThreadMessage) error {
	// Seq assignment and insert must see a consistent MAX(seq). Concurrent
	// appenders to the same thread serialize on the (thread_id, seq) unique
	// index; a conflict means the caller's transaction retries at request
	// level, which matches the no-mid-flight-resume policy.
	maxSeq, err := r.MaxSeq(ctx, message.ThreadId)
	if err != nil {
		return err
	}
	message.Seq = maxSeq + 1

	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *ThreadMessageRepositoryImpl) ListAfter(ctx context.Context, threadId uuid.UUID, afterSeq int64, limit int) ([]*entity.ThreadMessage, error) {
	var models []*model.ThreadMessage
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadId).
		Where("seq > ?", afterSeq).
		Order("seq ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.ThreadMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *ThreadMessageRepositoryImpl) MaxSeq(ctx context.Context, threadId uuid.UUID) (int64, error) {
	var maxSeq int64
	err := r.db.WithContext(ctx).
		Model(&model.ThreadMessage{}).
		Where("thread_id = ?", threadId).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq, nil
}
