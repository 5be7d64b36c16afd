package contract

import (
	"context"

	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/repository/specification"
)

type ContactSessionRepository interface {
	Create(ctx context.Context, session *entity.ContactSession) error
	Update(ctx context.Context, session *entity.ContactSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContactSession, error)
}
