package contract

import (
	"context"

	"ai-supportdesk-be/internal/entity"

	"github.com/google/uuid"
)

type PluginCredentialRepository interface {
	Create(ctx context.Context, credential *entity.PluginCredential) error
	Update(ctx context.Context, credential *entity.PluginCredential) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByOrgAndService(ctx context.Context, organizationId, service string) (*entity.PluginCredential, error)
}
