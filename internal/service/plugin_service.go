package service

import (
	"context"
	"time"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/pkg/secrets"

	"github.com/google/uuid"
)

// IPluginService stores third-party plugin credentials sealed with the
// configured master key. Secrets are write-only from the API's point of view.
type IPluginService interface {
	UpsertSecret(ctx context.Context, organizationId, service string, payload map[string]interface{}) (*dto.PluginCredentialResponse, error)
	GetOne(ctx context.Context, organizationId, service string) (*dto.PluginCredentialResponse, error)
	Remove(ctx context.Context, organizationId, service string) error
}

type pluginService struct {
	uowFactory unitofwork.RepositoryFactory
	vault      *secrets.Vault
	logger     logger.ILogger
}

func NewPluginService(uowFactory unitofwork.RepositoryFactory, vault *secrets.Vault, logger logger.ILogger) IPluginService {
	return &pluginService{
		uowFactory: uowFactory,
		vault:      vault,
		logger:     logger,
	}
}

func knownPluginService(service string) bool {
	return service == constant.PluginServiceVapi
}

func (s *pluginService) UpsertSecret(ctx context.Context, organizationId, service string, payload map[string]interface{}) (*dto.PluginCredentialResponse, error) {
	if !knownPluginService(service) {
		return nil, apperror.BadRequest("Unknown plugin service: " + service)
	}
	if len(payload) == 0 {
		return nil, apperror.BadRequest("Secret payload is empty")
	}

	ciphertext, err := s.vault.SealJSON(payload)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PluginCredentialRepository()

	existing, err := repo.FindByOrgAndService(ctx, organizationId, service)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		existing.SecretCiphertext = ciphertext
		existing.UpdatedAt = now
		if err := repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("PluginService", "Plugin secret rotated", map[string]interface{}{
			"organization_id": organizationId,
			"service":         service,
		})
		return &dto.PluginCredentialResponse{Service: service, Stored: true, UpdatedAt: existing.UpdatedAt}, nil
	}

	credential := &entity.PluginCredential{
		Id:               uuid.New(),
		OrganizationId:   organizationId,
		Service:          service,
		SecretCiphertext: ciphertext,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Create(ctx, credential); err != nil {
		return nil, err
	}

	s.logger.Info("PluginService", "Plugin secret stored", map[string]interface{}{
		"organization_id": organizationId,
		"service":         service,
	})
	return &dto.PluginCredentialResponse{Service: service, Stored: true, UpdatedAt: credential.UpdatedAt}, nil
}

func (s *pluginService) GetOne(ctx context.Context, organizationId, service string) (*dto.PluginCredentialResponse, error) {
	if !knownPluginService(service) {
		return nil, apperror.BadRequest("Unknown plugin service: " + service)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	credential, err := uow.PluginCredentialRepository().FindByOrgAndService(ctx, organizationId, service)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return &dto.PluginCredentialResponse{Service: service, Stored: false}, nil
	}
	return &dto.PluginCredentialResponse{Service: service, Stored: true, UpdatedAt: credential.UpdatedAt}, nil
}

func (s *pluginService) Remove(ctx context.Context, organizationId, service string) error {
	if !knownPluginService(service) {
		return apperror.BadRequest("Unknown plugin service: " + service)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PluginCredentialRepository()

	credential, err := repo.FindByOrgAndService(ctx, organizationId, service)
	if err != nil {
		return err
	}
	if credential == nil {
		return apperror.NotFound("No credential stored for service: " + service)
	}
	return repo.Delete(ctx, credential.Id)
}
