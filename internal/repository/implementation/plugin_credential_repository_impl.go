package implementation

import (
	"context"
	"errors"

	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/mapper"
	"ai-supportdesk-be/internal/model"
	"ai-supportdesk-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PluginCredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PluginMapper
}

func NewPluginCredentialRepository(db *gorm.DB) contract.PluginCredentialRepository {
	return &PluginCredentialRepositoryImpl{
		db:     db,
		mapper: mapper.NewPluginMapper(),
	}
}

func (r *PluginCredentialRepositoryImpl) Create(ctx context.Context, credential *entity.PluginCredential) error {
	m := r.mapper.ToModel(credential)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*credential = *r.mapper.ToEntity(m)
	return nil
}

func (r *PluginCredentialRepositoryImpl) Update(ctx context.Context, credential *entity.PluginCredential) error {
	m := r.mapper.ToModel(credential)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*credential = *r.mapper.ToEntity(m)
	return nil
}

func (r *PluginCredentialRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PluginCredential{}, id).Error
}

func (r *PluginCredentialRepositoryImpl) FindByOrgAndService(ctx context.Context, organizationId, service string) (*entity.PluginCredential, error) {
	var m model.PluginCredential
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND service = ?", organizationId, service).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
