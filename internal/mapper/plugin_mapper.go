package mapper

import (
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/model"
)

type PluginMapper struct{}

func NewPluginMapper() *PluginMapper {
	return &PluginMapper{}
}

func (m *PluginMapper) ToEntity(p *model.PluginCredential) *entity.PluginCredential {
	if p == nil {
		return nil
	}

	return &entity.PluginCredential{
		Id:               p.Id,
		OrganizationId:   p.OrganizationId,
		Service:          p.Service,
		SecretCiphertext: p.SecretCiphertext,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m *PluginMapper) ToModel(p *entity.PluginCredential) *model.PluginCredential {
	if p == nil {
		return nil
	}

	return &model.PluginCredential{
		Id:               p.Id,
		OrganizationId:   p.OrganizationId,
		Service:          p.Service,
		SecretCiphertext: p.SecretCiphertext,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
