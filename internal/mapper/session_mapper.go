package mapper

import (
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.ContactSession) *entity.ContactSession {
	if s == nil {
		return nil
	}

	return &entity.ContactSession{
		Id:             s.Id,
		OrganizationId: s.OrganizationId,
		Name:           s.Name,
		Email:          s.Email,
		Metadata:       map[string]interface{}(s.Metadata),
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.ContactSession) *model.ContactSession {
	if s == nil {
		return nil
	}

	return &model.ContactSession{
		Id:             s.Id,
		OrganizationId: s.OrganizationId,
		Name:           s.Name,
		Email:          s.Email,
		Metadata:       datatypes.JSONMap(s.Metadata),
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
